package kelpie

/*------------------------------------------------------------------
 *
 * Purpose:	Bounded FIFO rings connecting the foreground to the
 *		sample-rate contexts.
 *
 * Description:	Each ring has exactly one producer and one consumer
 *		(rx: demodulator -> foreground, tx: foreground ->
 *		modulator, delay line: demodulator only), so a
 *		lock-free single-producer single-consumer ring with
 *		atomic head/tail is enough.  The old embedded drivers
 *		had separate "locked" operations that masked the
 *		interrupt around the critical section; with
 *		acquire/release atomics the plain operations are
 *		already safe from both sides, so there is only one set.
 *
 *		Capacity must be a power of two.  head and tail count
 *		forever and are masked on use; unsigned wraparound is
 *		harmless with a power-of-two capacity.
 *
 *---------------------------------------------------------------*/

import (
	"sync/atomic"
)

// The rings carry either stream octets or signed ADC samples.
type fifo_elem interface {
	~uint8 | ~int8
}

type fifo_t[T fifo_elem] struct {
	buf  []T
	mask uint32

	head atomic.Uint32 /* next element to pop, owned by the consumer */
	tail atomic.Uint32 /* next free slot, owned by the producer */
}

func fifo_new[T fifo_elem](capacity int) *fifo_t[T] {
	Assert(capacity > 0)
	Assert(capacity&(capacity-1) == 0)

	return &fifo_t[T]{
		buf:  make([]T, capacity),
		mask: uint32(capacity - 1),
	}
}

func fifo_len[T fifo_elem](f *fifo_t[T]) int {
	return int(f.tail.Load() - f.head.Load())
}

func fifo_isempty[T fifo_elem](f *fifo_t[T]) bool {
	return f.tail.Load() == f.head.Load()
}

func fifo_isfull[T fifo_elem](f *fifo_t[T]) bool {
	return f.tail.Load()-f.head.Load() > f.mask
}

// fifo_push must only be called by the producer, and only when the
// ring is not full.
func fifo_push[T fifo_elem](f *fifo_t[T], v T) {
	var t = f.tail.Load()
	Assert(t-f.head.Load() <= f.mask)

	f.buf[t&f.mask] = v
	f.tail.Store(t + 1)
}

// fifo_pop must only be called by the consumer, and only when the
// ring is not empty.
func fifo_pop[T fifo_elem](f *fifo_t[T]) T {
	var h = f.head.Load()
	Assert(f.tail.Load() != h)

	var v = f.buf[h&f.mask]
	f.head.Store(h + 1)
	return v
}

// fifo_flush discards everything in the ring.  Only safe when neither
// side is running, e.g. during init.
func fifo_flush[T fifo_elem](f *fifo_t[T]) {
	f.head.Store(f.tail.Load())
}
