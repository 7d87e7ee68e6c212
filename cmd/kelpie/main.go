package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the Kelpie sound-card modem:
 *
 *			AFSK1200 (Bell 202) modulator/demodulator.
 *			HDLC framing with bit stuffing.
 *			Escaped byte-stream interface on a pseudo
 *			terminal and/or TCP, for the packet layer
 *			to attach to.
 *			PTT keying by GPIO or serial control line.
 *			Daily logs of received frames.
 *
 *---------------------------------------------------------------*/

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	kelpie "github.com/doismellburning/kelpie/src"
)

const PTY_SYMLINK = "/tmp/kelpie-tnc"

func main() {
	var configFileName = pflag.StringP("config-file", "c", "kelpie.yaml", "Configuration file name.")
	var colorLevel = pflag.IntP("color", "t", 1, "Text colors.  0 to disable.")
	var verbose = pflag.BoolP("verbose", "v", false, "Debug level logging.")
	pflag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	kelpie.TextColorInit(*colorLevel)

	var config, configErr = kelpie.LoadConfig(*configFileName)
	if configErr != nil {
		log.Fatal("Bad configuration", "error", configErr)
	}

	var validateErr = config.Validate()
	if validateErr != nil {
		log.Fatal("Bad configuration", "file", *configFileName, "error", validateErr)
	}

	log.Info("Kelpie AFSK1200 modem",
		"filter", config.Filter,
		"dac_samplerate", config.DACSampleRate,
		"ptt", config.PTT.Method)

	var ptt, pttErr = kelpie.NewPTT(config.PTT)
	if pttErr != nil {
		log.Fatal("PTT setup failed", "error", pttErr)
	}
	defer ptt.Close()

	var af, afErr = kelpie.NewAfsk(config, kelpie.HW{
		DacIrqStart: func() { ptt.Set(true) },
		DacIrqStop:  func() { ptt.Set(false) },
	})
	if afErr != nil {
		log.Fatal("Modem setup failed", "error", afErr)
	}

	var soundcard, scErr = kelpie.OpenSoundcard(af)
	if scErr != nil {
		log.Fatal("Audio setup failed", "error", scErr)
	}
	defer soundcard.Close()

	/*
	 * The transmit FIFO has one foreground producer, so everything
	 * the surfaces want to send is funneled through one writer.
	 */
	var tx = make(chan []byte, 16)
	go func() {
		for data := range tx {
			af.Write(data)
		}
	}()

	var pt *kelpie.PtStream
	if config.EnablePTY {
		var ptErr error
		pt, ptErr = kelpie.NewPtStream(tx, PTY_SYMLINK)
		if ptErr != nil {
			log.Fatal("Pseudo terminal setup failed", "error", ptErr)
		}
		defer pt.Close()
	}

	var ns *kelpie.NetStream
	if config.TCPPort > 0 {
		var nsErr error
		ns, nsErr = kelpie.NewNetStream(tx, config.TCPPort)
		if nsErr != nil {
			log.Fatal("TCP surface setup failed", "error", nsErr)
		}
		defer ns.Close()

		kelpie.DnsSdAnnounce(config.DNSSDName, config.TCPPort)
	}

	var framelog *kelpie.FrameLog
	if config.FrameLogDir != "" {
		var flErr error
		framelog, flErr = kelpie.NewFrameLog(config.FrameLogDir)
		if flErr != nil {
			log.Fatal("Frame log setup failed", "error", flErr)
		}
		defer framelog.Close()
	}

	go receive_loop(af, pt, ns, framelog)

	var signals = make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	log.Info("Shutting down")
	af.Flush()
}

/*-------------------------------------------------------------------
 *
 * Name:	receive_loop
 *
 * Purpose:	Move the received byte stream from the modem to every
 *		consumer: the attached surfaces get the raw escaped
 *		stream, the console and the frame log get whole
 *		frames.
 *
 *--------------------------------------------------------------------*/

func receive_loop(af *kelpie.Afsk, pt *kelpie.PtStream, ns *kelpie.NetStream, framelog *kelpie.FrameLog) {
	var scanner = kelpie.NewFrameScanner()
	var buf = make([]byte, 256)
	var frame_count = 0

	for {
		var n = af.Read(buf)
		if n == 0 {
			kelpie.SLEEP_MS(10)
			continue
		}

		if pt != nil {
			pt.Deliver(buf[:n])
		}
		if ns != nil {
			ns.Deliver(buf[:n])
		}

		for _, b := range buf[:n] {
			var frame, ok = scanner.Feed(b)
			if !ok {
				continue
			}

			frame_count++
			kelpie.PrintRecFrame(frame_count, frame)

			if framelog != nil {
				framelog.Log(frame)
			}
		}

		var status = af.Status()
		if status&kelpie.AFSK_RXFIFO_OVERRUN != 0 {
			log.Warn("Receive FIFO overrun; a frame was lost")
		}
	}
}
