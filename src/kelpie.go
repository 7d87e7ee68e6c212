// Package kelpie is a software AFSK1200 (Bell 202) modem: an HDLC
// bit-stuffed modulator/demodulator in the style of the classic
// embedded drivers, with the sound card standing in for the DAC/ADC.
//
// The modem surfaces a byte stream where 0x7E marks frame boundaries
// and 0x1B escapes reserved bytes; the AX.25 layer (addressing, FCS,
// retransmission) lives above this package and is not provided here.
package kelpie
