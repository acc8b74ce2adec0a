// Package sstv synthesises Slow-Scan Television transmissions.
//
// An Encoder turns an image, read through a PixelSource, into a stream of
// phase-continuous tones: a VIS header identifying the mode, the scan lines
// of the selected mode and a closing trailer, optionally followed by a Morse
// code signature.
//
// Samples are unsigned 16-bit values biased around Center. Silence is
// exactly Center and a full swing is Center ± AmplitudeScale. This is not
// signed PCM: use ToSigned when handing samples to a container writer.
package sstv

import (
	"errors"
	"time"
)

// Sample rate limits in Hz.
const (
	MinSampleRate     = 8000
	MaxSampleRate     = 48000
	DefaultSampleRate = 22050
)

// Center is the sample value for silence.
const Center = 32768

// VolumePercent is the output level as a percentage of full scale.
const VolumePercent = 65

// AmplitudeScale is the peak deviation from Center of a tone sample.
const AmplitudeScale = VolumePercent * 32767 / 100

// MaxDuration is the longest session an Encoder is sized for. The sample
// buffer holds twice this to leave room for header, trailer and signature.
const MaxDuration = 600 * time.Second

var (
	// ErrSampleRate is returned by New for a rate outside MinSampleRate and
	// MaxSampleRate.
	ErrSampleRate = errors.New("sample rate out of range")

	// ErrUnknownProtocol is returned by EncodeFrame when the VIS code does
	// not name a supported mode.
	ErrUnknownProtocol = errors.New("unknown SSTV protocol")

	// ErrNoSource is returned by EncodeFrame when no image is available.
	ErrNoSource = errors.New("no pixel source")
)

// PixelSource supplies the image being transmitted. Implementations return
// black for coordinates outside the image.
type PixelSource interface {
	RGB(x, y int) (r, g, b uint8)
}

// ToSigned converts a biased sample to signed 16-bit PCM.
func ToSigned(s uint16) int16 {
	return int16(int32(s) - Center)
}

// ToneFrequency maps an 8-bit brightness level to the tone frequency that
// carries it, spanning 1500 Hz (black) to 2300 Hz (white).
func ToneFrequency(level uint8) float64 {
	return 1500.0 + float64(level)*3.1372549
}
