package monitor

import (
	"fmt"
	"math"

	"hacksstv/dsp"
	"hacksstv/sstv"
)

const (
	// DefaultSampleRate lies in the RTL2832's 225-300 kHz band and is a
	// multiple of DefaultAudioRate.
	DefaultSampleRate = 240_000
	DefaultAudioRate  = 24_000

	channelCutoff = 12_000.0

	// flat across the 1100-2300 Hz SSTV band, stopped by the audio Nyquist
	antiAliasCutoff = 6_000.0
	numTaps         = 127

	// iqBias is the zero level of the RTL-SDR's unsigned samples.
	iqBias = 127.5
)

// Demodulator is a quadrature FM discriminator. It takes interleaved
// unsigned 8-bit I/Q and produces audio biased around sstv.Center, where
// a carrier offset equal to the deviation gives a full-scale sample.
type Demodulator struct {
	decim int
	count int

	chanI, chanQ *dsp.FIR
	audio        *dsp.FIR

	prev complex128
	gain float64 // radians per sample to full scale
}

// NewDemodulator creates a demodulator for I/Q at rfRate producing audio
// at audioRate. rfRate must be a multiple of audioRate.
func NewDemodulator(rfRate, audioRate int, deviation float64) (*Demodulator, error) {
	if audioRate <= 0 || rfRate%audioRate != 0 {
		return nil, fmt.Errorf("RF rate %d is not a multiple of audio rate %d", rfRate, audioRate)
	}
	chanTaps := dsp.LowPassTaps(numTaps, math.Min(channelCutoff, 0.45*float64(rfRate)), float64(rfRate))
	audioTaps := dsp.LowPassTaps(numTaps, math.Min(antiAliasCutoff, 0.45*float64(audioRate)), float64(rfRate))
	return &Demodulator{
		decim: rfRate / audioRate,
		chanI: dsp.NewFIR(chanTaps),
		chanQ: dsp.NewFIR(chanTaps),
		audio: dsp.NewFIR(audioTaps),
		prev:  1,
		gain:  float64(rfRate) / (2 * math.Pi * deviation),
	}, nil
}

// Process demodulates iq and appends the audio samples to out.
func (d *Demodulator) Process(iq []byte, out []uint16) []uint16 {
	for i := 0; i+1 < len(iq); i += 2 {
		z := complex(
			d.chanI.Filter(float64(iq[i])-iqBias),
			d.chanQ.Filter(float64(iq[i+1])-iqBias),
		)
		// phase step between consecutive samples
		delta := cmplxPhase(z * complex(real(d.prev), -imag(d.prev)))
		d.prev = z

		d.audio.Push(delta * d.gain)
		d.count++
		if d.count < d.decim {
			continue
		}
		d.count = 0
		out = append(out, toSample(d.audio.Output()))
	}
	return out
}

func cmplxPhase(z complex128) float64 {
	if z == 0 {
		return 0
	}
	return math.Atan2(imag(z), real(z))
}

// toSample maps ±1 to the encoder's biased range, clipping beyond it.
func toSample(x float64) uint16 {
	v := math.Round(sstv.Center + x*sstv.AmplitudeScale)
	return uint16(min(max(v, 0), math.MaxUint16))
}
