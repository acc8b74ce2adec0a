package sdr

import (
	"math"

	"hacksstv/dsp"
	"hacksstv/sstv"
)

// NBFM parameters for voice-channel SSTV.
const (
	// RFSampleRate is the HackRF sample rate in samples per second.
	RFSampleRate = 2_000_000

	// Deviation is the peak frequency deviation in Hz for a full-scale tone.
	Deviation = 2500.0

	// AudioCutoff limits the audio bandwidth before modulation, in Hz.
	AudioCutoff = 3000.0

	filterTaps = 127
	iqScale    = 127.0
)

// Modulator frequency-modulates encoder samples onto a complex baseband
// carrier. Audio is low-pass filtered on the fly and linearly interpolated
// up to the RF rate.
type Modulator struct {
	samples []uint16
	taps    []float64
	half    int

	audioRate int
	rfRate    float64
	step      float64 // audio samples per RF sample
	k         float64 // radians per RF sample at full deviation
	n         int     // RF samples produced
	phase     float64

	// last two filtered audio samples
	idx [2]int
	val [2]float64
}

// NewModulator prepares samples, recorded at audioRate, for output at
// rfRate with the given peak deviation in Hz.
func NewModulator(samples []uint16, audioRate int, rfRate, deviation float64) *Modulator {
	cutoff := math.Min(AudioCutoff, 0.45*float64(audioRate))
	return &Modulator{
		samples:   samples,
		taps:      dsp.LowPassTaps(filterTaps, cutoff, float64(audioRate)),
		half:      filterTaps / 2,
		audioRate: audioRate,
		rfRate:    rfRate,
		step:      float64(audioRate) / rfRate,
		k:         2 * math.Pi * deviation / rfRate,
		idx:       [2]int{-1, -1},
	}
}

// Len is the total number of RF samples the modulator produces.
func (m *Modulator) Len() int {
	// integer arithmetic so whole-second signals land exactly
	num := int64(len(m.samples)) * int64(m.rfRate)
	den := int64(m.audioRate)
	return int((num + den - 1) / den)
}

// Done reports whether every audio sample has been modulated.
func (m *Modulator) Done() bool {
	return m.n >= m.Len()
}

// Fill writes interleaved signed 8-bit I/Q pairs into buf and returns the
// number of pairs taken from the signal. The rest of buf is zeroed.
func (m *Modulator) Fill(buf []byte) int {
	pairs := len(buf) / 2
	total := m.Len()

	written := 0
	for ; written < pairs && m.n < total; written++ {
		pos := float64(m.n) * m.step
		i := int(pos)
		a := m.at(i)
		b := m.at(i + 1)
		x := a + (b-a)*(pos-float64(i))

		m.phase += m.k * x
		if m.phase > math.Pi {
			m.phase -= 2 * math.Pi
		} else if m.phase < -math.Pi {
			m.phase += 2 * math.Pi
		}

		buf[2*written] = byte(int8(math.Round(math.Cos(m.phase) * iqScale)))
		buf[2*written+1] = byte(int8(math.Round(math.Sin(m.phase) * iqScale)))
		m.n++
	}
	clear(buf[2*written:])
	return written
}

// at returns filtered audio sample i, normalised so a full-scale tone
// swings ±1.
func (m *Modulator) at(i int) float64 {
	switch i {
	case m.idx[1]:
		return m.val[1]
	case m.idx[0]:
		return m.val[0]
	}

	var v float64
	for k, tap := range m.taps {
		j := i + k - m.half
		if j < 0 || j >= len(m.samples) {
			continue
		}
		v += tap * float64(sstv.ToSigned(m.samples[j])) / sstv.AmplitudeScale
	}

	m.idx[0], m.val[0] = m.idx[1], m.val[1]
	m.idx[1], m.val[1] = i, v
	return v
}
