// Package dsp holds the filters shared by the transmit and receive paths.
package dsp

import (
	"math"
	"math/cmplx"
)

// LowPassTaps returns the coefficients of a Blackman-windowed sinc low-pass
// filter with the given cut-off, both in Hz. The taps are normalised to
// unity gain at DC.
func LowPassTaps(numTaps int, cutoff, sampleRate float64) []float64 {
	taps := make([]float64, numTaps)
	fc := cutoff / sampleRate
	M := float64(numTaps - 1)

	var sum float64
	for i := range taps {
		n := float64(i)
		window := 0.42 - 0.5*math.Cos(2*math.Pi*n/M) + 0.08*math.Cos(4*math.Pi*n/M)

		sinc := 2 * math.Pi * fc
		if n != M/2 {
			sinc = math.Sin(2*math.Pi*fc*(n-M/2)) / (n - M/2)
		}
		taps[i] = sinc * window
		sum += taps[i]
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

// Response is the magnitude of the filter's frequency response at freq Hz.
func Response(taps []float64, freq, sampleRate float64) float64 {
	var h complex128
	w := 2 * math.Pi * freq / sampleRate
	for n, t := range taps {
		h += complex(t, 0) * cmplx.Exp(complex(0, -w*float64(n)))
	}
	return cmplx.Abs(h)
}

// FIR is a streaming finite impulse response filter. The zero value is not
// usable; create one with NewFIR.
type FIR struct {
	taps []float64
	hist []float64 // circular, newest at pos
	pos  int
}

// NewFIR returns a filter with the given taps and an all-zero history.
func NewFIR(taps []float64) *FIR {
	return &FIR{taps: taps, hist: make([]float64, len(taps))}
}

// Push adds x to the history without computing an output. Decimating
// callers push every sample and call Output only when they need one.
func (f *FIR) Push(x float64) {
	f.pos++
	if f.pos == len(f.hist) {
		f.pos = 0
	}
	f.hist[f.pos] = x
}

// Output is the filter output for the current history.
func (f *FIR) Output() float64 {
	var y float64
	j := f.pos
	for _, t := range f.taps {
		y += t * f.hist[j]
		j--
		if j < 0 {
			j = len(f.hist) - 1
		}
	}
	return y
}

// Filter pushes x and returns the new output.
func (f *FIR) Filter(x float64) float64 {
	f.Push(x)
	return f.Output()
}

// Reset clears the history.
func (f *FIR) Reset() {
	clear(f.hist)
	f.pos = 0
}
