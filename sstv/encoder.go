package sstv

import (
	"fmt"
	"log"
	"math"
)

// DefaultProtocol is the VIS code selected by New (Martin 1).
const DefaultProtocol = 44

// Encoder holds the state of one encoding session. It is not safe for
// concurrent use.
type Encoder struct {
	rate        int
	usPerSample float64
	radPerHz    float64
	scale       float64
	capacity    int

	buf       []uint16
	phase     float64
	residue   float64
	protocol  uint8
	truncated bool

	progress func(done, total int)

	// tones, when set, sees every tone request before it is synthesised.
	tones func(freq, dur float64)
}

// Option configures an Encoder in New.
type Option func(*Encoder)

// WithCapacity sets the sample buffer capacity. Values below one are
// ignored.
func WithCapacity(samples int) Option {
	return func(e *Encoder) {
		if samples > 0 {
			e.capacity = samples
		}
	}
}

// WithProgress registers a function called after every scan line (every
// line pair for Robot modes) with the number of lines done and the total.
func WithProgress(fn func(done, total int)) Option {
	return func(e *Encoder) {
		e.progress = fn
	}
}

// New allocates an Encoder for the given sample rate.
func New(rate int, opts ...Option) (*Encoder, error) {
	if rate < MinSampleRate || rate > MaxSampleRate {
		return nil, fmt.Errorf("%w: %d Hz (want %d-%d)", ErrSampleRate, rate, MinSampleRate, MaxSampleRate)
	}

	e := &Encoder{
		rate:        rate,
		usPerSample: 1e6 / float64(rate),
		radPerHz:    2 * math.Pi / float64(rate),
		scale:       AmplitudeScale,
		capacity:    int(MaxDuration.Seconds()) * rate * 2,
		protocol:    DefaultProtocol,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.buf = make([]uint16, 0, e.capacity)

	return e, nil
}

// SetProtocol selects the mode by VIS code. The code is checked by
// EncodeFrame.
func (e *Encoder) SetProtocol(vis uint8) {
	e.protocol = vis
}

// Protocol returns the selected VIS code.
func (e *Encoder) Protocol() uint8 {
	return e.protocol
}

// SampleRate returns the session sample rate in Hz.
func (e *Encoder) SampleRate() int {
	return e.rate
}

// EncodeFrame appends a complete transmission of src in the selected mode:
// VIS header, scan lines and trailer. Nothing is written if the protocol is
// unknown.
//
// Running out of buffer space is not an error. The output stops at
// capacity and Truncated reports true.
func (e *Encoder) EncodeFrame(src PixelSource) error {
	if src == nil {
		return ErrNoSource
	}
	m, ok := ModeByVIS(e.protocol)
	if !ok {
		return fmt.Errorf("%w: VIS code %d", ErrUnknownProtocol, e.protocol)
	}
	if len(e.buf) > 0 {
		log.Printf("[WARN] sstv: buffer already holds %d samples, call Reset between frames", len(e.buf))
	}

	log.Printf("[DEBUG] sstv: encoding %s at %d Hz", m, e.rate)
	e.header(m.VIS)
	m.scan.scan(e, m, src)
	e.trailer()
	log.Printf("[DEBUG] sstv: %d samples (%.2fs)", len(e.buf), float64(len(e.buf))/float64(e.rate))

	return nil
}

// Samples returns the samples written so far. The slice aliases the
// encoder's buffer and is only valid until the next call that writes or
// resets.
func (e *Encoder) Samples() []uint16 {
	return e.buf[:len(e.buf):len(e.buf)]
}

// Len is the number of samples written.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Cap is the fixed buffer capacity in samples.
func (e *Encoder) Cap() int {
	return cap(e.buf)
}

// Truncated reports whether any output was dropped because the buffer was
// full.
func (e *Encoder) Truncated() bool {
	return e.truncated
}

// Reset empties the buffer and clears oscillator phase and timing residue.
// The buffer is not reallocated.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.phase = 0
	e.residue = 0
	e.truncated = false
}

func (e *Encoder) reportProgress(done, total int) {
	if e.progress != nil {
		e.progress(done, total)
	}
}
