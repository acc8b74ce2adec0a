package sstv

import (
	"log"
	"math"
)

// envelope limits for shaped (CW) tones, in microseconds
const (
	envelopeFraction = 0.25
	envelopeMin      = 5000.0
	envelopeMax      = 40000.0
)

// tone appends freq Hz for dur microseconds. A frequency of zero is
// silence and leaves the phase untouched.
func (e *Encoder) tone(freq, dur float64) {
	e.emit(freq, dur, false)
}

// toneEnveloped is tone with a raised-cosine fade in and out.
func (e *Encoder) toneEnveloped(freq, dur float64) {
	e.emit(freq, dur, true)
}

// pulse appends a fixed-frequency timing segment.
func (e *Encoder) pulse(p Pulse) {
	e.tone(p.Freq, p.Time)
}

// sweep appends one tone per pixel level, each lasting dwell microseconds.
func (e *Encoder) sweep(levels []uint8, dwell float64) {
	for _, v := range levels {
		e.tone(ToneFrequency(v), dwell)
	}
}

// emit is the single write path for both oscillators. The requested
// duration is extended by the residue left over from the previous call and
// rounded to whole samples; whatever rounding leaves over is carried to the
// next call so the stream never drifts by more than half a sample.
func (e *Encoder) emit(freq, dur float64, shaped bool) {
	if e.tones != nil {
		e.tones(freq, dur)
	}

	target := dur + e.residue
	n := int(math.Round(target / e.usPerSample))
	if n < 0 {
		n = 0
	}
	e.residue = target - float64(n)*e.usPerSample

	if freq == 0 {
		for i := 0; i < n; i++ {
			if !e.push(Center) {
				return
			}
		}
		return
	}

	step := e.radPerHz * freq
	width, live := 0, n
	if shaped {
		width = e.envelopeWidth(target, n)
		if width == 0 {
			// no room for fades: run from one zero crossing to the last
			// one inside the element and hold the rest at the centre line
			e.phase = 0
			live = lastCrossing(n, step) + 1
		}
	}

	for i := 0; i < n; i++ {
		gain := 1.0
		switch {
		case i >= live:
			gain = 0
		case width > 0:
			gain = tukey(i, n, width)
		}
		if !e.push(uint16(Center + math.Sin(e.phase)*e.scale*gain)) {
			return
		}
		e.phase += step
	}
	e.phase = math.Mod(e.phase, 2*math.Pi)
}

// lastCrossing is the index of the sample nearest the last zero crossing,
// at or before sample n-1, of a sine starting at phase 0 and advancing step
// radians per sample.
func lastCrossing(n int, step float64) int {
	if n == 0 {
		return -1
	}
	half := math.Floor(float64(n-1) * step / math.Pi)
	return min(n-1, int(math.Round(half*math.Pi/step)))
}

// push appends one sample, reporting false once the buffer is full.
func (e *Encoder) push(s uint16) bool {
	if len(e.buf) == cap(e.buf) {
		if !e.truncated {
			log.Printf("[WARN] sstv: sample buffer full at %d samples, output truncated", len(e.buf))
			e.truncated = true
		}
		return false
	}
	e.buf = append(e.buf, s)
	return true
}

// envelopeWidth returns the fade length in samples for a shaped tone of
// dur microseconds and n samples, or zero when the tone is too short to
// hold both fades. Such tones are sent at full amplitude between zero
// crossings.
func (e *Encoder) envelopeWidth(dur float64, n int) int {
	w := math.Min(math.Max(dur*envelopeFraction, envelopeMin), envelopeMax)
	width := int(w / e.usPerSample)
	if width == 0 {
		width = 1
	}
	if n < 2*width {
		return 0
	}
	return width
}

// tukey is the gain of sample i in a tone of n samples with fades of width
// samples at each end.
func tukey(i, n, width int) float64 {
	switch {
	case i < width:
		t := float64(i) / float64(width)
		return 0.5 * (1 - math.Cos(math.Pi*t))
	case i >= n-width:
		t := float64(i-(n-width)) / float64(width)
		return 0.5 * (1 + math.Cos(math.Pi*t))
	}
	return 1
}
