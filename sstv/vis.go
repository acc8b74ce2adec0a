package sstv

// VIS signalling frequencies and durations. Frequencies in Hz, durations
// in microseconds.
const (
	visLeaderFreq = 1900
	visBreakFreq  = 1200
	visOneFreq    = 1100
	visZeroFreq   = 1300

	visBitTime    = 30000
	visLeaderTime = 300000
	visBreakTime  = 10000
	attentionTime = 100000
	silenceTime   = 500000

	numAttention = 8
)

var attentionTones = [numAttention]float64{1900, 1500, 1900, 1500, 2300, 1500, 2300, 1500}

var trailerTones = [...]Pulse{
	{2300, 300000},
	{1200, 10000},
	{2300, 100000},
	{1200, 30000},
}

// HeaderTime and TrailerTime are the fixed lengths, in microseconds, of
// the segments EncodeFrame wraps around the scan lines.
const (
	HeaderTime  = silenceTime + numAttention*attentionTime + 2*visLeaderTime + visBreakTime + visBitTime + 8*visBitTime + visBitTime
	TrailerTime = 300000 + 10000 + 100000 + 30000 + silenceTime
)

// header emits the calibration preamble and the VIS byte. Bits 0-6 of code
// go out least significant first and bit 7 carries even parity.
func (e *Encoder) header(code uint8) {
	e.tone(0, silenceTime)
	for _, f := range attentionTones {
		e.tone(f, attentionTime)
	}

	e.tone(visLeaderFreq, visLeaderTime)
	e.tone(visBreakFreq, visBreakTime)
	e.tone(visLeaderFreq, visLeaderTime)
	e.tone(visBreakFreq, visBitTime)

	parity := false
	for bit := uint8(1); bit < 1<<7; bit <<= 1 {
		if code&bit != 0 {
			e.tone(visOneFreq, visBitTime)
			parity = !parity
		} else {
			e.tone(visZeroFreq, visBitTime)
		}
	}
	if parity {
		e.tone(visOneFreq, visBitTime)
	} else {
		e.tone(visZeroFreq, visBitTime)
	}

	e.tone(visBreakFreq, visBitTime)
}

func (e *Encoder) trailer() {
	for _, p := range trailerTones {
		e.pulse(p)
	}
	e.tone(0, silenceTime)
}
