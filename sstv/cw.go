package sstv

import (
	"strings"
)

// CW signature defaults.
const (
	DefaultWPM      = 15
	DefaultCWTone   = 800.0
	DefaultCallsign = "NOCALL"

	// SignatureGap is the silence, in microseconds, between the trailer and
	// the Morse signature.
	SignatureGap = 2000000
)

var morseCode = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	'/': "-..-.", '?': "..--..", '=': "-...-",
}

// SignatureText is the message AddSignature sends for a callsign.
func SignatureText(callsign string) string {
	callsign = strings.TrimSpace(callsign)
	if callsign == "" {
		callsign = DefaultCallsign
	}
	return "SSTV de " + callsign
}

// AddSignature appends two seconds of silence followed by "SSTV de
// <callsign>" in Morse code. A wpm or toneHz of zero selects DefaultWPM and
// DefaultCWTone.
func (e *Encoder) AddSignature(callsign string, wpm int, toneHz float64) {
	e.tone(0, SignatureGap)
	e.morse(SignatureText(callsign), wpm, toneHz)
}

// morse sends msg with standard timing: dot, dash of three dots, one dot
// between elements, three between characters and seven between words.
// Characters without a code are skipped.
func (e *Encoder) morse(msg string, wpm int, freq float64) {
	if wpm <= 0 {
		wpm = DefaultWPM
	}
	if freq <= 0 {
		freq = DefaultCWTone
	}
	dot := 1200000.0 / float64(wpm)

	// gap is the silence owed before the next character
	var gap float64
	for _, ch := range strings.ToUpper(msg) {
		if ch == ' ' {
			if gap > 0 {
				gap = 7 * dot
			}
			continue
		}
		code, ok := morseCode[ch]
		if !ok {
			continue
		}

		if gap > 0 {
			e.tone(0, gap)
		}
		for i, el := range code {
			if i > 0 {
				e.tone(0, dot)
			}
			if el == '-' {
				e.toneEnveloped(freq, 3*dot)
			} else {
				e.toneEnveloped(freq, dot)
			}
		}
		gap = 3 * dot
	}
	if gap > 0 {
		e.tone(0, gap)
	}
}
