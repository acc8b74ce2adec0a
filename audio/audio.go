// Package audio writes encoder output to mono 16-bit sound files.
package audio

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/aiff"
	"github.com/go-audio/wav"

	"hacksstv/sstv"
)

// Format is an output container.
type Format int

// List of valid Format values.
const (
	WAV Format = iota
	AIFF
)

const (
	bitDepth = 16
	channels = 1

	// wavPCM is the WAVE format tag for integer PCM.
	wavPCM = 1

	// chunkSize is the number of samples converted per encoder write.
	chunkSize = 1 << 16
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown audio format")

var formatNames = []string{"wav", "aiff"}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext is the file name extension for f, including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat converts a format name. Matching ignores case.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want %s)", ErrUnknownFormat, s, strings.Join(formatNames, ", "))
}

// Write creates path and encodes samples into it. On failure the partial
// file is removed.
func Write(path string, f Format, samples []uint16, rate int) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, f, samples, rate); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Printf("[DEBUG] audio: wrote %d samples at %d Hz to %s", len(samples), rate, path)
	return nil
}

// encoder is the part of the go-audio encoders Encode uses.
type encoder interface {
	Write(buf *goaudio.IntBuffer) error
	Close() error
}

// Encode writes samples, biased around sstv.Center, to w as signed 16-bit
// mono PCM in format f.
func Encode(w io.WriteSeeker, f Format, samples []uint16, rate int) error {
	var enc encoder
	switch f {
	case WAV:
		enc = wav.NewEncoder(w, rate, bitDepth, channels, wavPCM)
	case AIFF:
		enc = aiff.NewEncoder(w, rate, bitDepth, channels)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           make([]int, 0, min(chunkSize, len(samples))),
		SourceBitDepth: bitDepth,
	}
	for len(samples) > 0 {
		n := min(chunkSize, len(samples))
		buf.Data = buf.Data[:0]
		for _, s := range samples[:n] {
			buf.Data = append(buf.Data, int(sstv.ToSigned(s)))
		}
		if err := enc.Write(buf); err != nil {
			return err
		}
		samples = samples[n:]
	}
	return enc.Close()
}
