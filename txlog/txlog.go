// Package txlog keeps a JSON-lines record of generated and transmitted
// images, one object per event.
package txlog

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Entry describes one generated file.
type Entry struct {
	Mode       string
	VIS        uint8
	SampleRate int
	Samples    int
	Output     string
	Source     string
	Callsign   string
}

// Logger appends records to a log file. A nil *Logger discards everything,
// so callers need not check whether logging was requested.
type Logger struct {
	session string
	log     *slog.Logger
	closer  io.Closer
}

// Open appends to the log at path, creating it if needed.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening tx log: %w", err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

// New logs to w with a fresh session ID.
func New(w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey || a.Key == slog.MessageKey {
				return slog.Attr{}
			}
			return a
		},
	}
	session := uuid.New().String()
	return &Logger{
		session: session,
		log:     slog.New(slog.NewJSONHandler(w, opts)).With("session", session),
	}
}

// Session is the ID shared by every record from this Logger.
func (l *Logger) Session() string {
	if l == nil {
		return ""
	}
	return l.session
}

// Generated records a finished audio file.
func (l *Logger) Generated(e Entry) {
	if l == nil {
		return
	}
	var seconds float64
	if e.SampleRate > 0 {
		seconds = float64(e.Samples) / float64(e.SampleRate)
	}
	l.log.Info("", "type", "SSTV", "subtype", "Generated",
		"mode", e.Mode, "vis", e.VIS,
		"rate", e.SampleRate, "samples", e.Samples,
		"seconds", json.Number(fmt.Sprintf("%.3f", seconds)),
		"source", e.Source, "output", e.Output, "callsign", e.Callsign)
}

// Transmitted records the outcome of a HackRF transmission. err is nil for
// a completed transmission.
func (l *Logger) Transmitted(freqMHz float64, gain int, elapsed time.Duration, err error) {
	if l == nil {
		return
	}
	args := []any{"type", "RF", "subtype", "Transmitted",
		"freq", json.Number(fmt.Sprintf("%.6f", freqMHz)), "gain", gain,
		"seconds", json.Number(fmt.Sprintf("%.3f", elapsed.Seconds()))}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.log.Info("", args...)
}

// Close closes the underlying file, if Open created one.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
