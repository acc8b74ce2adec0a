package sstv

import (
	"fmt"
	"strings"
	"time"
)

// ColorModel is the way a mode carries colour.
type ColorModel int

// List of valid ColorModel values.
const (
	// RGB modes send full-resolution green, blue and red sweeps per line.
	RGB ColorModel = iota
	// YUV modes send luma per line and alternate the chroma channels across
	// line pairs.
	YUV
)

func (c ColorModel) String() string {
	switch c {
	case RGB:
		return "RGB"
	case YUV:
		return "YUV"
	}
	return fmt.Sprintf("ColorModel(%d)", int(c))
}

// Pulse is a fixed-frequency segment of a scan line. Freq is in Hz and Time
// in microseconds.
type Pulse struct {
	Freq float64
	Time float64
}

// Mode describes one SSTV protocol. Mode values are fixed at compile time
// and looked up with ModeByVIS or ModeByName.
type Mode struct {
	VIS       uint8
	Name      string
	ShortName string

	Lines int
	Width int

	// PixelTime is the dwell per pixel of each colour sweep, or of the luma
	// sweep for YUV modes. ChromaTime is the dwell per chroma pixel.
	PixelTime  float64
	ChromaTime float64

	Sync      Pulse
	Porch     Pulse
	Separator Pulse

	// YUV modes only: separator before the B-Y sweep and the porch that
	// follows both separators.
	OddSeparator Pulse
	ChromaPorch  Pulse

	Color ColorModel

	scan scanner
}

// scanner is implemented by each protocol family.
type scanner interface {
	// scan emits every line of src.
	scan(e *Encoder, m Mode, src PixelSource)

	// duration is the nominal length of the scan in microseconds.
	duration(m Mode) float64
}

var (
	martinSync  = Pulse{1200, 4862}
	martinPorch = Pulse{1500, 572}

	scottieSync  = Pulse{1200, 9000}
	scottieSep   = Pulse{1500, 1500}
	scottiePorch = Pulse{1500, 1500}

	robotSync        = Pulse{1200, 9000}
	robotPorch       = Pulse{1500, 3000}
	robotEvenSep     = Pulse{1500, 4500}
	robotOddSep      = Pulse{2300, 4500}
	robotChromaPorch = Pulse{1900, 1500}
)

func martinMode(vis uint8, name, short string, pixel float64) Mode {
	return Mode{
		VIS: vis, Name: name, ShortName: short,
		Lines: 256, Width: 320,
		PixelTime: pixel,
		Sync:      martinSync, Porch: martinPorch, Separator: martinPorch,
		Color: RGB,
		scan:  martin{},
	}
}

func scottieMode(vis uint8, name, short string, pixel float64) Mode {
	return Mode{
		VIS: vis, Name: name, ShortName: short,
		Lines: 256, Width: 320,
		PixelTime: pixel,
		Sync:      scottieSync, Porch: scottiePorch, Separator: scottieSep,
		Color: RGB,
		scan:  scottie{},
	}
}

func robotMode(vis uint8, name, short string, luma, chroma float64) Mode {
	return Mode{
		VIS: vis, Name: name, ShortName: short,
		Lines: 240, Width: 320,
		PixelTime: luma, ChromaTime: chroma,
		Sync: robotSync, Porch: robotPorch, Separator: robotEvenSep,
		OddSeparator: robotOddSep, ChromaPorch: robotChromaPorch,
		Color: YUV,
		scan:  robot{},
	}
}

// modes in presentation order
var modes = []Mode{
	martinMode(44, "Martin 1", "m1", 457.6),
	martinMode(40, "Martin 2", "m2", 228.8),
	scottieMode(60, "Scottie 1", "s1", 432.0),
	scottieMode(56, "Scottie 2", "s2", 275.2),
	scottieMode(76, "Scottie DX", "sdx", 1080.0),
	robotMode(8, "Robot 36", "r36", 275.0, 137.5),
	robotMode(12, "Robot 72", "r72", 550.0, 275.0),
}

// Modes returns every supported mode.
func Modes() []Mode {
	return append([]Mode(nil), modes...)
}

// ModeByVIS looks up a mode by its VIS code.
func ModeByVIS(vis uint8) (Mode, bool) {
	for _, m := range modes {
		if m.VIS == vis {
			return m, true
		}
	}
	return Mode{}, false
}

// ModeByName looks up a mode by its short name (m1, s2, r36...). The match
// ignores case.
func ModeByName(name string) (Mode, bool) {
	for _, m := range modes {
		if strings.EqualFold(m.ShortName, name) {
			return m, true
		}
	}
	return Mode{}, false
}

// ShortNames lists the short names of every supported mode.
func ShortNames() []string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.ShortName
	}
	return names
}

func (m Mode) String() string {
	return fmt.Sprintf("%s (%s, VIS %d)", m.Name, strings.ToUpper(m.ShortName), m.VIS)
}

// ScanDuration is the nominal length of the scan lines alone.
func (m Mode) ScanDuration() time.Duration {
	return time.Duration(m.scan.duration(m) * float64(time.Microsecond))
}

// Duration is the nominal length of a complete frame, including VIS header
// and trailer.
func (m Mode) Duration() time.Duration {
	return time.Duration((m.scan.duration(m) + HeaderTime + TrailerTime) * float64(time.Microsecond))
}

// ExpectedSamples is the number of samples EncodeFrame writes for this mode
// at rate, give or take one.
func (m Mode) ExpectedSamples(rate int) int {
	us := m.scan.duration(m) + HeaderTime + TrailerTime
	return int(us*float64(rate)/1e6 + 0.5)
}

// Describe returns a short multi-line summary of the mode.
func (m Mode) Describe() string {
	var s strings.Builder
	fmt.Fprintf(&s, "Mode name:     %s\n", m)
	fmt.Fprintf(&s, "Resolution:    %d scan lines, %d pixels/line, %s\n", m.Lines, m.Width, m.Color)
	fmt.Fprintf(&s, "TX time:       %.1f seconds (%.1f scan)", m.Duration().Seconds(), m.ScanDuration().Seconds())
	return s.String()
}
