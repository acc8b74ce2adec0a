package sstv

// rgbLine is the per-line scratch buffer for the RGB families.
type rgbLine struct {
	r, g, b []uint8
}

func newRGBLine(width int) *rgbLine {
	return &rgbLine{
		r: make([]uint8, width),
		g: make([]uint8, width),
		b: make([]uint8, width),
	}
}

func (l *rgbLine) read(src PixelSource, y int) {
	for x := range l.r {
		l.r[x], l.g[x], l.b[x] = src.RGB(x, y)
	}
}

// martin sends sync and porch at the start of each line, then green, blue
// and red sweeps each followed by a separator.
type martin struct{}

func (martin) scan(e *Encoder, m Mode, src PixelSource) {
	line := newRGBLine(m.Width)
	for y := 0; y < m.Lines; y++ {
		line.read(src, y)

		e.pulse(m.Sync)
		e.pulse(m.Porch)
		e.sweep(line.g, m.PixelTime)
		e.pulse(m.Separator)
		e.sweep(line.b, m.PixelTime)
		e.pulse(m.Separator)
		e.sweep(line.r, m.PixelTime)
		e.pulse(m.Separator)

		e.reportProgress(y+1, m.Lines)
	}
}

func (martin) duration(m Mode) float64 {
	line := m.Sync.Time + m.Porch.Time + 3*m.Separator.Time + 3*float64(m.Width)*m.PixelTime
	return float64(m.Lines) * line
}

// scottie places the sync pulse between the blue and red sweeps. A single
// extra sync starts the frame so the first line is framed like the rest.
type scottie struct{}

func (scottie) scan(e *Encoder, m Mode, src PixelSource) {
	line := newRGBLine(m.Width)

	e.pulse(m.Sync)
	for y := 0; y < m.Lines; y++ {
		line.read(src, y)

		e.pulse(m.Separator)
		e.sweep(line.g, m.PixelTime)
		e.pulse(m.Separator)
		e.sweep(line.b, m.PixelTime)
		e.pulse(m.Sync)
		e.pulse(m.Porch)
		e.sweep(line.r, m.PixelTime)

		e.reportProgress(y+1, m.Lines)
	}
}

func (scottie) duration(m Mode) float64 {
	line := 2*m.Separator.Time + m.Sync.Time + m.Porch.Time + 3*float64(m.Width)*m.PixelTime
	return m.Sync.Time + float64(m.Lines)*line
}
