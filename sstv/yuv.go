package sstv

// Luma and chroma use the BT.601 studio-range coefficients of the Robot
// modes, scaled to 8 bits (0.003906 = 1/256).

func luma(r, g, b uint8) uint8 {
	return uint8(16.0 + 0.003906*(65.738*float64(r)+129.057*float64(g)+25.064*float64(b)))
}

func chromaR(r, g, b uint8) uint8 {
	return uint8(128.0 + 0.003906*(112.439*float64(r)-94.154*float64(g)-18.285*float64(b)))
}

func chromaB(r, g, b uint8) uint8 {
	return uint8(128.0 + 0.003906*(-37.945*float64(r)-74.494*float64(g)+112.439*float64(b)))
}

func average(a, b uint8) uint8 {
	return uint8((uint16(a) + uint16(b)) / 2)
}

// yuvPair is the scratch buffer for one line pair.
type yuvPair struct {
	y1, y2, ry, by []uint8
}

func newYUVPair(width int) *yuvPair {
	return &yuvPair{
		y1: make([]uint8, width),
		y2: make([]uint8, width),
		ry: make([]uint8, width),
		by: make([]uint8, width),
	}
}

// read converts lines y and y+1. Luma is per line; both chroma channels
// come from the average of the two lines.
func (p *yuvPair) read(src PixelSource, y int) {
	for x := range p.y1 {
		r1, g1, b1 := src.RGB(x, y)
		r2, g2, b2 := src.RGB(x, y+1)
		ar, ag, ab := average(r1, r2), average(g1, g2), average(b1, b2)

		p.y1[x] = luma(r1, g1, b1)
		p.y2[x] = luma(r2, g2, b2)
		p.ry[x] = chromaR(ar, ag, ab)
		p.by[x] = chromaB(ar, ag, ab)
	}
}

// robot sends lines in pairs. The even line carries R-Y and the odd line
// B-Y, each marked by its own separator frequency.
type robot struct{}

func (robot) scan(e *Encoder, m Mode, src PixelSource) {
	pair := newYUVPair(m.Width)
	for y := 0; y < m.Lines; y += 2 {
		pair.read(src, y)

		e.pulse(m.Sync)
		e.pulse(m.Porch)
		e.sweep(pair.y1, m.PixelTime)
		e.pulse(m.Separator)
		e.pulse(m.ChromaPorch)
		e.sweep(pair.ry, m.ChromaTime)

		e.pulse(m.Sync)
		e.pulse(m.Porch)
		e.sweep(pair.y2, m.PixelTime)
		e.pulse(m.OddSeparator)
		e.pulse(m.ChromaPorch)
		e.sweep(pair.by, m.ChromaTime)

		e.reportProgress(min(y+2, m.Lines), m.Lines)
	}
}

func (robot) duration(m Mode) float64 {
	even := m.Sync.Time + m.Porch.Time + float64(m.Width)*m.PixelTime +
		m.Separator.Time + m.ChromaPorch.Time + float64(m.Width)*m.ChromaTime
	odd := m.Sync.Time + m.Porch.Time + float64(m.Width)*m.PixelTime +
		m.OddSeparator.Time + m.ChromaPorch.Time + float64(m.Width)*m.ChromaTime
	pairs := (m.Lines + 1) / 2
	return float64(pairs) * (even + odd)
}
