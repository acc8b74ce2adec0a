package source

import "image"

// Frame adapts an RGBA image to the encoder's pixel interface. Pixels
// outside the image read as black.
type Frame struct {
	img *image.RGBA
}

// NewFrame wraps img. The image is not copied.
func NewFrame(img *image.RGBA) *Frame {
	return &Frame{img: img}
}

// RGB returns the colour at (x, y), relative to the image origin.
func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	p := image.Pt(x, y).Add(f.img.Rect.Min)
	if !p.In(f.img.Rect) {
		return 0, 0, 0
	}
	i := f.img.PixOffset(p.X, p.Y)
	return f.img.Pix[i], f.img.Pix[i+1], f.img.Pix[i+2]
}

// Image returns the underlying image.
func (f *Frame) Image() *image.RGBA {
	return f.img
}

// Size returns the image width and height.
func (f *Frame) Size() (width, height int) {
	return f.img.Rect.Dx(), f.img.Rect.Dy()
}
