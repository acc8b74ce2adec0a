// Package source prepares images for transmission: decoding files,
// fitting them to a mode's raster, test patterns and webcam snapshots.
package source

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	// registered decoders
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned by Load when no registered decoder
// recognises the file.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Load decodes the image at path. The format is detected from the content,
// not the file name.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, path)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("decoding %s: empty image", path)
	}
	log.Printf("[DEBUG] source: loaded %s image %s (%dx%d)", format, path, b.Dx(), b.Dy())

	return img, nil
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
