package source

import (
	"fmt"
	"image"
	"log"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// Aspect selects how an image whose proportions differ from the target
// raster is fitted to it.
type Aspect int

// List of valid Aspect values.
const (
	// AspectCenter crops the largest centred region with the target
	// proportions, then scales it.
	AspectCenter Aspect = iota
	// AspectPad scales the whole image to fit and fills the remainder with
	// black.
	AspectPad
	// AspectStretch scales to the exact target size, distorting the image.
	AspectStretch
)

// Aspect ratios closer than this are treated as equal.
const aspectTolerance = 0.001

var aspectNames = []string{"center", "pad", "stretch"}

func (a Aspect) String() string {
	if a >= 0 && int(a) < len(aspectNames) {
		return aspectNames[a]
	}
	return fmt.Sprintf("Aspect(%d)", int(a))
}

// ParseAspect converts a name as accepted on the command line.
func ParseAspect(s string) (Aspect, error) {
	for i, name := range aspectNames {
		if strings.EqualFold(s, name) {
			return Aspect(i), nil
		}
	}
	return 0, fmt.Errorf("unknown aspect mode %q (want %s)", s, strings.Join(aspectNames, ", "))
}

// Fit scales img to width x height according to a. The result is opaque:
// areas not covered by the image, and transparent pixels, are black.
func Fit(img image.Image, width, height int, a Aspect) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)

	sb := img.Bounds()
	if sb.Empty() || width <= 0 || height <= 0 {
		return dst
	}

	srcAspect := float64(sb.Dx()) / float64(sb.Dy())
	dstAspect := float64(width) / float64(height)

	sr, dr := sb, dst.Bounds()
	if a != AspectStretch && math.Abs(srcAspect-dstAspect) >= aspectTolerance {
		switch a {
		case AspectCenter:
			sr = cropTo(sb, dstAspect)
		case AspectPad:
			dr = cropTo(dst.Bounds(), srcAspect)
		}
	}
	log.Printf("[DEBUG] source: fit %dx%d (%s) from %v into %v", sb.Dx(), sb.Dy(), a, sr, dr)

	draw.CatmullRom.Scale(dst, dr, img, sr, draw.Over, nil)
	return dst
}

// cropTo returns the largest rectangle centred in r with the given
// width/height ratio.
func cropTo(r image.Rectangle, aspect float64) image.Rectangle {
	if float64(r.Dx())/float64(r.Dy()) > aspect {
		w := max(1, int(math.Round(float64(r.Dy())*aspect)))
		x0 := r.Min.X + (r.Dx()-w)/2
		return image.Rect(x0, r.Min.Y, x0+w, r.Max.Y)
	}
	h := max(1, int(math.Round(float64(r.Dx())/aspect)))
	y0 := r.Min.Y + (r.Dy()-h)/2
	return image.Rect(r.Min.X, y0, r.Max.X, y0+h)
}
