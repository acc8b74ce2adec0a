package source

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placement is where an overlay box sits on the image.
type Placement int

const (
	PlaceTop Placement = iota
	PlaceBottom
	PlaceCenter
	PlaceLeft
	PlaceRight
	PlaceTopLeft
	PlaceTopRight
	PlaceBottomLeft
	PlaceBottomRight
)

var placementNames = map[string]Placement{
	"top":          PlaceTop,
	"bottom":       PlaceBottom,
	"center":       PlaceCenter,
	"left":         PlaceLeft,
	"right":        PlaceRight,
	"top-left":     PlaceTopLeft,
	"topleft":      PlaceTopLeft,
	"top-right":    PlaceTopRight,
	"topright":     PlaceTopRight,
	"bottom-left":  PlaceBottomLeft,
	"bottomleft":   PlaceBottomLeft,
	"bottom-right": PlaceBottomRight,
	"bottomright":  PlaceBottomRight,
}

// Background is how the box behind overlay text is filled.
type Background int

const (
	BackgroundOpaque Background = iota
	BackgroundSemi
	BackgroundTransparent
)

// Overlay limits.
const (
	MinOverlaySize = 8
	MaxOverlaySize = 96
	MaxOverlayPad  = 50
	MaxOverlayLine = 10
	MaxOverlayText = 128
)

// Overlay is a line of text, typically a station ID, drawn on the image
// before encoding.
type Overlay struct {
	Text       string
	Size       int // pixel height of the text
	Place      Placement
	Color      color.RGBA
	Fill       color.RGBA
	Background Background
	Pad        int
	Border     int // border width, drawn in Color
}

// DefaultOverlay is blue text in a white box with a thin border, centred
// along the top edge.
func DefaultOverlay(text string) Overlay {
	blue := color.RGBA{0, 102, 255, 255}
	return Overlay{
		Text:   text,
		Size:   32,
		Place:  PlaceTop,
		Color:  blue,
		Fill:   color.RGBA{255, 255, 255, 255},
		Pad:    8,
		Border: 1,
	}
}

// ParseOverlay reads an overlay written as text followed by optional
// "|key=value" settings, for example
//
//	"N0CALL EM12|pos=bottom|size=24|color=yellow|bg=black|mode=semi"
//
// Keys: size (s), pos (p, position), color (c), bg (background), mode (m),
// pad (padding) and border (b). Colours are SVG names or RRGGBB hex.
func ParseOverlay(spec string) (Overlay, error) {
	text, settings, _ := strings.Cut(spec, "|")
	text = strings.TrimSpace(text)
	if text == "" {
		return Overlay{}, fmt.Errorf("overlay %q has no text", spec)
	}
	if len(text) > MaxOverlayText {
		return Overlay{}, fmt.Errorf("overlay text too long (max %d chars)", MaxOverlayText)
	}
	o := DefaultOverlay(text)
	if settings == "" {
		return o, nil
	}

	for _, kv := range strings.Split(settings, "|") {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return Overlay{}, fmt.Errorf("overlay setting %q is not key=value", kv)
		}

		var err error
		switch key {
		case "size", "s":
			o.Size, err = boundedInt(value, MinOverlaySize, MaxOverlaySize)
		case "pos", "p", "position":
			p, found := placementNames[strings.ToLower(value)]
			if !found {
				err = fmt.Errorf("unknown placement %q", value)
			}
			o.Place = p
		case "color", "c":
			o.Color, err = ParseColor(value)
		case "bg", "background":
			o.Fill, err = ParseColor(value)
		case "mode", "m":
			switch strings.ToLower(value) {
			case "opaque":
				o.Background = BackgroundOpaque
			case "semi", "semi-transparent":
				o.Background = BackgroundSemi
			case "transparent":
				o.Background = BackgroundTransparent
			default:
				err = fmt.Errorf("unknown background mode %q", value)
			}
		case "pad", "padding":
			o.Pad, err = boundedInt(value, 0, MaxOverlayPad)
		case "border", "b":
			o.Border, err = boundedInt(value, 0, MaxOverlayLine)
		default:
			err = fmt.Errorf("unknown setting %q", key)
		}
		if err != nil {
			return Overlay{}, fmt.Errorf("overlay %q: %w", text, err)
		}
	}
	return o, nil
}

func boundedInt(s string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%d out of range %d-%d", v, lo, hi)
	}
	return v, nil
}

// ParseColor accepts an SVG colour name or six hex digits with an optional
// leading '#'.
func ParseColor(s string) (color.RGBA, error) {
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
}

// Draw renders o onto dst. Text that does not fit is clipped.
func (o Overlay) Draw(dst *image.RGBA) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineH := metrics.Height.Ceil()

	// render at the font's native size, then scale up by whole pixels
	tw := font.MeasureString(face, o.Text).Ceil()
	glyphs := image.NewAlpha(image.Rect(0, 0, tw, lineH))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(o.Text)

	scale := max(1, (o.Size+lineH/2)/lineH)
	text := image.NewAlpha(image.Rect(0, 0, tw*scale, lineH*scale))
	draw.NearestNeighbor.Scale(text, text.Bounds(), glyphs, glyphs.Bounds(), draw.Src, nil)

	inset := o.Pad + o.Border
	box := o.place(dst.Bounds(), text.Bounds().Dx()+2*inset, text.Bounds().Dy()+2*inset)

	fill := image.NewUniform(o.Fill)
	inner := box.Inset(o.Border)
	switch o.Background {
	case BackgroundOpaque:
		draw.Draw(dst, inner, fill, image.Point{}, draw.Src)
	case BackgroundSemi:
		draw.DrawMask(dst, inner, fill, image.Point{}, image.NewUniform(color.Alpha{128}), image.Point{}, draw.Over)
	}
	if b := o.Border; b > 0 {
		ink := image.NewUniform(o.Color)
		for _, edge := range []image.Rectangle{
			image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+b),
			image.Rect(box.Min.X, box.Max.Y-b, box.Max.X, box.Max.Y),
			image.Rect(box.Min.X, box.Min.Y+b, box.Min.X+b, box.Max.Y-b),
			image.Rect(box.Max.X-b, box.Min.Y+b, box.Max.X, box.Max.Y-b),
		} {
			draw.Draw(dst, edge, ink, image.Point{}, draw.Src)
		}
	}

	origin := box.Min.Add(image.Pt(inset, inset))
	draw.DrawMask(dst, text.Bounds().Add(origin), image.NewUniform(o.Color), image.Point{},
		text, image.Point{}, draw.Over)
}

// place positions a w x h box inside bounds.
func (o Overlay) place(bounds image.Rectangle, w, h int) image.Rectangle {
	x := bounds.Min.X + (bounds.Dx()-w)/2
	y := bounds.Min.Y + (bounds.Dy()-h)/2
	left, right := bounds.Min.X, bounds.Max.X-w
	top, bottom := bounds.Min.Y, bounds.Max.Y-h

	switch o.Place {
	case PlaceTop:
		y = top
	case PlaceBottom:
		y = bottom
	case PlaceLeft:
		x = left
	case PlaceRight:
		x = right
	case PlaceTopLeft:
		x, y = left, top
	case PlaceTopRight:
		x, y = right, top
	case PlaceBottomLeft:
		x, y = left, bottom
	case PlaceBottomRight:
		x, y = right, bottom
	}
	return image.Rect(x, y, x+w, y+h)
}
