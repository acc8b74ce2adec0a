package source

import (
	"image"
	"image/color"
)

// SMPTE colour bars at 75% amplitude, left to right.
var barColors = [7]color.RGBA{
	{192, 192, 192, 255}, // gray
	{192, 192, 0, 255},   // yellow
	{0, 192, 192, 255},   // cyan
	{0, 192, 0, 255},     // green
	{192, 0, 192, 255},   // magenta
	{192, 0, 0, 255},     // red
	{0, 0, 192, 255},     // blue
}

// ColorBars returns a width x height frame of the seven SMPTE colour bars.
// Any columns left over by the integer bar width belong to the last bar.
func ColorBars(width, height int) *Frame {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	barWidth := max(1, width/len(barColors))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, barColors[min(x/barWidth, len(barColors)-1)])
		}
	}
	return NewFrame(img)
}
