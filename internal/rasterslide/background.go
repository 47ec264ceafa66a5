package rasterslide

import (
	"image"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// backgroundHex estimates the slide background by averaging the border
// pixels in linear RGB and reports it as an uppercase hex string without the
// leading hash, matching how slide scanners expose the property.
func backgroundHex(img *image.NRGBA) string {
	b := img.Bounds()
	var lr, lg, lb float64
	n := 0

	add := func(x, y int) {
		o := img.PixOffset(x, y)
		c := colorful.Color{
			R: float64(img.Pix[o]) / 255,
			G: float64(img.Pix[o+1]) / 255,
			B: float64(img.Pix[o+2]) / 255,
		}
		r, g, bl := c.LinearRgb()
		lr += r
		lg += g
		lb += bl
		n++
	}

	for x := b.Min.X; x < b.Max.X; x++ {
		add(x, b.Min.Y)
		if b.Dy() > 1 {
			add(x, b.Max.Y-1)
		}
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		add(b.Min.X, y)
		if b.Dx() > 1 {
			add(b.Max.X-1, y)
		}
	}
	if n == 0 {
		return "FFFFFF"
	}

	avg := colorful.LinearRgb(lr/float64(n), lg/float64(n), lb/float64(n)).Clamped()
	return strings.ToUpper(strings.TrimPrefix(avg.Hex(), "#"))
}
