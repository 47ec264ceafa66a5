package pipeline

import (
	"fmt"
	"image"
)

// BytesPerPixel is the packed pixel size used throughout the pipeline:
// 4 channels of 8-bit samples.
const BytesPerPixel = 4

// Region is a rectangular window of packed 4-byte pixels backed by a
// row-major buffer. The buffer covers exactly Rect; rows are Stride bytes
// apart.
type Region struct {
	Rect   image.Rectangle
	Pix    []uint8
	Stride int
}

// NewRegion allocates a zeroed region covering r.
func NewRegion(r image.Rectangle) *Region {
	return &Region{
		Rect:   r,
		Pix:    make([]uint8, BytesPerPixel*r.Dx()*r.Dy()),
		Stride: BytesPerPixel * r.Dx(),
	}
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
// Coordinates are absolute image coordinates and must lie within Rect.
func (r *Region) PixOffset(x, y int) int {
	return (y-r.Rect.Min.Y)*r.Stride + (x-r.Rect.Min.X)*BytesPerPixel
}

// Row returns the pixel bytes of the row at absolute coordinate y.
func (r *Region) Row(y int) []uint8 {
	off := r.PixOffset(r.Rect.Min.X, y)
	return r.Pix[off : off+BytesPerPixel*r.Rect.Dx()]
}

// NRGBA exposes the region as a standard library image sharing the same
// pixel buffer. Mutating one mutates the other.
func (r *Region) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Stride,
		Rect:   r.Rect,
	}
}

// copyInto copies the pixels of src that fall inside dst's rectangle.
func copyInto(dst, src *Region) {
	overlap := dst.Rect.Intersect(src.Rect)
	if overlap.Empty() {
		return
	}
	n := BytesPerPixel * overlap.Dx()
	for y := overlap.Min.Y; y < overlap.Max.Y; y++ {
		do := dst.PixOffset(overlap.Min.X, y)
		so := src.PixOffset(overlap.Min.X, y)
		copy(dst.Pix[do:do+n], src.Pix[so:so+n])
	}
}

// checkRect validates that r is non-empty and contained in bounds.
func checkRect(r, bounds image.Rectangle) error {
	if r.Empty() {
		return fmt.Errorf("empty region %v requested", r)
	}
	if !r.In(bounds) {
		return fmt.Errorf("region %v outside image bounds %v", r, bounds)
	}
	return nil
}
