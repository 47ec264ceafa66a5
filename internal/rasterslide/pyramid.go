package rasterslide

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// level is one pyramid layer. img is nil until first access; geometry is
// fixed at open time.
type level struct {
	w          int
	h          int
	downsample float64
	img        *image.NRGBA
}

// levelGeometry computes the pyramid layout for a base image: each layer
// halves the previous one until the longest edge fits in one tile.
func levelGeometry(w, h int) []*level {
	levels := []*level{{w: w, h: h, downsample: 1.0}}
	for lw, lh := w/2, h/2; lw >= 1 && lh >= 1 && (levels[len(levels)-1].w > 256 || levels[len(levels)-1].h > 256); lw, lh = lw/2, lh/2 {
		levels = append(levels, &level{
			w:          lw,
			h:          lh,
			downsample: float64(w) / float64(lw),
		})
	}
	return levels
}

// levelImage returns the pixels of one layer, downsampling the base image on
// first access. Builds are serialized; reads of a built layer are not.
func (r *resource) levelImage(layer int) (*image.NRGBA, error) {
	if layer < 0 || layer >= len(r.levels) {
		return nil, fmt.Errorf("no such layer %d", layer)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("slide is closed")
	}
	l := r.levels[layer]
	if l.img == nil {
		l.img = imaging.Resize(r.base, l.w, l.h, imaging.Box)
	}
	return l.img, nil
}

// ReadRegion decodes a w x h chunk of layer into dst. x and y address the
// chunk origin in layer-0 coordinates; pixels outside the layer are left
// fully transparent.
func (r *resource) ReadRegion(dst []uint8, stride int, x, y int64, layer, w, h int) {
	img, err := r.levelImage(layer)
	if err != nil {
		r.setErr(err)
		return
	}

	ds := r.levels[layer].downsample
	lx := int(float64(x) / ds)
	ly := int(float64(y) / ds)
	lw := r.levels[layer].w
	lh := r.levels[layer].h

	for j := 0; j < h; j++ {
		row := dst[j*stride : j*stride+4*w]
		for i := range row {
			row[i] = 0
		}
		sy := ly + j
		if sy < 0 || sy >= lh {
			continue
		}
		x0 := max(lx, 0)
		x1 := min(lx+w, lw)
		if x1 <= x0 {
			continue
		}
		so := sy*img.Stride + 4*x0
		copy(row[4*(x0-lx):4*(x1-lx)], img.Pix[so:so+4*(x1-x0)])
	}
}
