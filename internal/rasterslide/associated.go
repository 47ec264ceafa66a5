package rasterslide

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// associatedImage returns the named auxiliary image, deriving it from the
// base image on first access. Unknown names record a pending error and
// return nil.
func (r *resource) associatedImage(name string) *image.NRGBA {
	var edge int
	switch name {
	case "thumbnail":
		edge = thumbnailEdge
	case "macro":
		edge = macroEdge
	default:
		r.setErr(fmt.Errorf("no such associated image %q", name))
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.setErr(fmt.Errorf("slide is closed"))
		return nil
	}
	if img, ok := r.assoc[name]; ok {
		return img
	}
	w, h := fitWithin(r.base.Bounds().Dx(), r.base.Bounds().Dy(), edge)
	img := imaging.Clone(transform.Resize(r.base, w, h, transform.Linear))
	r.assoc[name] = img
	return img
}

// fitWithin scales (w, h) down to fit a square of the given edge, keeping
// aspect ratio. Images already small enough are left alone.
func fitWithin(w, h, edge int) (int, int) {
	if w <= edge && h <= edge {
		return w, h
	}
	if w >= h {
		return edge, max(h*edge/w, 1)
	}
	return max(w*edge/h, 1), edge
}
