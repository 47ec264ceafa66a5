// Package rasterslide implements the slide backend interface on top of
// ordinary raster files. The decoded image becomes pyramid layer 0; deeper
// layers are lazily computed halvings, and small associated images
// ("thumbnail", "macro") are derived on demand. It exists so the demand
// pipeline can be exercised end to end without a slide-container decoder.
package rasterslide

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strconv"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ironlake/slideraster/internal/slide"
)

// Edge bounds for the derived associated images.
const (
	thumbnailEdge = 256
	macroEdge     = 1024
)

// Backend opens raster files as pyramidal slides.
type Backend struct{}

// New returns a raster slide backend.
func New() *Backend { return &Backend{} }

// Open decodes the raster file at path and wraps it as a slide resource.
// Only layer 0 is materialized here; deeper layers and associated images are
// built on first access.
func (*Backend) Open(path string) (slide.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	res := &resource{
		base:  imaging.Clone(img),
		assoc: make(map[string]*image.NRGBA),
	}
	res.levels = levelGeometry(res.base.Bounds().Dx(), res.base.Bounds().Dy())
	res.levels[0].img = res.base
	res.props = res.buildProperties(format)
	return res, nil
}

// resource is one open raster slide. Levels and associated images are built
// lazily; the pending read error follows the Resource contract.
type resource struct {
	base   *image.NRGBA
	levels []*level
	props  map[string]string

	mu     sync.Mutex
	err    error
	closed bool
	assoc  map[string]*image.NRGBA
}

// associatedNames lists the associated images every raster slide offers.
var associatedNames = []string{"macro", "thumbnail"}

func (r *resource) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.base = nil
	r.assoc = nil
	for _, l := range r.levels {
		l.img = nil
	}
}

func (r *resource) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.err
	r.err = nil
	return err
}

func (r *resource) setErr(err error) {
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
}

func (r *resource) Properties() map[string]string {
	return r.props
}

func (r *resource) AssociatedImageNames() []string {
	return associatedNames
}

func (r *resource) LayerCount() int {
	return len(r.levels)
}

func (r *resource) LayerDimensions(layer int) (int64, int64) {
	if layer < 0 || layer >= len(r.levels) {
		r.setErr(fmt.Errorf("no such layer %d", layer))
		return -1, -1
	}
	l := r.levels[layer]
	return int64(l.w), int64(l.h)
}

func (r *resource) LayerDownsample(layer int) float64 {
	if layer < 0 || layer >= len(r.levels) {
		r.setErr(fmt.Errorf("no such layer %d", layer))
		return -1
	}
	return r.levels[layer].downsample
}

func (r *resource) AssociatedImageDimensions(name string) (int64, int64) {
	img := r.associatedImage(name)
	if img == nil {
		return -1, -1
	}
	return int64(img.Bounds().Dx()), int64(img.Bounds().Dy())
}

func (r *resource) ReadAssociatedImage(name string, dst []uint8) {
	img := r.associatedImage(name)
	if img == nil {
		return
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	rowBytes := 4 * w
	if len(dst) < rowBytes*h {
		r.setErr(fmt.Errorf("associated image buffer too small: %d < %d", len(dst), rowBytes*h))
		return
	}
	for y := 0; y < h; y++ {
		copy(dst[y*rowBytes:(y+1)*rowBytes], img.Pix[y*img.Stride:y*img.Stride+rowBytes])
	}
}

// buildProperties assembles the backend property map: vendor, level
// geometry and the border-derived background color.
func (r *resource) buildProperties(format string) map[string]string {
	props := map[string]string{
		slide.PropVendor:          format,
		slide.PropBackgroundColor: backgroundHex(r.base),
		"rasterslide.level-count": strconv.Itoa(len(r.levels)),
	}
	for i, l := range r.levels {
		prefix := fmt.Sprintf("rasterslide.level[%d].", i)
		props[prefix+"width"] = strconv.Itoa(l.w)
		props[prefix+"height"] = strconv.Itoa(l.h)
		props[prefix+"downsample"] = strconv.FormatFloat(l.downsample, 'f', -1, 64)
	}
	return props
}
