package pipeline

import (
	"fmt"
	"image"
	"sort"
	"sync"
)

// BandFormat identifies the numeric format of one sample.
type BandFormat int

const (
	// BandFormatUint8 is an 8-bit unsigned sample.
	BandFormatUint8 BandFormat = iota
)

// Interpretation describes how the bands of an image should be read.
type Interpretation int

const (
	// InterpretationRGB marks the first three bands as red, green, blue.
	InterpretationRGB Interpretation = iota
)

// DemandHint tells the consumer which access pattern the generator serves
// most efficiently.
type DemandHint int

const (
	// DemandSmallTile suits generators backed by small, irregularly
	// accessed chunks.
	DemandSmallTile DemandHint = iota

	// DemandThinStrip suits generators that produce full-width strips.
	DemandThinStrip
)

// Generator produces the pixels for one requested region. It is invoked
// lazily, possibly concurrently for disjoint regions, and must not retain
// the region after returning.
type Generator func(reg *Region) error

// Image is an output image skeleton: dimensions and sample layout, string
// and integer metadata, a lazy pixel source, and teardown hooks that run
// exactly once when the image is closed.
//
// An Image starts empty. A decoder calls Init to fix the geometry, then
// either registers a Generator (lazy path) or writes rows via WriteLine
// (eager path). Consumers pull pixels with Fetch.
type Image struct {
	width  int
	height int
	bands  int
	format BandFormat
	interp Interpretation
	xres   float64
	yres   float64
	hint   DemandHint

	metaMu sync.RWMutex
	meta   map[string]any

	gen   Generator
	cache *TileCache
	pix   []uint8

	closeOnce sync.Once
	teardown  []func()
}

// New returns an empty image skeleton ready for metadata and Init.
func New() *Image {
	return &Image{meta: make(map[string]any)}
}

// Init fixes the image geometry and sample layout. Resolution is in pixels
// per unit along each axis.
func (im *Image) Init(width, height, bands int, format BandFormat, interp Interpretation, xres, yres float64) {
	im.width = width
	im.height = height
	im.bands = bands
	im.format = format
	im.interp = interp
	im.xres = xres
	im.yres = yres
}

// Width returns the image width in pixels.
func (im *Image) Width() int { return im.width }

// Height returns the image height in pixels.
func (im *Image) Height() int { return im.height }

// Bands returns the number of interleaved sample bands per pixel.
func (im *Image) Bands() int { return im.bands }

// Format returns the sample format.
func (im *Image) Format() BandFormat { return im.format }

// Interpretation returns the band interpretation.
func (im *Image) Interpretation() Interpretation { return im.interp }

// Bounds returns the image extent as a rectangle anchored at the origin.
func (im *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.width, im.height)
}

// SetString stores a string metadata field.
func (im *Image) SetString(key, value string) {
	im.metaMu.Lock()
	im.meta[key] = value
	im.metaMu.Unlock()
}

// GetString returns a string metadata field.
func (im *Image) GetString(key string) (string, bool) {
	im.metaMu.RLock()
	defer im.metaMu.RUnlock()
	s, ok := im.meta[key].(string)
	return s, ok
}

// SetInt stores an integer metadata field.
func (im *Image) SetInt(key string, value int) {
	im.metaMu.Lock()
	im.meta[key] = value
	im.metaMu.Unlock()
}

// GetInt returns an integer metadata field.
func (im *Image) GetInt(key string) (int, bool) {
	im.metaMu.RLock()
	defer im.metaMu.RUnlock()
	n, ok := im.meta[key].(int)
	return n, ok
}

// MetaKeys returns all metadata keys in sorted order.
func (im *Image) MetaKeys() []string {
	im.metaMu.RLock()
	defer im.metaMu.RUnlock()
	keys := make([]string, 0, len(im.meta))
	for k := range im.meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Meta returns the metadata value stored under key.
func (im *Image) Meta(key string) (any, bool) {
	im.metaMu.RLock()
	defer im.metaMu.RUnlock()
	v, ok := im.meta[key]
	return v, ok
}

// SetGenerator registers the lazy pixel source together with the access
// pattern it serves best.
func (im *Image) SetGenerator(gen Generator, hint DemandHint) {
	im.gen = gen
	im.hint = hint
}

// Hint returns the demand hint declared by the generator.
func (im *Image) Hint() DemandHint { return im.hint }

// AttachTileCache interposes a bounded tile cache between Fetch and the
// registered generator. Capacity is in tiles. Must be called after
// SetGenerator.
func (im *Image) AttachTileCache(tileW, tileH, capacity int) error {
	if im.gen == nil {
		return fmt.Errorf("no generator registered")
	}
	im.cache = NewTileCache(im.gen, im.Bounds(), tileW, tileH, capacity)
	return nil
}

// Fetch produces the pixels for rect. Materialized images copy from their
// buffer; lazy images route through the tile cache when one is attached,
// otherwise they invoke the generator directly.
func (im *Image) Fetch(rect image.Rectangle) (*Region, error) {
	if err := checkRect(rect, im.Bounds()); err != nil {
		return nil, err
	}
	if im.pix != nil {
		out := NewRegion(rect)
		whole := &Region{Rect: im.Bounds(), Pix: im.pix, Stride: BytesPerPixel * im.width}
		copyInto(out, whole)
		return out, nil
	}
	if im.cache != nil {
		return im.cache.Fetch(rect)
	}
	if im.gen != nil {
		out := NewRegion(rect)
		if err := im.gen(out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("image has no pixel source")
}

// WriteLine stores one full row of packed pixels at row y, materializing the
// image buffer on first use. The eager counterpart to SetGenerator.
func (im *Image) WriteLine(y int, row []uint8) error {
	if im.width <= 0 || im.height <= 0 {
		return fmt.Errorf("image not initialized")
	}
	if y < 0 || y >= im.height {
		return fmt.Errorf("row %d outside image height %d", y, im.height)
	}
	rowBytes := BytesPerPixel * im.width
	if len(row) != rowBytes {
		return fmt.Errorf("row length %d, want %d", len(row), rowBytes)
	}
	if im.pix == nil {
		im.pix = make([]uint8, rowBytes*im.height)
	}
	copy(im.pix[y*rowBytes:], row)
	return nil
}

// OnClose registers fn to run when the image is closed. Hooks run in reverse
// registration order.
func (im *Image) OnClose(fn func()) {
	im.teardown = append(im.teardown, fn)
}

// Close runs the teardown hooks. Safe to call more than once; hooks run
// exactly once.
func (im *Image) Close() {
	im.closeOnce.Do(func() {
		for i := len(im.teardown) - 1; i >= 0; i-- {
			im.teardown[i]()
		}
	})
}
