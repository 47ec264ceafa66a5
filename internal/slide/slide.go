package slide

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ironlake/slideraster/internal/pipeline"
)

// Chunk edge for backend reads and for the tile cache wrapping them. The
// backend's own caching can't always hold a complete line of pixels, so the
// cache here is sized explicitly.
const (
	TileWidth  = 256
	TileHeight = 256
)

// Metadata keys set on the output image.
const (
	// MetaLayer is the selected pyramid layer index (layer mode only).
	MetaLayer = "slide-layer"

	// MetaAssociated is the selected associated image name (associated
	// mode only).
	MetaAssociated = "slide-associated-image"

	// MetaAssociatedList is a comma-joined list of all associated image
	// names available on the slide.
	MetaAssociatedList = "slide-associated-images"

	// MetaBackground is the packed RGB background color, defaulting to
	// white when the backend reports none.
	MetaBackground = "background-rgb"
)

// Slide is an open slide resolved to one layer or one associated image.
// After construction all fields are immutable; the region filler keeps no
// other state.
type Slide struct {
	res        Resource
	associated string // empty in layer mode

	// Only meaningful when associated is empty.
	layer      int
	downsample float64

	width  int
	height int
}

// SplitPath splits a slide filename into base path and mode suffix. The mode
// is everything after the last colon; a suffix containing a path separator
// is part of the path, so Windows drive letters survive.
func SplitPath(filename string) (path, mode string) {
	i := strings.LastIndex(filename, ":")
	if i <= 0 || strings.ContainsAny(filename[i+1:], `/\`) {
		return filename, ""
	}
	return filename[:i], filename[i+1:]
}

// Probe reports whether path is a pyramidal slide this package supports.
// Plain tiled containers are declined even when the backend can open them.
// The probe resource is always closed before returning.
func Probe(b Backend, path string) bool {
	res, err := b.Open(path)
	if err != nil || res == nil {
		return false
	}
	defer res.Close()
	vendor, ok := res.Properties()[PropVendor]
	return ok && vendor != vendorGenericTiled
}

// Open opens the slide addressed by filename and prepares out for reading.
//
// Layer mode initializes out as a 4-band 8-bit RGB image and registers a
// lazy region filler behind a tile cache sized for one and a half rows of
// tiles. Associated mode decodes the whole image eagerly into out.
//
// The backend resource is released by out's teardown; callers must Close
// out whether or not Open succeeds.
func Open(b Backend, filename string, out *pipeline.Image) error {
	path, mode := SplitPath(filename)
	s, err := newSlide(b, path, mode, out)
	if err != nil {
		return err
	}

	if s.associated != "" {
		return s.readAssociated(out)
	}

	out.Init(s.width, s.height, 4, pipeline.BandFormatUint8,
		pipeline.InterpretationRGB, 1.0, 1.0)
	out.SetGenerator(s.fillRegion, pipeline.DemandSmallTile)
	return out.AttachTileCache(TileWidth, TileHeight, cacheTiles(s.width, TileWidth))
}

// newSlide opens the backend resource, resolves the mode selector and copies
// slide metadata onto out. The resource is registered for release on out's
// teardown immediately after the open succeeds, before any validation, so
// every later failure path still releases it.
func newSlide(b Backend, path, mode string, out *pipeline.Image) (*Slide, error) {
	res, err := b.Open(path)
	if err != nil || res == nil {
		return nil, fmt.Errorf("%w: %s", ErrOpen, path)
	}
	out.OnClose(res.Close)

	s := &Slide{res: res}

	switch {
	case mode == "":
		s.layer = 0
	default:
		if n, convErr := strconv.Atoi(mode); convErr == nil {
			if n < 0 || n >= res.LayerCount() {
				return nil, fmt.Errorf("%w: %d", ErrInvalidLayer, n)
			}
			s.layer = n
		} else {
			if !containsName(res.AssociatedImageNames(), mode) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidAssociatedImage, mode)
			}
			s.associated = mode
		}
	}

	var w, h int64
	if s.associated != "" {
		w, h = res.AssociatedImageDimensions(s.associated)
	} else {
		w, h = res.LayerDimensions(s.layer)
		s.downsample = res.LayerDownsample(s.layer)
	}

	if w < 0 || h < 0 || s.downsample < 0 {
		return nil, dimensionError(res)
	}
	if w != int64(int(w)) || h != int64(int(h)) {
		return nil, ErrDimensionOverflow
	}
	s.width = int(w)
	s.height = int(h)

	background := 0xffffff
	if hex, ok := res.Properties()[PropBackgroundColor]; ok {
		if v, parseErr := strconv.ParseUint(hex, 16, 32); parseErr == nil {
			background = int(v)
		}
	}
	out.SetInt(MetaBackground, background)

	for k, v := range res.Properties() {
		out.SetString(k, v)
	}
	if s.associated != "" {
		out.SetString(MetaAssociated, s.associated)
	} else {
		out.SetInt(MetaLayer, s.layer)
	}
	out.SetString(MetaAssociatedList, strings.Join(res.AssociatedImageNames(), ", "))

	Logger().Debug("opened slide",
		zap.String("path", path),
		zap.String("mode", mode),
		zap.Int64("width", w),
		zap.Int64("height", h),
		zap.Float64("downsample", s.downsample))

	return s, nil
}

// dimensionError wraps the backend's pending error, when there is one, under
// ErrDimensions.
func dimensionError(res Resource) error {
	if err := res.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDimensions, err)
	}
	return ErrDimensions
}

// cacheTiles returns the capacity, in tiles, for the cache wrapping the
// region filler: one and a half full rows. Area operations downstream
// revisit neighboring tiles; holding a row and a half means each source tile
// is decoded once per sequential pass over rows. Undersizing costs repeat
// decodes, never wrong pixels.
func cacheTiles(width, tileEdge int) int {
	perRow := (width + tileEdge - 1) / tileEdge
	return int(math.Ceil(1.5 * float64(perRow)))
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
