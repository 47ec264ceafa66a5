package slide

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ironlake/slideraster/internal/pipeline"
)

// fillRegion fills reg with pixels from the selected layer, issuing backend
// reads in tile-sized chunks. Some backends misbehave on very large single
// requests, so the request size is bounded up front; this is not a retry
// mechanism.
//
// The backend error state is checked once, after all chunks. On failure the
// chunks already written stay in the destination; the whole fill still
// reports failure.
func (s *Slide) fillRegion(reg *pipeline.Region) error {
	r := reg.Rect
	Logger().Debug("fill region",
		zap.Int("width", r.Dx()), zap.Int("height", r.Dy()),
		zap.Int("left", r.Min.X), zap.Int("top", r.Min.Y))
	for y := 0; y < r.Dy(); y += TileHeight {
		for x := 0; x < r.Dx(); x += TileWidth {
			w := min(TileWidth, r.Dx()-x)
			h := min(TileHeight, r.Dy()-y)
			ox := r.Min.X + x
			oy := r.Min.Y + y

			s.res.ReadRegion(reg.Pix[reg.PixOffset(ox, oy):], reg.Stride,
				int64(float64(ox)*s.downsample),
				int64(float64(oy)*s.downsample),
				s.layer, w, h)
		}
	}

	if err := s.res.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRead, err)
	}
	return nil
}
