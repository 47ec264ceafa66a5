package slide

import (
	"fmt"

	"github.com/ironlake/slideraster/internal/pipeline"
)

// readAssociated decodes the selected associated image eagerly into out.
// Associated images are small enough (thumbnails, labels, macro shots) that
// one flat decode beats tiling.
func (s *Slide) readAssociated(out *pipeline.Image) error {
	w, h := s.res.AssociatedImageDimensions(s.associated)
	if w == -1 || h == -1 {
		return dimensionError(s.res)
	}

	buf := make([]uint8, pipeline.BytesPerPixel*int(w)*int(h))
	s.res.ReadAssociatedImage(s.associated, buf)
	if err := s.res.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRead, err)
	}

	out.Init(int(w), int(h), 4, pipeline.BandFormatUint8,
		pipeline.InterpretationRGB, 1.0, 1.0)
	rowBytes := pipeline.BytesPerPixel * int(w)
	for y := 0; y < int(h); y++ {
		if err := out.WriteLine(y, buf[y*rowBytes:(y+1)*rowBytes]); err != nil {
			return err
		}
	}
	return nil
}
