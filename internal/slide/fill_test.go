package slide

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/ironlake/slideraster/internal/pipeline"
)

// openLayer builds a Slide directly so the region filler can be exercised
// without the tile cache in front of it.
func openLayer(t *testing.T, res *fakeResource, mode string) (*Slide, *pipeline.Image) {
	t.Helper()
	out := pipeline.New()
	t.Cleanup(out.Close)
	s, err := newSlide(&fakeBackend{res: res}, "x.svs", mode, out)
	if err != nil {
		t.Fatalf("newSlide failed: %v", err)
	}
	return s, out
}

func TestFillRegion_ChunkDecomposition(t *testing.T) {
	res := newFakeResource()
	s, _ := openLayer(t, res, "")

	reg := pipeline.NewRegion(image.Rect(0, 0, 300, 300))
	if err := s.fillRegion(reg); err != nil {
		t.Fatalf("fillRegion failed: %v", err)
	}

	want := []regionCall{
		{x: 0, y: 0, layer: 0, w: 256, h: 256},
		{x: 256, y: 0, layer: 0, w: 44, h: 256},
		{x: 0, y: 256, layer: 0, w: 256, h: 44},
		{x: 256, y: 256, layer: 0, w: 44, h: 44},
	}
	if len(res.regionCalls) != len(want) {
		t.Fatalf("backend calls = %d, want %d: %v", len(res.regionCalls), len(want), res.regionCalls)
	}
	for i, w := range want {
		if res.regionCalls[i] != w {
			t.Errorf("call %d = %+v, want %+v", i, res.regionCalls[i], w)
		}
	}

	// The assembled pixels must equal one hypothetical whole-rect read:
	// no gaps, no overlaps, no misplaced chunks.
	whole := pipeline.NewRegion(image.Rect(0, 0, 300, 300))
	res.ReadRegion(whole.Pix, whole.Stride, 0, 0, 0, 300, 300)
	if !bytes.Equal(reg.Pix, whole.Pix) {
		t.Error("assembled chunks differ from a single whole-rect read")
	}
}

func TestFillRegion_OffsetAndDownsample(t *testing.T) {
	res := newFakeResource()
	s, _ := openLayer(t, res, "1")

	// Layer 1 has downsample 4: output origin (100, 50) maps to source
	// origin (400, 200) in layer-0 coordinates.
	reg := pipeline.NewRegion(image.Rect(100, 50, 200, 150))
	if err := s.fillRegion(reg); err != nil {
		t.Fatalf("fillRegion failed: %v", err)
	}

	if len(res.regionCalls) != 1 {
		t.Fatalf("backend calls = %d, want 1", len(res.regionCalls))
	}
	got := res.regionCalls[0]
	want := regionCall{x: 400, y: 200, layer: 1, w: 100, h: 100}
	if got != want {
		t.Errorf("call = %+v, want %+v", got, want)
	}
}

func TestFillRegion_ReadFailure(t *testing.T) {
	res := newFakeResource()
	res.failAfter = 3
	s, _ := openLayer(t, res, "")

	reg := pipeline.NewRegion(image.Rect(0, 0, 300, 300))
	err := s.fillRegion(reg)
	if !errors.Is(err, ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}

	// All four chunks were still issued: chunking bounds request size, it
	// does not abort early or retry.
	if len(res.regionCalls) != 4 {
		t.Errorf("backend calls = %d, want 4", len(res.regionCalls))
	}

	// Chunks written before the failure stay in the destination.
	if reg.Pix[3] != 255 {
		t.Error("previously written chunk bytes should remain after failure")
	}

	// The error state was consumed by the fill; a second fill succeeds.
	if err := s.fillRegion(pipeline.NewRegion(image.Rect(0, 0, 10, 10))); err != nil {
		t.Errorf("second fill: %v", err)
	}
}

func TestFillRegion_Stateless(t *testing.T) {
	res := newFakeResource()
	s, _ := openLayer(t, res, "")

	a := pipeline.NewRegion(image.Rect(0, 0, 64, 64))
	if err := s.fillRegion(a); err != nil {
		t.Fatalf("first fill: %v", err)
	}
	b := pipeline.NewRegion(image.Rect(0, 0, 64, 64))
	if err := s.fillRegion(b); err != nil {
		t.Fatalf("second fill: %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("repeated fills of the same region should be identical")
	}
}

func TestOpen_LayerFetchThroughCache(t *testing.T) {
	res := newFakeResource()
	out := pipeline.New()
	defer out.Close()

	if err := Open(&fakeBackend{res: res}, "x.svs", out); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	reg, err := out.Fetch(image.Rect(10, 20, 74, 52))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	// Pixel values encode their source coordinates in the fake backend.
	o := reg.PixOffset(10, 20)
	if reg.Pix[o] != 10 || reg.Pix[o+1] != 20 {
		t.Errorf("pixel (10,20) = (%d,%d), want (10,20)", reg.Pix[o], reg.Pix[o+1])
	}

	calls := len(res.regionCalls)
	if _, err := out.Fetch(image.Rect(10, 20, 74, 52)); err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if len(res.regionCalls) != calls {
		t.Errorf("cached refetch hit the backend: %d -> %d calls", calls, len(res.regionCalls))
	}
}

func TestReadAssociated_UnknownDimensions(t *testing.T) {
	res := newFakeResource()
	res.assoc["label"] = [2]int64{-1, -1}
	out := pipeline.New()
	defer out.Close()

	err := Open(&fakeBackend{res: res}, "x.svs:label", out)
	if !errors.Is(err, ErrDimensions) {
		t.Fatalf("err = %v, want ErrDimensions", err)
	}
	if len(res.assocReads) != 0 {
		t.Error("no decode should be issued when dimensions are unknown")
	}
}

func TestReadAssociated_Eager(t *testing.T) {
	res := newFakeResource()
	out := pipeline.New()
	defer out.Close()

	if err := Open(&fakeBackend{res: res}, "x.svs:label", out); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Exactly one synchronous decode, no lazy re-invocation.
	if len(res.assocReads) != 1 || res.assocReads[0] != "label" {
		t.Fatalf("assocReads = %v, want one read of \"label\"", res.assocReads)
	}

	reg, err := out.Fetch(image.Rect(0, 0, 80, 60))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	o := reg.PixOffset(5, 7)
	if reg.Pix[o] != 5 || reg.Pix[o+1] != 7 || reg.Pix[o+2] != 200 {
		t.Errorf("pixel (5,7) = (%d,%d,%d), want (5,7,200)",
			reg.Pix[o], reg.Pix[o+1], reg.Pix[o+2])
	}
	if len(res.assocReads) != 1 {
		t.Error("Fetch after the eager read should not decode again")
	}
}

func TestReadAssociated_DecodeFailure(t *testing.T) {
	res := newFakeResource()
	failing := &failingAssocResource{fakeResource: res}
	out := pipeline.New()
	defer out.Close()

	err := Open(&fakeBackend{res: failing}, "x.svs:label", out)
	if !errors.Is(err, ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}
}

// failingAssocResource decorates fakeResource so ReadAssociatedImage leaves
// a pending error behind.
type failingAssocResource struct {
	*fakeResource
}

func (r *failingAssocResource) ReadAssociatedImage(name string, dst []uint8) {
	r.fakeResource.ReadAssociatedImage(name, dst)
	r.pending = errors.New("simulated associated decode failure")
}
