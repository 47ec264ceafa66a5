package slide

// Well-known backend property names.
const (
	// PropVendor identifies the slide vendor. Absent on unrecognized
	// containers.
	PropVendor = "slide.vendor"

	// PropBackgroundColor is an RGB hex string (e.g. "FFFFFF") naming the
	// color behind transparent slide areas.
	PropBackgroundColor = "slide.background-color"
)

// vendorGenericTiled marks a plain tiled container with no pyramid
// semantics. Those are declined here and left to the generic tiled reader.
const vendorGenericTiled = "generic-tiff"

// Backend opens slide resources. Implementations decode a concrete slide
// container; this package never touches raw container bytes.
type Backend interface {
	// Open opens the slide at path. A nil error means the resource is
	// usable until Close.
	Open(path string) (Resource, error)
}

// Resource is one open slide. All read methods may be called from multiple
// goroutines; see the package documentation.
//
// Read calls do not return errors directly. A failed read records a pending
// error on the resource; Err returns and clears it. This mirrors how slide
// decoding libraries report transient decode failures out of band.
type Resource interface {
	// Close releases the resource. Idempotent.
	Close()

	// Err returns the pending read error and clears it, or nil.
	Err() error

	// Properties returns the backend's key/value metadata.
	Properties() map[string]string

	// AssociatedImageNames enumerates the bundled auxiliary images.
	AssociatedImageNames() []string

	// LayerCount returns the number of pyramid layers. Layer 0 is full
	// resolution.
	LayerCount() int

	// LayerDimensions returns the pixel size of a layer. Negative values
	// signal a backend failure.
	LayerDimensions(layer int) (w, h int64)

	// LayerDownsample returns the ratio of layer-0 coordinates to the given
	// layer's coordinates. Negative on failure.
	LayerDownsample(layer int) float64

	// AssociatedImageDimensions returns the pixel size of an associated
	// image, or (-1, -1) when unknown.
	AssociatedImageDimensions(name string) (w, h int64)

	// ReadRegion decodes a w x h pixel chunk of layer into dst. x and y are
	// layer-0 coordinates of the chunk origin; w and h are in the layer's
	// own coordinates. Rows in dst are stride bytes apart. Pixels outside
	// the layer are written fully transparent.
	ReadRegion(dst []uint8, stride int, x, y int64, layer, w, h int)

	// ReadAssociatedImage decodes the whole associated image into dst as
	// tightly packed rows.
	ReadAssociatedImage(name string, dst []uint8)
}
