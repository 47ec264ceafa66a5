// Package slide exposes a pyramidal virtual-microscope slide, or one of its
// small bundled associated images, as a single demand-driven raster image.
//
// The decoding backend is abstracted behind the Backend and Resource
// interfaces; this package owns selection, coordinate scaling, chunked
// region filling, cache sizing, and resource lifetime. Pixels are packed
// 4-byte samples; any channel reordering happens downstream.
//
// # Addressing
//
// A slide is addressed by a filename with an optional mode suffix:
//
//	path           full-resolution layer 0
//	path:2         pyramid layer 2
//	path:label     associated image named "label"
//
// # Resource lifetime
//
// The backend resource is tied to the output image's teardown the moment the
// open succeeds, before any validation that might fail. Closing the image
// releases the resource exactly once on every path, success or failure.
//
// # Concurrency
//
// Layer reads hold no mutable state beyond the handle's immutable fields, so
// the region filler tolerates concurrent invocation for disjoint regions.
// Resource implementations must support concurrent region reads; if a
// backend cannot, it has to serialize internally.
package slide
