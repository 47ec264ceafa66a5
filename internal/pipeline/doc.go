// Package pipeline provides the demand-driven image plumbing that decoders
// plug into: an output image skeleton with metadata and teardown hooks, a
// pull-based region generator contract, and a bounded tile cache that keeps
// recently decoded chunks so overlapping fetches do not hit the decoder twice.
//
// # Demand model
//
// A decoder registers a Generator on an Image instead of producing pixels up
// front. Consumers call Fetch with the rectangle they need; the pixels are
// produced lazily, routed through the tile cache when one is attached. An
// eager write path (WriteLine) exists for small images that are cheaper to
// materialize in one go.
//
// # Coordinate System
//
// All coordinates are 0-based absolute image coordinates with the origin at
// the top-left corner. Regions carry their own rectangle; pixel access via
// PixOffset uses absolute coordinates, not region-relative ones.
//
// # Thread Safety
//
// Fetch may be called concurrently. The tile cache serializes its bookkeeping
// internally and collapses concurrent decodes of the same tile into a single
// generator call. Generators must therefore be safe for concurrent invocation
// on disjoint regions. Close is idempotent; teardown hooks run exactly once.
package pipeline
