package slide

import "errors"

// Classified failures returned by Probe, Open and region reads. Backend
// detail is attached by wrapping, so errors.Is matches the kind.
var (
	ErrOpen                   = errors.New("failure opening slide")
	ErrInvalidLayer           = errors.New("invalid slide layer")
	ErrInvalidAssociatedImage = errors.New("invalid associated image name")
	ErrDimensions             = errors.New("getting slide dimensions")
	ErrDimensionOverflow      = errors.New("image dimensions overflow int")
	ErrRead                   = errors.New("reading slide region")
)
