package imageutil

import "errors"

var (
	// ErrInvalidKernel is returned for kernels with even or zero dimensions or
	// a value count that does not match width*height.
	ErrInvalidKernel = errors.New("invalid kernel")

	// ErrInvalidImageFormat is returned when pixel data does not match the
	// declared dimensions or cannot be decoded.
	ErrInvalidImageFormat = errors.New("invalid image format")
)
