package pixelpipe

import (
	"errors"

	"github.com/wbrown/pixelpipe/imageutil"
)

var (
	// ErrInvalidKernel reports a kernel with even or zero dimensions or a
	// value count that does not match them.
	ErrInvalidKernel = imageutil.ErrInvalidKernel

	// ErrInvalidImageFormat reports pixel data that does not match its
	// declared size or cannot be decoded.
	ErrInvalidImageFormat = imageutil.ErrInvalidImageFormat

	// ErrInvalidAngle reports a rotation the processor cannot perform.
	ErrInvalidAngle = errors.New("invalid angle")

	// ErrInvalidChannelSelector reports a malformed channel selector.
	ErrInvalidChannelSelector = errors.New("invalid channel selector")

	// ErrInvalidOptions reports any other malformed processor or pipeline
	// option, including unknown filters and option keys.
	ErrInvalidOptions = errors.New("invalid options")

	// ErrGpuBackend reports a failure inside a native accelerated backend.
	// There is no automatic fallback to the CPU path.
	ErrGpuBackend = errors.New("gpu backend error")

	// ErrNotImplemented reports an option that is declared but has no
	// implementation yet.
	ErrNotImplemented = errors.New("not implemented")
)
