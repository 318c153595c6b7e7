package imageutil

import (
	"fmt"
	"strings"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationCatmullRom is the high quality default for both up and
	// down scaling.
	InterpolationCatmullRom Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality.
	InterpolationNearest
)

// ParseInterpolation accepts "catmull-rom", "linear" or "nearest".
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(s) {
	case "", "catmull-rom", "catmullrom", "cubic":
		return InterpolationCatmullRom, nil
	case "linear", "bilinear":
		return InterpolationLinear, nil
	case "nearest":
		return InterpolationNearest, nil
	}
	return 0, fmt.Errorf("unknown interpolation %q", s)
}

func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// Resize returns b scaled to width x height.
func Resize(b *PixelBuffer, width, height int, interp Interpolation) *PixelBuffer {
	dst := NewPixelBuffer(width, height)
	interp.scaler().Scale(dst.RGBA, dst.Rect, b.RGBA, b.Rect, draw.Src, nil)
	return dst
}

// ResizeToWidth scales b to width, keeping the aspect ratio.
func ResizeToWidth(b *PixelBuffer, width int, interp Interpolation) *PixelBuffer {
	height := max(1, width*b.Height()/max(b.Width(), 1))
	return Resize(b, width, height, interp)
}
