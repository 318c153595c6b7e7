package pixelpipe

import (
	"fmt"
	"math"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// Scale resizes a buffer, either to a fixed size or by a factor of the
// input size.
type Scale struct {
	width, height int
	factor        float64
	interp        imageutil.Interpolation
}

// NewScale resizes to exactly width x height.
func NewScale(width, height int, interp imageutil.Interpolation) (*Scale, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: scale to %dx%d", ErrInvalidOptions, width, height)
	}
	return &Scale{width: width, height: height, interp: interp}, nil
}

// NewScaleFactor multiplies both dimensions by factor, keeping at least one
// pixel on each axis.
func NewScaleFactor(factor float64, interp imageutil.Interpolation) (*Scale, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("%w: scale factor %g must be positive", ErrInvalidOptions, factor)
	}
	return &Scale{factor: factor, interp: interp}, nil
}

func (s *Scale) Name() string { return "scale" }

// target returns the output size for an input of size in.
func (s *Scale) target(in imageutil.Size) imageutil.Size {
	if s.factor == 0 {
		return imageutil.Size{Width: s.width, Height: s.height}
	}
	return imageutil.Size{
		Width:  max(1, int(math.Round(float64(in.Width)*s.factor))),
		Height: max(1, int(math.Round(float64(in.Height)*s.factor))),
	}
}

func (s *Scale) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	p.Setup(1)
	if b.Width() == 0 || b.Height() == 0 {
		p.Increment()
		return b, nil
	}
	size := s.target(b.Size())
	out := imageutil.Resize(b, size.Width, size.Height, s.interp)
	p.Increment()
	return out, nil
}

// Rotate turns a buffer clockwise by a multiple of 90 degrees.
type Rotate struct {
	quarter int
}

// NewRotate accepts any multiple of 90, negative values turning
// counter-clockwise. Other angles fail with ErrInvalidAngle.
func NewRotate(degrees int) (*Rotate, error) {
	if degrees%90 != 0 {
		return nil, fmt.Errorf("%w: %d degrees is not a multiple of 90", ErrInvalidAngle, degrees)
	}
	return &Rotate{quarter: ((degrees/90)%4 + 4) % 4}, nil
}

func (r *Rotate) Name() string { return "rotate" }

// Degrees returns the clockwise rotation in [0, 360).
func (r *Rotate) Degrees() int { return r.quarter * 90 }

func (r *Rotate) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	w, h := b.Width(), b.Height()
	if r.quarter == 0 {
		p.Setup(0)
		return b, nil
	}
	size := imageutil.Size{Width: w, Height: h}
	if r.quarter%2 == 1 {
		size = imageutil.Size{Width: h, Height: w}
	}
	out := imageutil.NewPixelBuffer(size.Width, size.Height)
	// source returns the input coordinate that lands on output (x, y).
	source := func(x, y int) (int, int) {
		switch r.quarter {
		case 1:
			return y, h - 1 - x
		case 2:
			return w - 1 - x, h - 1 - y
		default:
			return w - 1 - y, x
		}
	}
	p.Setup(size.Height)
	out.ParForEachRow(func(y int, row []uint8) {
		for x := 0; x < size.Width; x++ {
			sx, sy := source(x, y)
			i := sy*b.Stride + sx*4
			copy(row[x*4:x*4+4], b.Pix[i:i+4])
		}
	}, p, imageutil.FullOffset(size))
	return out, nil
}

// RotateFlexible turns a buffer clockwise by any angle. The canvas grows to
// hold the whole rotated image and pixels no source pixel lands on take the
// fill colour. Sampling is nearest neighbour.
type RotateFlexible struct {
	degrees  float64
	sin, cos float64
	fill     Pixel
}

// NewRotateFlexible accepts any finite angle in degrees.
func NewRotateFlexible(degrees float64, fill Pixel) (*RotateFlexible, error) {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return nil, fmt.Errorf("%w: %g degrees", ErrInvalidAngle, degrees)
	}
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return &RotateFlexible{degrees: degrees, sin: sin, cos: cos, fill: fill}, nil
}

func (r *RotateFlexible) Name() string { return "rotate-flexible" }

// Degrees returns the clockwise rotation as given.
func (r *RotateFlexible) Degrees() float64 { return r.degrees }

// target returns the bounding box of an in-sized image after rotation.
func (r *RotateFlexible) target(in imageutil.Size) imageutil.Size {
	w, h := float64(in.Width), float64(in.Height)
	sin, cos := math.Abs(r.sin), math.Abs(r.cos)
	return imageutil.Size{
		Width:  int(math.Round(w*cos + h*sin)),
		Height: int(math.Round(w*sin + h*cos)),
	}
}

func (r *RotateFlexible) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	w, h := b.Width(), b.Height()
	if w == 0 || h == 0 {
		p.Setup(0)
		return b, nil
	}
	size := r.target(b.Size())
	out := imageutil.NewPixelBuffer(size.Width, size.Height)
	// Both centres sit between pixels for even sizes, so quarter turns
	// land exactly on source pixels.
	cx, cy := float64(w-1)/2, float64(h-1)/2
	ox, oy := float64(size.Width-1)/2, float64(size.Height-1)/2
	fill := r.fill
	p.Setup(size.Height)
	out.ParForEachRow(func(y int, row []uint8) {
		dy := float64(y) - oy
		for x := 0; x < size.Width; x++ {
			dx := float64(x) - ox
			sx := int(math.Round(dx*r.cos + dy*r.sin + cx))
			sy := int(math.Round(-dx*r.sin + dy*r.cos + cy))
			px := row[x*4 : x*4+4 : x*4+4]
			if sx < 0 || sx >= w || sy < 0 || sy >= h {
				px[0], px[1], px[2], px[3] = fill.R, fill.G, fill.B, fill.A
				continue
			}
			i := sy*b.Stride + sx*4
			copy(px, b.Pix[i:i+4])
		}
	}, p, imageutil.FullOffset(size))
	return out, nil
}
