package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/wbrown/pixelpipe"
	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// GaussianBlur blurs with OpenCV. Pixels within radius of an edge are
// blurred against a zero border, unlike the pure-Go blur which leaves them
// to the enclosing pipeline.
type GaussianBlur struct {
	radius int
	sigma  float64
}

// NewGaussianBlur validates radius and sigma the same way the pure-Go blur
// does.
func NewGaussianBlur(radius int, sigma float64) (*GaussianBlur, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative radius %d", pixelpipe.ErrInvalidKernel, radius)
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: sigma %g must be positive", pixelpipe.ErrInvalidKernel, sigma)
	}
	return &GaussianBlur{radius: radius, sigma: sigma}, nil
}

func (g *GaussianBlur) Name() string { return "opencv-gaussian-blur" }

func (g *GaussianBlur) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	return run(b, p, func(src gocv.Mat, dst *gocv.Mat) error {
		k := 2*g.radius + 1
		return gocv.GaussianBlur(src, dst, image.Pt(k, k), g.sigma, g.sigma, gocv.BorderConstant)
	})
}

// Negative inverts the colour channels with OpenCV. Alpha is kept.
type Negative struct{}

func (Negative) Name() string { return "opencv-negative" }

func (Negative) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	out, err := run(b, p, invert)
	if err != nil {
		return nil, err
	}
	// Alpha went through the inversion too; put the original back.
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = b.Pix[i]
	}
	return out, nil
}

// invert computes 1-v for every channel of src into dst.
func invert(src gocv.Mat, dst *gocv.Mat) error {
	if err := src.CopyTo(dst); err != nil {
		return err
	}
	dst.MultiplyFloat(-1)
	dst.AddFloat(1)
	return nil
}

// run marshals b, applies op on the native side and unmarshals the result,
// closing every Mat it creates.
func run(b *imageutil.PixelBuffer, p *progress.Progress, op func(src gocv.Mat, dst *gocv.Mat) error) (*imageutil.PixelBuffer, error) {
	p.Setup(1)
	if b.Width() == 0 || b.Height() == 0 {
		p.Increment()
		return b, nil
	}
	var result Frame
	err := withMat(MarshalFrame(b), func(src gocv.Mat) error {
		dst := gocv.NewMat()
		defer dst.Close()
		if err := op(src, &dst); err != nil {
			return fmt.Errorf("%w: %v", pixelpipe.ErrGpuBackend, err)
		}
		var err error
		result, err = frameFromMat(dst)
		return err
	})
	if err != nil {
		return nil, err
	}
	out, err := result.Unmarshal()
	if err != nil {
		return nil, err
	}
	p.Increment()
	return out, nil
}

type blurOptions struct {
	Radius int     `yaml:"radius"`
	Sigma  float64 `yaml:"sigma"`
}

func init() {
	pixelpipe.Register(pixelpipe.NewFilterDef("opencv-gaussian-blur", "Gaussian blur through OpenCV",
		blurOptions{Radius: 2, Sigma: 1.4},
		func(o blurOptions, _ pixelpipe.Settings) (pixelpipe.Pipeline, error) {
			g, err := NewGaussianBlur(o.Radius, o.Sigma)
			if err != nil {
				return nil, err
			}
			return pixelpipe.NewSingle(g), nil
		}))
	pixelpipe.Register(pixelpipe.NewFilterDef("opencv-negative", "invert colour channels through OpenCV",
		struct{}{},
		func(struct{}, pixelpipe.Settings) (pixelpipe.Pipeline, error) {
			return pixelpipe.NewSingle(Negative{}), nil
		}))
}
