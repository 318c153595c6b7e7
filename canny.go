package pixelpipe

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// CannyKernel selects the gradient operator used by Canny.
type CannyKernel int

const (
	CannySobel CannyKernel = iota
	CannyPrewitt
	// CannyScharr is declared but not implemented.
	CannyScharr
)

func (k CannyKernel) String() string {
	switch k {
	case CannySobel:
		return "sobel"
	case CannyPrewitt:
		return "prewitt"
	case CannyScharr:
		return "scharr"
	}
	return fmt.Sprintf("CannyKernel(%d)", int(k))
}

// ParseCannyKernel accepts "sobel", "prewitt" or "scharr".
func ParseCannyKernel(s string) (CannyKernel, error) {
	switch strings.ToLower(s) {
	case "", "sobel":
		return CannySobel, nil
	case "prewitt":
		return CannyPrewitt, nil
	case "scharr":
		return CannyScharr, nil
	}
	return 0, fmt.Errorf("%w: unknown canny kernel %q", ErrInvalidOptions, s)
}

func (k CannyKernel) kernels() (imageutil.KernelPair, error) {
	switch k {
	case CannySobel:
		return imageutil.SobelKernels(), nil
	case CannyPrewitt:
		return imageutil.PrewittKernels(), nil
	case CannyScharr:
		return imageutil.KernelPair{}, fmt.Errorf("%w: scharr kernel", ErrNotImplemented)
	}
	return imageutil.KernelPair{}, fmt.Errorf("%w: unknown canny kernel %d", ErrInvalidOptions, int(k))
}

// CannyOptions configure a Canny edge detector. Low and High are compared
// with the gradient of the channel average, channels scaled to [0,1]. A hard
// black to white step measures 4 under Sobel and 3 under Prewitt.
type CannyOptions struct {
	Radius  int
	Sigma   float64
	Kernel  CannyKernel
	Low     float64
	High    float64
	Precise bool
	// Fast blurs without enlargement, leaving a ring of Radius pixels
	// unblurred.
	Fast bool
}

// DefaultCannyOptions returns a 5x5 blur with sigma 1.4 and Sobel gradients.
func DefaultCannyOptions() CannyOptions {
	return CannyOptions{
		Radius: 2,
		Sigma:  1.4,
		Kernel: CannySobel,
		Low:    0.2,
		High:   0.6,
	}
}

// Canny renders an edge map: strong edges white, weak edges black and
// everything else mid-gray.
type Canny struct {
	opts    CannyOptions
	blur    *EnlargementCropPipeline
	kernels imageutil.KernelPair
}

// cannyStages is the number of progress increments per run.
const cannyStages = 5

// NewCanny validates opts. The blur pads with replicated edge pixels, so
// the image boundary never reads as an edge.
func NewCanny(opts CannyOptions) (*Canny, error) {
	if opts.Low < 0 || opts.Low > opts.High {
		return nil, fmt.Errorf("%w: canny thresholds low %g high %g", ErrInvalidOptions, opts.Low, opts.High)
	}
	kp, err := opts.Kernel.kernels()
	if err != nil {
		return nil, err
	}
	gauss, err := NewGaussianBlur(opts.Radius, opts.Sigma, opts.Precise)
	if err != nil {
		return nil, err
	}
	blur, err := NewEnlargementCropPipeline(gauss, EnlargementCropOptions{
		Fast:     opts.Fast,
		Strategy: BorderReplicate,
	})
	if err != nil {
		return nil, err
	}
	return &Canny{opts: opts, blur: blur, kernels: kp}, nil
}

func (c *Canny) Name() string { return "canny" }

func (c *Canny) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	p.Setup(cannyStages)
	size := b.Size()

	blurred, err := c.blur.Run(b, progress.NewPipeline())
	if err != nil {
		return nil, fmt.Errorf("blur: %w", err)
	}
	p.Increment()

	g := imageutil.ComputeGradient(blurred, c.kernels, c.opts.Precise, nil)
	if !c.opts.Precise {
		for i := range g.Magnitude {
			g.Magnitude[i] /= 255
		}
	}
	p.Increment()

	thin := imageutil.NonMaxSuppression(g, nil)
	p.Increment()

	classes := imageutil.DoubleThreshold(thin, float32(c.opts.Low), float32(c.opts.High), nil)
	p.Increment()

	out := imageutil.RenderThresholds(classes, size, c.kernels.Radius(), nil)
	p.Increment()

	log.Debug().
		Str("kernel", c.opts.Kernel.String()).
		Int("interior_width", g.Width).
		Int("interior_height", g.Height).
		Msg("canny finished")
	return out, nil
}
