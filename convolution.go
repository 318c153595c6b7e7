package pixelpipe

import (
	"fmt"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// Convolution applies a kernel to every interior pixel. It is the shared
// implementation of the blur, sharpen, emboss and Laplacian filters.
type Convolution struct {
	name    string
	kernel  *imageutil.Kernel
	precise bool
}

// NewConvolution wraps k under the given processor name.
func NewConvolution(name string, k *imageutil.Kernel, precise bool) (*Convolution, error) {
	if k == nil {
		return nil, fmt.Errorf("%w: nil kernel", ErrInvalidKernel)
	}
	return &Convolution{name: name, kernel: k, precise: precise}, nil
}

func (c *Convolution) Name() string { return c.name }

func (c *Convolution) Border() int { return c.kernel.Radius() }

// Kernel returns the kernel being applied.
func (c *Convolution) Kernel() *imageutil.Kernel { return c.kernel }

func (c *Convolution) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	return imageutil.Convolve(b, c.kernel, c.precise, p), nil
}

// NewGaussianBlur builds a blur with a normalized Gaussian kernel.
func NewGaussianBlur(radius int, sigma float64, precise bool) (*Convolution, error) {
	k, err := imageutil.GaussianKernel(radius, sigma)
	if err != nil {
		return nil, err
	}
	return NewConvolution("gaussian-blur", k, precise)
}

// NewMeanBlur builds a box blur.
func NewMeanBlur(radius int, precise bool) (*Convolution, error) {
	k, err := imageutil.MeanKernel(radius)
	if err != nil {
		return nil, err
	}
	return NewConvolution("mean-blur", k, precise)
}

func NewSharpen(precise bool) (*Convolution, error) {
	return NewConvolution("sharpen", imageutil.SharpenKernel(), precise)
}

func NewEmboss(precise bool) (*Convolution, error) {
	return NewConvolution("emboss", imageutil.EmbossKernel(), precise)
}

// NewLaplacianOfGaussian builds a zero-mean blob detector. Flat regions map
// to black.
func NewLaplacianOfGaussian(radius int, sigma float64, precise bool) (*Convolution, error) {
	k, err := imageutil.LaplacianOfGaussianKernel(radius, sigma)
	if err != nil {
		return nil, err
	}
	return NewConvolution("laplacian-of-gaussian", k, precise)
}
