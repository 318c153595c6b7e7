package pixelpipe

import (
	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// Gradient renders the normalized gradient magnitude of an image. Luma mode
// writes the same gray to R, G and B; per-channel mode keeps one magnitude
// plane per colour channel.
type Gradient struct {
	name string
	opts imageutil.GradientOptions
}

func (g *Gradient) Name() string { return g.name }

func (g *Gradient) Border() int { return g.opts.Kernels.Radius() }

func (g *Gradient) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	return imageutil.ApplyGradient(b, g.opts, p), nil
}

func newGradient(name string, kp imageutil.KernelPair, perChannel, precise bool) *Gradient {
	return &Gradient{name: name, opts: imageutil.GradientOptions{
		Kernels:    kp,
		PerChannel: perChannel,
		Precise:    precise,
	}}
}

func NewSobel(precise bool) *Gradient {
	return newGradient("sobel", imageutil.SobelKernels(), false, precise)
}

func NewSobelRGB(precise bool) *Gradient {
	return newGradient("sobel-rgb", imageutil.SobelKernels(), true, precise)
}

func NewPrewitt(precise bool) *Gradient {
	return newGradient("prewitt", imageutil.PrewittKernels(), false, precise)
}

func NewPrewittRGB(precise bool) *Gradient {
	return newGradient("prewitt-rgb", imageutil.PrewittKernels(), true, precise)
}
