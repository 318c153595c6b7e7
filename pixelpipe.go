// Package pixelpipe is an image filter engine. Processors transform a
// PixelBuffer; pipelines compose processors, add the border handling that
// spatial filters need and report per-stage progress.
//
// Validation happens when a processor or pipeline is constructed, so a
// failure never leaves a partially processed buffer behind. Once started, a
// pipeline runs to completion or stops at the first stage error.
package pixelpipe

import (
	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// Processor transforms a buffer. It owns b for the duration of the call and
// returns the result, which may be b itself mutated in place or a new
// buffer. Callers must not use b afterwards. p may be nil.
type Processor interface {
	Name() string
	Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error)
}

// BorderedProcessor is a Processor that reads neighbours up to Border
// pixels away. It only writes the interior that lies at least Border pixels
// from every edge and leaves the rest as it found it.
type BorderedProcessor interface {
	Processor
	Border() int
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc struct {
	ID string
	Fn func(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error)
}

func (f ProcessorFunc) Name() string { return f.ID }

func (f ProcessorFunc) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	return f.Fn(b, p)
}

// Apply runs p on b with a throwaway progress counter.
func Apply(p Processor, b *imageutil.PixelBuffer) (*imageutil.PixelBuffer, error) {
	return p.Process(b, &progress.Progress{})
}

// MustApply is Apply for processors that cannot fail once constructed.
func MustApply(p Processor, b *imageutil.PixelBuffer) *imageutil.PixelBuffer {
	out, err := Apply(p, b)
	if err != nil {
		panic(err)
	}
	return out
}

// mapPixels runs fn over every pixel of b in parallel, one progress unit
// per row.
func mapPixels(b *imageutil.PixelBuffer, p *progress.Progress, fn imageutil.PixelFunc) *imageutil.PixelBuffer {
	p.Setup(b.Height())
	b.ParMapPixels(fn, p, imageutil.FullOffset(b.Size()))
	return b
}
