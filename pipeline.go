package pixelpipe

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// Pipeline runs one or more stages over a buffer, registering a progress
// counter for each stage with pp before it starts. pp may be nil.
type Pipeline interface {
	Run(b *imageutil.PixelBuffer, pp *progress.PipelineProgress) (*imageutil.PixelBuffer, error)
}

// Run drives pl with a fresh PipelineProgress.
func Run(pl Pipeline, b *imageutil.PixelBuffer) (*imageutil.PixelBuffer, error) {
	return pl.Run(b, progress.NewPipeline())
}

type stageFunc func(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error)

// runStage registers name with pp, runs fn and marks the stage finished.
func runStage(pp *progress.PipelineProgress, name string, b *imageutil.PixelBuffer, fn stageFunc) (*imageutil.PixelBuffer, error) {
	p := pp.Register(name)
	start := time.Now()
	log.Debug().Str("stage", name).Stringer("size", b.Size()).Msg("stage started")

	out, err := fn(b, p)
	if err != nil {
		log.Debug().Err(err).Str("stage", name).Msg("stage failed")
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	pp.IncrementCombined()
	log.Debug().
		Str("stage", name).
		Stringer("size", out.Size()).
		Dur("elapsed", time.Since(start)).
		Msg("stage finished")
	return out, nil
}

// Single runs one processor as a one-stage pipeline. Use it for processors
// that do not read neighbouring pixels.
type Single struct {
	Processor Processor
}

// NewSingle wraps p.
func NewSingle(p Processor) *Single {
	return &Single{Processor: p}
}

func (s *Single) Run(b *imageutil.PixelBuffer, pp *progress.PipelineProgress) (*imageutil.PixelBuffer, error) {
	pp.Expect(1)
	return runStage(pp, s.Processor.Name(), b, s.Processor.Process)
}

// Chain runs pipelines in order, feeding each the previous output, and
// stops at the first error.
type Chain []Pipeline

func (c Chain) Run(b *imageutil.PixelBuffer, pp *progress.PipelineProgress) (*imageutil.PixelBuffer, error) {
	var err error
	for i, pl := range c {
		b, err = pl.Run(b, pp)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return b, nil
}
