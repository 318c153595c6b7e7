package progress

import "sync"

// Stage is a named per-stage counter registered with a PipelineProgress.
type Stage struct {
	Name     string
	Progress *Progress
}

// PipelineProgress aggregates a combined counter, advanced once per
// finished stage, with the individual counters of each stage.
type PipelineProgress struct {
	combined Progress

	mu     sync.RWMutex
	stages []Stage
}

// NewPipeline returns an empty PipelineProgress.
func NewPipeline() *PipelineProgress {
	return &PipelineProgress{}
}

// SetupCombined declares how many stages the pipeline will run and clears
// any previously registered stages.
func (pp *PipelineProgress) SetupCombined(stages int) {
	if pp == nil {
		return
	}
	pp.mu.Lock()
	pp.stages = pp.stages[:0]
	pp.mu.Unlock()
	pp.combined.Setup(stages)
}

// Register appends a new stage counter. Stages must be registered before
// they start so that Current can find them.
func (pp *PipelineProgress) Register(name string) *Progress {
	if pp == nil {
		return nil
	}
	p := &Progress{}
	pp.mu.Lock()
	pp.stages = append(pp.stages, Stage{Name: name, Progress: p})
	pp.mu.Unlock()
	return p
}

// Expect adds stages to the combined maximum without resetting anything.
// Pipelines call it when they start so that nested and chained pipelines
// can share one PipelineProgress.
func (pp *PipelineProgress) Expect(stages int) {
	if pp == nil || stages <= 0 {
		return
	}
	pp.combined.max.Add(uint64(stages))
}

// IncrementCombined marks one stage as finished.
func (pp *PipelineProgress) IncrementCombined() {
	if pp == nil {
		return
	}
	pp.combined.Increment()
}

// Combined returns the stage counter.
func (pp *PipelineProgress) Combined() *Progress {
	if pp == nil {
		return nil
	}
	return &pp.combined
}

// Current returns the stage that is running now: the one whose index equals
// the number of finished stages. It returns false once every registered
// stage has finished or before the first one is registered.
func (pp *PipelineProgress) Current() (Stage, bool) {
	if pp == nil {
		return Stage{}, false
	}
	i := pp.combined.Value()
	pp.mu.RLock()
	defer pp.mu.RUnlock()
	if i >= len(pp.stages) {
		return Stage{}, false
	}
	return pp.stages[i], true
}

// Stages returns a snapshot of the registered stages.
func (pp *PipelineProgress) Stages() []Stage {
	if pp == nil {
		return nil
	}
	pp.mu.RLock()
	defer pp.mu.RUnlock()
	out := make([]Stage, len(pp.stages))
	copy(out, pp.stages)
	return out
}

// Finished reports whether all declared stages have completed.
func (pp *PipelineProgress) Finished() bool {
	return pp.Combined().Done()
}
