// Package progress provides lock-free work counters for processors and
// the per-stage aggregation used by pipelines.
//
// A Progress is set up once, before any worker starts, and then only
// incremented. Reads are snapshots and never block, so a UI or logger can
// poll a running pipeline from another goroutine.
package progress

import "sync/atomic"

// Progress counts completed units of work out of a fixed maximum.
//
// All methods are safe on a nil receiver so callers that do not care about
// progress can pass nil.
type Progress struct {
	value atomic.Uint64
	max   atomic.Uint64
}

// New returns a Progress that expects max units of work.
func New(max int) *Progress {
	p := &Progress{}
	p.Setup(max)
	return p
}

// Setup resets the counter and records the expected number of units.
// It must happen before the work it measures is dispatched.
func (p *Progress) Setup(max int) {
	if p == nil {
		return
	}
	if max < 0 {
		max = 0
	}
	p.value.Store(0)
	p.max.Store(uint64(max))
}

// Increment records one completed unit.
func (p *Progress) Increment() {
	if p == nil {
		return
	}
	p.value.Add(1)
}

// Add records n completed units.
func (p *Progress) Add(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.value.Add(uint64(n))
}

// Value returns the number of completed units.
func (p *Progress) Value() int {
	if p == nil {
		return 0
	}
	return int(p.value.Load())
}

// Max returns the expected number of units.
func (p *Progress) Max() int {
	if p == nil {
		return 0
	}
	return int(p.max.Load())
}

// Percentage returns Value/Max*100, or 0 when nothing was set up.
func (p *Progress) Percentage() float64 {
	max := p.Max()
	if max == 0 {
		return 0
	}
	return float64(p.Value()) / float64(max) * 100
}

// Done reports whether every expected unit has been counted.
func (p *Progress) Done() bool {
	return p.Max() > 0 && p.Value() >= p.Max()
}
