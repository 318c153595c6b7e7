package imageutil

import "github.com/wbrown/pixelpipe/progress"

// ThresholdClass is the double-threshold classification of an edge pixel.
type ThresholdClass uint8

const (
	ThresholdNone ThresholdClass = iota
	ThresholdWeak
	ThresholdStrong
)

func (t ThresholdClass) String() string {
	switch t {
	case ThresholdWeak:
		return "weak"
	case ThresholdStrong:
		return "strong"
	default:
		return "none"
	}
}

// Colours of the rendered edge map.
var (
	EdgeStrong = Pixel{R: 255, G: 255, B: 255, A: 255}
	EdgeWeak   = Pixel{A: 255}
	EdgeNone   = Pixel{R: 128, G: 128, B: 128, A: 255}
)

// nmsAxis returns the positive-side step of d's axis, so that opposite
// directions compare the same pair of neighbours.
func nmsAxis(d Direction) Coord {
	step := d.Step()
	if step.Y < 0 || (step.Y == 0 && step.X < 0) {
		return step.Scale(-1)
	}
	return step
}

// NonMaxSuppression thins g to ridges one pixel wide. A pixel keeps its
// magnitude only if it is at least its negative-side neighbour along the
// gradient axis and strictly greater than its positive-side neighbour, so of
// two equal neighbours only the positive one survives. Neighbours outside
// g count as zero. p is set up for and incremented once per row.
func NonMaxSuppression(g *GradientResult, p *progress.Progress) []float32 {
	out := make([]float32, len(g.Magnitude))
	p.Setup(g.Height)
	ParallelRows(g.Height, func(y int) {
		defer p.Increment()
		for x := 0; x < g.Width; x++ {
			c := Coord{X: x, Y: y}
			i := c.Index(g.Width)
			m := g.Magnitude[i]
			axis := nmsAxis(g.Direction[i])
			if m >= g.At(c.Sub(axis)) && m > g.At(c.Add(axis)) {
				out[i] = m
			}
		}
	})
	return out
}

// DoubleThreshold classifies each magnitude: below low is None, below high
// is Weak, anything else Strong.
func DoubleThreshold(magnitude []float32, low, high float32, p *progress.Progress) []ThresholdClass {
	out := make([]ThresholdClass, len(magnitude))
	p.Setup(len(magnitude))
	for i, m := range magnitude {
		switch {
		case m < low:
			out[i] = ThresholdNone
		case m < high:
			out[i] = ThresholdWeak
		default:
			out[i] = ThresholdStrong
		}
	}
	p.Add(len(magnitude))
	return out
}

// RenderThresholds draws classes, which cover the interior of size minus
// border on every edge, into a new buffer of the given size. Strong pixels
// are white, weak pixels black and everything else, including the border,
// mid-gray. Weak pixels are never promoted by touching strong ones.
func RenderThresholds(classes []ThresholdClass, size Size, border int, p *progress.Progress) *PixelBuffer {
	out := NewFilledBuffer(size.Width, size.Height, EdgeNone)
	off := InteriorOffset(size, border)
	if len(classes) != off.TakeRows*off.TakeCols {
		panic("imageutil: threshold classes do not match the interior size")
	}
	p.Setup(off.TakeRows)
	out.ParMapPixels(func(c Coord, px Pixel) Pixel {
		switch classes[c.Sub(off.Origin()).Index(off.TakeCols)] {
		case ThresholdStrong:
			return EdgeStrong
		case ThresholdWeak:
			return EdgeWeak
		default:
			return EdgeNone
		}
	}, p, off)
	return out
}
