package imageutil

import (
	"fmt"
	"math"
	"sync"

	"github.com/wbrown/pixelpipe/progress"
)

// Direction is the compass sector of a gradient vector in image
// coordinates, where y grows downwards.
type Direction uint8

const (
	East Direction = iota
	SouthEast
	South
	SouthWest
	West
	NorthWest
	North
	NorthEast
)

var directionNames = [...]string{"E", "SE", "S", "SW", "W", "NW", "N", "NE"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// Step returns the unit offset pointing along d.
func (d Direction) Step() Coord {
	switch d {
	case East:
		return Coord{X: 1}
	case SouthEast:
		return Coord{X: 1, Y: 1}
	case South:
		return Coord{Y: 1}
	case SouthWest:
		return Coord{X: -1, Y: 1}
	case West:
		return Coord{X: -1}
	case NorthWest:
		return Coord{X: -1, Y: -1}
	case North:
		return Coord{Y: -1}
	default:
		return Coord{X: 1, Y: -1}
	}
}

// DirectionOf classifies the angle of (gx, gy), wrapped into [0, 2pi), into
// one of eight 45 degree sectors centred on the compass directions.
func DirectionOf(gx, gy float64) Direction {
	theta := math.Atan2(gy, gx)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	sector := int(math.Floor((theta + math.Pi/8) / (math.Pi / 4)))
	return Direction(sector % 8)
}

// GradientOptions select the operator and the channel handling of the
// gradient engine.
type GradientOptions struct {
	Kernels KernelPair
	// PerChannel computes R, G and B gradients independently instead of
	// one gradient of the channel average.
	PerChannel bool
	// Precise reads channels in linear light instead of 8-bit values.
	Precise bool
}

// GradientResult holds the gradient of the interior region of a buffer:
// the buffer minus the kernel radius on every edge.
type GradientResult struct {
	Width, Height int
	Magnitude     []float32
	Direction     []Direction
}

// At returns the magnitude at interior coordinate c, or 0 outside.
func (g *GradientResult) At(c Coord) float32 {
	if !c.InBounds(Size{Width: g.Width, Height: g.Height}) {
		return 0
	}
	return g.Magnitude[c.Y*g.Width+c.X]
}

type channelReader func(b *PixelBuffer, i int) [3]float64

func readChannels(precise bool) channelReader {
	if precise {
		return func(b *PixelBuffer, i int) [3]float64 {
			return [3]float64{
				float64(srgbToLinear[b.Pix[i]]),
				float64(srgbToLinear[b.Pix[i+1]]),
				float64(srgbToLinear[b.Pix[i+2]]),
			}
		}
	}
	return func(b *PixelBuffer, i int) [3]float64 {
		return [3]float64{float64(b.Pix[i]), float64(b.Pix[i+1]), float64(b.Pix[i+2])}
	}
}

// localGradient convolves both kernels around c and returns gx and gy per
// channel. In luma mode only index 0 is filled.
func localGradient(b *PixelBuffer, kp KernelPair, c Coord, perChannel bool, read channelReader) (gx, gy [3]float64) {
	accumulate := func(k *Kernel, out *[3]float64) {
		rx, ry := k.width/2, k.height/2
		for ky := 0; ky < k.height; ky++ {
			rowStart := (c.Y+ky-ry)*b.Stride + (c.X-rx)*4
			for kx := 0; kx < k.width; kx++ {
				w := k.values[ky*k.width+kx]
				if w == 0 {
					continue
				}
				ch := read(b, rowStart+kx*4)
				if perChannel {
					out[0] += ch[0] * w
					out[1] += ch[1] * w
					out[2] += ch[2] * w
				} else {
					out[0] += (ch[0] + ch[1] + ch[2]) / 3 * w
				}
			}
		}
	}
	accumulate(kp.X, &gx)
	accumulate(kp.Y, &gy)
	return gx, gy
}

// ComputeGradient returns the luma gradient magnitude and direction of the
// interior of b. p is set up for and incremented once per interior row.
func ComputeGradient(b *PixelBuffer, kp KernelPair, precise bool, p *progress.Progress) *GradientResult {
	r := kp.Radius()
	off := InteriorOffset(b.Size(), r)
	g := &GradientResult{
		Width:     off.TakeCols,
		Height:    off.TakeRows,
		Magnitude: make([]float32, off.TakeCols*off.TakeRows),
		Direction: make([]Direction, off.TakeCols*off.TakeRows),
	}
	if g.Width == 0 || g.Height == 0 {
		p.Setup(0)
		return g
	}
	kp.X.checkInterior(b, off.Origin())
	read := readChannels(precise)
	p.Setup(off.TakeRows)
	ParallelRows(off.TakeRows, func(iy int) {
		for ix := 0; ix < off.TakeCols; ix++ {
			c := Coord{X: ix + r, Y: iy + r}
			gx, gy := localGradient(b, kp, c, false, read)
			g.Magnitude[iy*g.Width+ix] = float32(math.Hypot(gx[0], gy[0]))
			g.Direction[iy*g.Width+ix] = DirectionOf(gx[0], gy[0])
		}
		p.Increment()
	})
	return g
}

// magnitudeRange is the global min/max reduction of the local pass.
type magnitudeRange struct {
	mu       sync.Mutex
	min, max [3]float32
}

func newMagnitudeRange() *magnitudeRange {
	r := &magnitudeRange{}
	for i := range r.min {
		r.min[i] = float32(math.Inf(1))
		r.max[i] = float32(math.Inf(-1))
	}
	return r
}

func (r *magnitudeRange) merge(lo, hi [3]float32) {
	r.mu.Lock()
	for i := range lo {
		r.min[i] = min(r.min[i], lo[i])
		r.max[i] = max(r.max[i], hi[i])
	}
	r.mu.Unlock()
}

// scale maps m into [0,1] relative to channel ch's range. A flat range maps
// to 0.
func (r *magnitudeRange) scale(ch int, m float32) float64 {
	span := r.max[ch] - r.min[ch]
	if span <= 0 {
		return 0
	}
	return float64((m - r.min[ch]) / span)
}

// ApplyGradient replaces the interior of b with its normalized gradient
// magnitude and returns b. The first pass computes magnitudes and their
// global range, the second maps them to [0,255] (or [0,1] linear in precise
// mode) in R, G and B. Alpha and the border ring are left unchanged.
//
// p is set up for two increments per interior row, one per pass.
func ApplyGradient(b *PixelBuffer, opts GradientOptions, p *progress.Progress) *PixelBuffer {
	r := opts.Kernels.Radius()
	off := InteriorOffset(b.Size(), r)
	if off.TakeRows == 0 || off.TakeCols == 0 {
		p.Setup(0)
		return b
	}
	kp := opts.Kernels
	kp.X.checkInterior(b, off.Origin())

	channels := 1
	if opts.PerChannel {
		channels = 3
	}
	w := off.TakeCols
	planes := make([][]float32, channels)
	for i := range planes {
		planes[i] = make([]float32, w*off.TakeRows)
	}

	read := readChannels(opts.Precise)
	rng := newMagnitudeRange()
	p.Setup(2 * off.TakeRows)

	ParallelRows(off.TakeRows, func(iy int) {
		var lo, hi [3]float32
		for i := range lo {
			lo[i] = float32(math.Inf(1))
			hi[i] = float32(math.Inf(-1))
		}
		for ix := 0; ix < w; ix++ {
			c := Coord{X: ix + r, Y: iy + r}
			gx, gy := localGradient(b, kp, c, opts.PerChannel, read)
			for ch := 0; ch < channels; ch++ {
				m := float32(math.Hypot(gx[ch], gy[ch]))
				planes[ch][iy*w+ix] = m
				lo[ch] = min(lo[ch], m)
				hi[ch] = max(hi[ch], m)
			}
		}
		rng.merge(lo, hi)
		p.Increment()
	})

	b.ParForEachRow(func(y int, row []uint8) {
		iy := y - off.SkipRows
		for ix := 0; ix < w; ix++ {
			var out [3]float64
			for ch := 0; ch < 3; ch++ {
				src := min(ch, channels-1)
				out[ch] = rng.scale(src, planes[src][iy*w+ix])
			}
			px := row[ix*4 : ix*4+4 : ix*4+4]
			if opts.Precise {
				enc := FromLinear(LinearRGBA{R: float32(out[0]), G: float32(out[1]), B: float32(out[2])})
				px[0], px[1], px[2] = enc.R, enc.G, enc.B
			} else {
				px[0], px[1], px[2] = ClampUint8(out[0]*255), ClampUint8(out[1]*255), ClampUint8(out[2]*255)
			}
		}
	}, p, off)
	return b
}
