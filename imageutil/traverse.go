package imageutil

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/pixelpipe/progress"
)

// Offset restricts a traversal to a sub-rectangle: TakeRows rows starting at
// SkipRows and TakeCols columns starting at SkipCols.
type Offset struct {
	SkipRows, TakeRows int
	SkipCols, TakeCols int
}

// FullOffset covers the whole of an s-sized buffer.
func FullOffset(s Size) Offset {
	return Offset{TakeRows: s.Height, TakeCols: s.Width}
}

// InteriorOffset covers an s-sized buffer minus border pixels on every edge.
// This is the region a kernel of radius border can read without leaving the
// buffer.
func InteriorOffset(s Size, border int) Offset {
	inner := s.Shrink(border)
	return Offset{
		SkipRows: border, TakeRows: inner.Height,
		SkipCols: border, TakeCols: inner.Width,
	}
}

// Origin returns the top-left coordinate of the region.
func (o Offset) Origin() Coord {
	return Coord{X: o.SkipCols, Y: o.SkipRows}
}

// Size returns the region's dimensions.
func (o Offset) Size() Size {
	return Size{Width: o.TakeCols, Height: o.TakeRows}
}

func (o Offset) check(s Size) {
	if o.SkipRows < 0 || o.SkipCols < 0 || o.TakeRows < 0 || o.TakeCols < 0 ||
		o.SkipRows+o.TakeRows > s.Height || o.SkipCols+o.TakeCols > s.Width {
		panic(fmt.Sprintf("imageutil: offset %+v outside %v buffer", o, s))
	}
}

// RowFunc is called once per traversed row with the row index and the bytes
// of the columns selected by the offset (4 bytes per pixel). The first byte
// belongs to column Offset.SkipCols.
type RowFunc func(y int, row []uint8)

// PixelFunc maps one pixel to its replacement.
type PixelFunc func(c Coord, p Pixel) Pixel

// LinearFunc maps one pixel's linear-light value to its replacement.
type LinearFunc func(c Coord, l LinearRGBA) LinearRGBA

// ForEachRow calls fn for every row of off in order on the calling goroutine
// and increments p once per row. p may be nil.
func (b *PixelBuffer) ForEachRow(fn RowFunc, p *progress.Progress, off Offset) {
	off.check(b.Size())
	for y := off.SkipRows; y < off.SkipRows+off.TakeRows; y++ {
		fn(y, b.row(y, off))
		p.Increment()
	}
}

// ParForEachRow is ForEachRow with rows distributed across workers. Rows are
// visited exactly once in no particular order; fn may mutate its own row but
// must not write any other row.
func (b *PixelBuffer) ParForEachRow(fn RowFunc, p *progress.Progress, off Offset) {
	off.check(b.Size())
	ParallelRows(off.TakeRows, func(i int) {
		y := off.SkipRows + i
		fn(y, b.row(y, off))
		p.Increment()
	})
}

// MapPixels replaces every pixel of off with fn's result, serially.
func (b *PixelBuffer) MapPixels(fn PixelFunc, p *progress.Progress, off Offset) {
	b.ForEachRow(pixelRow(fn, off), p, off)
}

// ParMapPixels replaces every pixel of off with fn's result, in parallel.
func (b *PixelBuffer) ParMapPixels(fn PixelFunc, p *progress.Progress, off Offset) {
	b.ParForEachRow(pixelRow(fn, off), p, off)
}

// ParMapLinear is ParMapPixels in linear light.
func (b *PixelBuffer) ParMapLinear(fn LinearFunc, p *progress.Progress, off Offset) {
	b.ParMapPixels(func(c Coord, px Pixel) Pixel {
		return FromLinear(fn(c, ToLinear(px)))
	}, p, off)
}

func (b *PixelBuffer) row(y int, off Offset) []uint8 {
	start := y*b.Stride + off.SkipCols*4
	return b.Pix[start : start+off.TakeCols*4 : start+off.TakeCols*4]
}

func pixelRow(fn PixelFunc, off Offset) RowFunc {
	return func(y int, row []uint8) {
		for i := 0; i+3 < len(row); i += 4 {
			c := Coord{X: off.SkipCols + i/4, Y: y}
			px := fn(c, Pixel{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]})
			row[i], row[i+1], row[i+2], row[i+3] = px.R, px.G, px.B, px.A
		}
	}
}

var parallelism atomic.Int32

// SetParallelism sets the number of row workers. Zero or less means one
// worker per available CPU.
func SetParallelism(n int) {
	parallelism.Store(int32(max(n, 0)))
}

// Parallelism returns the current number of row workers.
func Parallelism() int {
	if n := int(parallelism.Load()); n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// rowBatch is how many rows a worker claims at a time.
const rowBatch = 4

// ParallelRows calls fn(i) for every i in [0, n) across the row workers and
// returns once all calls have finished. Workers claim batches of indices
// from a shared atomic counter, so uneven rows balance themselves out.
func ParallelRows(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(Parallelism(), (n+rowBatch-1)/rowBatch)
	if workers <= 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for {
				start := int(next.Add(rowBatch)) - rowBatch
				if start >= n {
					return nil
				}
				for i := start; i < min(start+rowBatch, n); i++ {
					fn(i)
				}
			}
		})
	}
	// Workers never fail; Wait only joins them.
	_ = g.Wait()
}
