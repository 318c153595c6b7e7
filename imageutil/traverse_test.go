package imageutil

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wbrown/pixelpipe/progress"
)

func TestParForEachRowVisitsEachRowOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 0} {
		SetParallelism(workers)
		b := NewPixelBuffer(7, 37)
		off := InteriorOffset(b.Size(), 2)
		visits := make([]atomic.Int32, b.Height())
		p := progress.New(off.TakeRows)

		b.ParForEachRow(func(y int, row []uint8) {
			visits[y].Add(1)
			if len(row) != off.TakeCols*4 {
				t.Errorf("Expected row of %d bytes, got %d", off.TakeCols*4, len(row))
			}
		}, p, off)

		for y := range visits {
			want := int32(0)
			if y >= off.SkipRows && y < off.SkipRows+off.TakeRows {
				want = 1
			}
			if got := visits[y].Load(); got != want {
				t.Errorf("workers=%d row %d: expected %d visits, got %d", workers, y, want, got)
			}
		}
		if p.Percentage() != 100 {
			t.Errorf("workers=%d: expected 100%%, got %f", workers, p.Percentage())
		}
	}
	SetParallelism(0)
}

func TestForEachRowIsOrdered(t *testing.T) {
	b := NewPixelBuffer(3, 5)
	var rows []int
	b.ForEachRow(func(y int, _ []uint8) { rows = append(rows, y) }, nil, FullOffset(b.Size()))
	for i, y := range rows {
		if y != i {
			t.Fatalf("Expected rows in order, got %v", rows)
		}
	}
}

func TestParMapPixelsRespectsOffset(t *testing.T) {
	b := NewPixelBuffer(6, 4)
	off := Offset{SkipRows: 1, TakeRows: 2, SkipCols: 2, TakeCols: 3}
	var mu sync.Mutex
	seen := map[Coord]bool{}
	b.ParMapPixels(func(c Coord, p Pixel) Pixel {
		mu.Lock()
		seen[c] = true
		mu.Unlock()
		return Pixel{R: uint8(c.X), G: uint8(c.Y), A: 255}
	}, nil, off)

	if len(seen) != 6 {
		t.Errorf("Expected 6 pixels visited, got %d", len(seen))
	}
	if got := b.Pixel(Pt(4, 2)); got != (Pixel{R: 4, G: 2, A: 255}) {
		t.Errorf("Expected mapped pixel (4,2), got %v", got)
	}
	if got := b.Pixel(Pt(1, 1)); got != (Pixel{}) {
		t.Errorf("Expected (1,1) outside the offset untouched, got %v", got)
	}
}

func TestInteriorOffset(t *testing.T) {
	off := InteriorOffset(Size{Width: 10, Height: 6}, 2)
	want := Offset{SkipRows: 2, TakeRows: 2, SkipCols: 2, TakeCols: 6}
	if off != want {
		t.Errorf("Expected %+v, got %+v", want, off)
	}
	if off := InteriorOffset(Size{Width: 3, Height: 3}, 2); off.TakeRows != 0 || off.TakeCols != 0 {
		t.Errorf("Expected an empty interior, got %+v", off)
	}
}

func TestOffsetOutsideBufferPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for an offset outside the buffer")
		}
	}()
	b := NewPixelBuffer(4, 4)
	b.ForEachRow(func(int, []uint8) {}, nil, Offset{SkipRows: 2, TakeRows: 3, TakeCols: 4})
}

func TestParallelRowsCoversRange(t *testing.T) {
	SetParallelism(4)
	defer SetParallelism(0)
	var sum atomic.Int64
	ParallelRows(1000, func(i int) { sum.Add(int64(i)) })
	if got := sum.Load(); got != 999*1000/2 {
		t.Errorf("Expected sum %d, got %d", 999*1000/2, got)
	}
	if Parallelism() != 4 {
		t.Errorf("Expected 4 workers, got %d", Parallelism())
	}
}
