package pixelpipe

import (
	"fmt"
	"slices"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// Median replaces each colour channel with the median of that channel over
// the (2r+1)x(2r+1) window. Alpha is kept.
type Median struct {
	radius int
}

// NewMedian validates radius, which must be at least 1.
func NewMedian(radius int) (*Median, error) {
	if radius < 1 {
		return nil, fmt.Errorf("%w: median radius %d must be at least 1", ErrInvalidOptions, radius)
	}
	return &Median{radius: radius}, nil
}

func (m *Median) Name() string { return "median" }

func (m *Median) Border() int { return m.radius }

func (m *Median) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	r := m.radius
	n := (2*r + 1) * (2*r + 1)
	dst := b.Clone()
	off := imageutil.InteriorOffset(b.Size(), r)
	p.Setup(off.TakeRows)
	dst.ParForEachRow(func(y int, row []uint8) {
		var window [3][]uint8
		for ch := range window {
			window[ch] = make([]uint8, 0, n)
		}
		for i := 0; i+3 < len(row); i += 4 {
			x := off.SkipCols + i/4
			for ch := range window {
				window[ch] = window[ch][:0]
			}
			for wy := y - r; wy <= y+r; wy++ {
				start := wy*b.Stride + (x-r)*4
				for j := start; j < start+(2*r+1)*4; j += 4 {
					window[0] = append(window[0], b.Pix[j])
					window[1] = append(window[1], b.Pix[j+1])
					window[2] = append(window[2], b.Pix[j+2])
				}
			}
			for ch := range window {
				slices.Sort(window[ch])
				row[i+ch] = window[ch][n/2]
			}
		}
	}, p, off)
	return dst, nil
}
