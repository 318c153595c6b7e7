package pixelpipe

import (
	"fmt"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// Kuwahara is an edge-preserving smoothing filter. For each interior pixel
// it looks at the four radius x radius quadrants that meet at the pixel and
// replaces the pixel's HSV value with the mean value of the quadrant with
// the lowest value variance. Hue, saturation and alpha are kept.
type Kuwahara struct {
	radius int
}

// NewKuwahara validates radius, which must be at least 1.
func NewKuwahara(radius int) (*Kuwahara, error) {
	if radius < 1 {
		return nil, fmt.Errorf("%w: kuwahara radius %d must be at least 1", ErrInvalidOptions, radius)
	}
	return &Kuwahara{radius: radius}, nil
}

func (k *Kuwahara) Name() string { return "kuwahara" }

func (k *Kuwahara) Border() int { return k.radius }

// integral holds summed-area tables of the 8-bit HSV value plane and its
// square, one row and column larger than the buffer.
type integral struct {
	stride  int
	sum, sq []int64
}

func newIntegral(b *imageutil.PixelBuffer) *integral {
	w, h := b.Width(), b.Height()
	in := &integral{
		stride: w + 1,
		sum:    make([]int64, (w+1)*(h+1)),
		sq:     make([]int64, (w+1)*(h+1)),
	}
	for y := 0; y < h; y++ {
		var rowSum, rowSq int64
		for x := 0; x < w; x++ {
			i := y*b.Stride + x*4
			v := int64(max(b.Pix[i], b.Pix[i+1], b.Pix[i+2]))
			rowSum += v
			rowSq += v * v
			j := (y+1)*in.stride + x + 1
			in.sum[j] = in.sum[j-in.stride] + rowSum
			in.sq[j] = in.sq[j-in.stride] + rowSq
		}
	}
	return in
}

// rect returns the sum and sum of squares over [x0,x1) x [y0,y1).
func (in *integral) rect(x0, y0, x1, y1 int) (sum, sq int64) {
	a, b := y0*in.stride+x0, y0*in.stride+x1
	c, d := y1*in.stride+x0, y1*in.stride+x1
	return in.sum[d] - in.sum[b] - in.sum[c] + in.sum[a],
		in.sq[d] - in.sq[b] - in.sq[c] + in.sq[a]
}

func (k *Kuwahara) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	r := k.radius
	in := newIntegral(b)
	n := float64(r * r)
	off := imageutil.InteriorOffset(b.Size(), r)
	p.Setup(off.TakeRows)
	b.ParMapPixels(func(c Coord, px Pixel) Pixel {
		quadrants := [4][4]int{
			{c.X - r, c.Y - r, c.X, c.Y},
			{c.X, c.Y - r, c.X + r, c.Y},
			{c.X - r, c.Y, c.X, c.Y + r},
			{c.X, c.Y, c.X + r, c.Y + r},
		}
		bestMean, bestVar := 0.0, -1.0
		for _, q := range quadrants {
			sum, sq := in.rect(q[0], q[1], q[2], q[3])
			mean := float64(sum) / n
			variance := float64(sq)/n - mean*mean
			if bestVar < 0 || variance < bestVar {
				bestMean, bestVar = mean, variance
			}
		}
		hsv := imageutil.ToHSV(px)
		hsv.V = bestMean / 255
		return imageutil.FromHSV(hsv, px.A)
	}, p, off)
	return b, nil
}
