package imageutil

import (
	"fmt"
	"math"
	"strings"

	"github.com/wbrown/pixelpipe/progress"
)

// Kernel is an immutable convolution matrix with odd width and height,
// stored row-major.
type Kernel struct {
	values []float64
	width  int
	height int
}

// KernelPair holds the x-axis and y-axis kernels of a gradient operator.
type KernelPair struct {
	X, Y *Kernel
}

// Radius returns the border a kernel pair needs.
func (kp KernelPair) Radius() int {
	return max(kp.X.Radius(), kp.Y.Radius())
}

// NewKernel builds a kernel from rows of weights.
func NewKernel(rows [][]float64) (*Kernel, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidKernel)
	}
	width := len(rows[0])
	values := make([]float64, 0, width*len(rows))
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidKernel, i, len(r), width)
		}
		values = append(values, r...)
	}
	return NewKernelFlat(values, width, len(rows))
}

// NewKernelFlat builds a kernel from row-major values.
func NewKernelFlat(values []float64, width, height int) (*Kernel, error) {
	if width <= 0 || height <= 0 || width%2 == 0 || height%2 == 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d must be odd and positive", ErrInvalidKernel, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for a %dx%d kernel", ErrInvalidKernel, len(values), width, height)
	}
	v := make([]float64, len(values))
	copy(v, values)
	return &Kernel{values: v, width: width, height: height}, nil
}

func mustKernel(rows [][]float64) *Kernel {
	k, err := NewKernel(rows)
	if err != nil {
		panic(err)
	}
	return k
}

func (k *Kernel) Width() int  { return k.width }
func (k *Kernel) Height() int { return k.height }

// Radius returns the largest distance from the centre to an edge cell.
func (k *Kernel) Radius() int {
	return max(k.width, k.height) / 2
}

// At returns the weight at column x, row y, both counted from the top-left.
func (k *Kernel) At(x, y int) float64 {
	return k.values[y*k.width+x]
}

// Values returns a copy of the row-major weights.
func (k *Kernel) Values() []float64 {
	v := make([]float64, len(k.values))
	copy(v, k.values)
	return v
}

// Sum returns the sum of all weights.
func (k *Kernel) Sum() float64 {
	var s float64
	for _, v := range k.values {
		s += v
	}
	return s
}

// Rotate90 returns the kernel rotated a quarter turn clockwise.
func (k *Kernel) Rotate90() *Kernel {
	out := &Kernel{values: make([]float64, len(k.values)), width: k.height, height: k.width}
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			out.values[y*out.width+x] = k.At(y, k.height-1-x)
		}
	}
	return out
}

func (k *Kernel) String() string {
	var sb strings.Builder
	for y := 0; y < k.height; y++ {
		for x := 0; x < k.width; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%8.4f", k.At(x, y))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// MeanKernel returns a (2r+1)x(2r+1) box kernel with uniform weights.
func MeanKernel(radius int) (*Kernel, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative radius %d", ErrInvalidKernel, radius)
	}
	n := 2*radius + 1
	values := make([]float64, n*n)
	for i := range values {
		values[i] = 1 / float64(n*n)
	}
	return NewKernelFlat(values, n, n)
}

// GaussianKernel returns a (2r+1)x(2r+1) Gaussian normalized to sum to 1.
func GaussianKernel(radius int, sigma float64) (*Kernel, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative radius %d", ErrInvalidKernel, radius)
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: sigma %g must be positive", ErrInvalidKernel, sigma)
	}
	n := 2*radius + 1
	values := make([]float64, n*n)
	var sum float64
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			v := math.Exp(-float64(x*x+y*y) / (2 * sigma * sigma))
			values[(y+radius)*n+x+radius] = v
			sum += v
		}
	}
	for i := range values {
		values[i] /= sum
	}
	return NewKernelFlat(values, n, n)
}

// LaplacianOfGaussianKernel returns a (2r+1)x(2r+1) Laplacian of Gaussian
// shifted so its weights sum to zero.
func LaplacianOfGaussianKernel(radius int, sigma float64) (*Kernel, error) {
	if radius < 1 {
		return nil, fmt.Errorf("%w: radius %d must be at least 1", ErrInvalidKernel, radius)
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: sigma %g must be positive", ErrInvalidKernel, sigma)
	}
	n := 2*radius + 1
	values := make([]float64, n*n)
	s2 := sigma * sigma
	var sum float64
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			r2 := float64(x*x+y*y) / (2 * s2)
			v := -1 / (math.Pi * s2 * s2) * (1 - r2) * math.Exp(-r2)
			values[(y+radius)*n+x+radius] = v
			sum += v
		}
	}
	mean := sum / float64(n*n)
	for i := range values {
		values[i] -= mean
	}
	return NewKernelFlat(values, n, n)
}

// SharpenKernel returns the 3x3 sharpening kernel.
func SharpenKernel() *Kernel {
	return mustKernel([][]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	})
}

// EmbossKernel returns the 3x3 emboss kernel. Its weights sum to 1 so flat
// areas keep their colour.
func EmbossKernel() *Kernel {
	return mustKernel([][]float64{
		{-2, -1, 0},
		{-1, 1, 1},
		{0, 1, 2},
	})
}

// SobelKernels returns the Sobel operator. Y is X rotated 90 degrees.
func SobelKernels() KernelPair {
	x := mustKernel([][]float64{
		{1, 0, -1},
		{2, 0, -2},
		{1, 0, -1},
	})
	return KernelPair{X: x, Y: x.Rotate90()}
}

// PrewittKernels returns the Prewitt operator. Y is X rotated 90 degrees.
func PrewittKernels() KernelPair {
	x := mustKernel([][]float64{
		{1, 0, -1},
		{1, 0, -1},
		{1, 0, -1},
	})
	return KernelPair{X: x, Y: x.Rotate90()}
}

// checkInterior panics unless every cell of k centred on c lies in b.
func (k *Kernel) checkInterior(b *PixelBuffer, c Coord) {
	rx, ry := k.width/2, k.height/2
	if c.X < rx || c.Y < ry || c.X+rx >= b.Width() || c.Y+ry >= b.Height() {
		panic(fmt.Sprintf("imageutil: %dx%d kernel at %v reads outside %dx%d buffer",
			k.width, k.height, c, b.Width(), b.Height()))
	}
}

// ConvolveFast applies k around c on 8-bit channel values. Each channel is
// clamped to [0,255] and rounded; alpha is copied from c. c must be at
// least Radius pixels from every edge.
func (k *Kernel) ConvolveFast(b *PixelBuffer, c Coord) Pixel {
	k.checkInterior(b, c)
	rx, ry := k.width/2, k.height/2
	var r, g, bl float64
	for ky := 0; ky < k.height; ky++ {
		rowStart := (c.Y+ky-ry)*b.Stride + (c.X-rx)*4
		for kx := 0; kx < k.width; kx++ {
			w := k.values[ky*k.width+kx]
			if w == 0 {
				continue
			}
			i := rowStart + kx*4
			r += float64(b.Pix[i]) * w
			g += float64(b.Pix[i+1]) * w
			bl += float64(b.Pix[i+2]) * w
		}
	}
	centre := c.Y*b.Stride + c.X*4
	return Pixel{R: ClampUint8(r), G: ClampUint8(g), B: ClampUint8(bl), A: b.Pix[centre+3]}
}

// ConvolvePrecise applies k around c in linear light, clamping each channel
// to [0,1]; alpha is copied from c.
func (k *Kernel) ConvolvePrecise(b *PixelBuffer, c Coord) LinearRGBA {
	k.checkInterior(b, c)
	rx, ry := k.width/2, k.height/2
	var r, g, bl float64
	for ky := 0; ky < k.height; ky++ {
		rowStart := (c.Y+ky-ry)*b.Stride + (c.X-rx)*4
		for kx := 0; kx < k.width; kx++ {
			w := k.values[ky*k.width+kx]
			if w == 0 {
				continue
			}
			i := rowStart + kx*4
			r += float64(srgbToLinear[b.Pix[i]]) * w
			g += float64(srgbToLinear[b.Pix[i+1]]) * w
			bl += float64(srgbToLinear[b.Pix[i+2]]) * w
		}
	}
	centre := c.Y*b.Stride + c.X*4
	return LinearRGBA{
		R: float32(clampUnit(r)),
		G: float32(clampUnit(g)),
		B: float32(clampUnit(bl)),
		A: float32(b.Pix[centre+3]) / 255,
	}
}

// Convolve returns a copy of b with k applied to every pixel at least
// k.Radius() from the edges. Border pixels are copied unchanged. p is set
// up for and incremented once per interior row.
func Convolve(b *PixelBuffer, k *Kernel, precise bool, p *progress.Progress) *PixelBuffer {
	dst := b.Clone()
	off := InteriorOffset(b.Size(), k.Radius())
	p.Setup(off.TakeRows)
	if precise {
		dst.ParMapPixels(func(c Coord, _ Pixel) Pixel {
			return FromLinear(k.ConvolvePrecise(b, c))
		}, p, off)
	} else {
		dst.ParMapPixels(func(c Coord, _ Pixel) Pixel {
			return k.ConvolveFast(b, c)
		}, p, off)
	}
	return dst
}
