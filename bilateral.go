package pixelpipe

import (
	"fmt"
	"math"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// Bilateral smooths while preserving edges: each neighbour is weighted by a
// spatial Gaussian and by a Gaussian of its colour distance to the centre.
type Bilateral struct {
	radius         int
	sigmaIntensity float64
	precise        bool
	spatial        *imageutil.Kernel
}

// NewBilateral validates the radius and both sigmas.
func NewBilateral(radius int, sigmaSpatial, sigmaIntensity float64, precise bool) (*Bilateral, error) {
	if sigmaIntensity <= 0 || math.IsNaN(sigmaIntensity) {
		return nil, fmt.Errorf("%w: intensity sigma %g must be positive", ErrInvalidOptions, sigmaIntensity)
	}
	spatial, err := imageutil.GaussianKernel(radius, sigmaSpatial)
	if err != nil {
		return nil, err
	}
	return &Bilateral{
		radius:         radius,
		sigmaIntensity: sigmaIntensity,
		precise:        precise,
		spatial:        spatial,
	}, nil
}

func (bl *Bilateral) Name() string { return "bilateral" }

func (bl *Bilateral) Border() int { return bl.radius }

// weight combines a spatial kernel value with the intensity Gaussian of the
// squared colour distance d2. Both paths go through here.
func (bl *Bilateral) weight(spatial, d2 float64) float64 {
	return spatial * math.Exp(-d2/(2*bl.sigmaIntensity*bl.sigmaIntensity))
}

// filter averages the window around c with channels read by read. The
// colour distance is always measured in sRGB units in [0,1], so both paths
// weight a neighbour identically and differ only in what they average.
func (bl *Bilateral) filter(src *imageutil.PixelBuffer, c Coord, read func(Pixel) [3]float64) [3]float64 {
	centre := readUnit(src.Pixel(c))
	var acc [3]float64
	var total float64
	r := bl.radius
	for ky := -r; ky <= r; ky++ {
		for kx := -r; kx <= r; kx++ {
			px := src.Pixel(Coord{X: c.X + kx, Y: c.Y + ky})
			u := readUnit(px)
			dr, dg, db := u[0]-centre[0], u[1]-centre[1], u[2]-centre[2]
			w := bl.weight(bl.spatial.At(kx+r, ky+r), dr*dr+dg*dg+db*db)
			v := read(px)
			acc[0] += v[0] * w
			acc[1] += v[1] * w
			acc[2] += v[2] * w
			total += w
		}
	}
	for i := range acc {
		acc[i] /= total
	}
	return acc
}

func readUnit(px Pixel) [3]float64 {
	return [3]float64{float64(px.R) / 255, float64(px.G) / 255, float64(px.B) / 255}
}

func readLinear(px Pixel) [3]float64 {
	l := imageutil.ToLinear(px)
	return [3]float64{float64(l.R), float64(l.G), float64(l.B)}
}

func (bl *Bilateral) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	dst := b.Clone()
	off := imageutil.InteriorOffset(b.Size(), bl.radius)
	p.Setup(off.TakeRows)
	if bl.precise {
		dst.ParMapPixels(func(c Coord, px Pixel) Pixel {
			v := bl.filter(b, c, readLinear)
			return imageutil.FromLinear(LinearRGBA{
				R: float32(v[0]), G: float32(v[1]), B: float32(v[2]),
				A: float32(px.A) / 255,
			})
		}, p, off)
		return dst, nil
	}
	dst.ParMapPixels(func(c Coord, px Pixel) Pixel {
		v := bl.filter(b, c, readUnit)
		return Pixel{
			R: imageutil.ClampUint8(v[0] * 255),
			G: imageutil.ClampUint8(v[1] * 255),
			B: imageutil.ClampUint8(v[2] * 255),
			A: px.A,
		}
	}, p, off)
	return dst, nil
}
