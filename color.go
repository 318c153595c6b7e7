package pixelpipe

import (
	"fmt"
	"math"
	"strings"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

type (
	Pixel      = imageutil.Pixel
	LinearRGBA = imageutil.LinearRGBA
	Coord      = imageutil.Coord
)

// Negative inverts the colour channels. In fast mode it computes 255-v on
// each 8-bit channel, which is its own inverse; in precise mode it inverts
// linear light.
type Negative struct {
	Precise bool
}

func (n *Negative) Name() string { return "negative" }

func (n *Negative) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	if n.Precise {
		p.Setup(b.Height())
		b.ParMapLinear(func(_ Coord, l LinearRGBA) LinearRGBA {
			return LinearRGBA{R: 1 - l.R, G: 1 - l.G, B: 1 - l.B, A: l.A}
		}, p, imageutil.FullOffset(b.Size()))
		return b, nil
	}
	return mapPixels(b, p, func(_ Coord, px Pixel) Pixel {
		return Pixel{R: 255 - px.R, G: 255 - px.G, B: 255 - px.B, A: px.A}
	}), nil
}

// Sepia applies the classic sepia tone matrix.
type Sepia struct {
	Precise bool
}

func (s *Sepia) Name() string { return "sepia" }

func sepia(r, g, b float64) (float64, float64, float64) {
	return r*0.393 + g*0.769 + b*0.189,
		r*0.349 + g*0.686 + b*0.168,
		r*0.272 + g*0.534 + b*0.131
}

func (s *Sepia) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	if s.Precise {
		p.Setup(b.Height())
		b.ParMapLinear(func(_ Coord, l LinearRGBA) LinearRGBA {
			r, g, bl := sepia(float64(l.R), float64(l.G), float64(l.B))
			return LinearRGBA{R: float32(r), G: float32(g), B: float32(bl), A: l.A}
		}, p, imageutil.FullOffset(b.Size()))
		return b, nil
	}
	return mapPixels(b, p, func(_ Coord, px Pixel) Pixel {
		r, g, bl := sepia(float64(px.R), float64(px.G), float64(px.B))
		return Pixel{R: imageutil.ClampUint8(r), G: imageutil.ClampUint8(g), B: imageutil.ClampUint8(bl), A: px.A}
	}), nil
}

// GrayscaleMethod selects how colour channels are reduced to one value.
type GrayscaleMethod int

const (
	// GrayscaleAverage uses (R+G+B)/3.
	GrayscaleAverage GrayscaleMethod = iota
	// GrayscaleLightness uses (max+min)/2.
	GrayscaleLightness
	// GrayscaleLuminosity uses 0.21R + 0.72G + 0.07B.
	GrayscaleLuminosity
)

// ParseGrayscaleMethod accepts "average", "lightness" or "luminosity".
func ParseGrayscaleMethod(s string) (GrayscaleMethod, error) {
	switch strings.ToLower(s) {
	case "", "average":
		return GrayscaleAverage, nil
	case "lightness":
		return GrayscaleLightness, nil
	case "luminosity":
		return GrayscaleLuminosity, nil
	}
	return 0, fmt.Errorf("%w: unknown grayscale method %q", ErrInvalidOptions, s)
}

func (m GrayscaleMethod) reduce(r, g, b float64) float64 {
	switch m {
	case GrayscaleLightness:
		return (max(r, g, b) + min(r, g, b)) / 2
	case GrayscaleLuminosity:
		return 0.21*r + 0.72*g + 0.07*b
	default:
		return (r + g + b) / 3
	}
}

// Grayscale replaces each pixel with a gray of equal value.
type Grayscale struct {
	Method  GrayscaleMethod
	Precise bool
}

func (g *Grayscale) Name() string { return "grayscale" }

func (g *Grayscale) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	if g.Precise {
		p.Setup(b.Height())
		b.ParMapLinear(func(_ Coord, l LinearRGBA) LinearRGBA {
			v := float32(g.Method.reduce(float64(l.R), float64(l.G), float64(l.B)))
			return LinearRGBA{R: v, G: v, B: v, A: l.A}
		}, p, imageutil.FullOffset(b.Size()))
		return b, nil
	}
	return mapPixels(b, p, func(_ Coord, px Pixel) Pixel {
		v := imageutil.ClampUint8(g.Method.reduce(float64(px.R), float64(px.G), float64(px.B)))
		return Pixel{R: v, G: v, B: v, A: px.A}
	}), nil
}

// Brightness scales HSL lightness by Factor.
type Brightness struct {
	factor float64
}

// NewBrightness validates factor, which must not be negative.
func NewBrightness(factor float64) (*Brightness, error) {
	if factor < 0 || math.IsNaN(factor) {
		return nil, fmt.Errorf("%w: brightness factor %g", ErrInvalidOptions, factor)
	}
	return &Brightness{factor: factor}, nil
}

func (br *Brightness) Name() string { return "brightness" }

func (br *Brightness) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	return mapPixels(b, p, func(_ Coord, px Pixel) Pixel {
		hsl := imageutil.ToHSL(px)
		hsl.L = min(max(hsl.L*br.factor, 0), 1)
		return imageutil.FromHSL(hsl, px.A)
	}), nil
}

// Channels is a set of colour channels picked by a selector such as "rgb"
// or "rb".
type Channels struct {
	R, G, B bool
}

// ParseChannels parses a selector made of the letters r, g and b, each at
// most once.
func ParseChannels(s string) (Channels, error) {
	var c Channels
	if s == "" {
		return c, fmt.Errorf("%w: empty selector", ErrInvalidChannelSelector)
	}
	for _, ch := range strings.ToLower(s) {
		var dst *bool
		switch ch {
		case 'r':
			dst = &c.R
		case 'g':
			dst = &c.G
		case 'b':
			dst = &c.B
		default:
			return Channels{}, fmt.Errorf("%w: unknown channel %q in %q", ErrInvalidChannelSelector, ch, s)
		}
		if *dst {
			return Channels{}, fmt.Errorf("%w: channel %q repeated in %q", ErrInvalidChannelSelector, ch, s)
		}
		*dst = true
	}
	return c, nil
}

func (c Channels) String() string {
	var sb strings.Builder
	for _, ch := range []struct {
		on bool
		r  byte
	}{{c.R, 'r'}, {c.G, 'g'}, {c.B, 'b'}} {
		if ch.on {
			sb.WriteByte(ch.r)
		}
	}
	return sb.String()
}

// Threshold zeroes each selected channel whose value is not above its
// cutoff. Other channels and alpha are kept.
type Threshold struct {
	channels Channels
	cutoff   [3]uint8
}

// NewThreshold builds a threshold over the channels named by selector with
// per-channel cutoffs.
func NewThreshold(selector string, red, green, blue uint8) (*Threshold, error) {
	c, err := ParseChannels(selector)
	if err != nil {
		return nil, err
	}
	return &Threshold{channels: c, cutoff: [3]uint8{red, green, blue}}, nil
}

func (t *Threshold) Name() string { return "threshold" }

func (t *Threshold) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	cut := func(on bool, v, limit uint8) uint8 {
		if on && v <= limit {
			return 0
		}
		return v
	}
	return mapPixels(b, p, func(_ Coord, px Pixel) Pixel {
		return Pixel{
			R: cut(t.channels.R, px.R, t.cutoff[0]),
			G: cut(t.channels.G, px.G, t.cutoff[1]),
			B: cut(t.channels.B, px.B, t.cutoff[2]),
			A: px.A,
		}
	}), nil
}

// Quantization reduces each colour channel to a fixed number of evenly
// spaced levels.
type Quantization struct {
	table [256]uint8
}

// NewQuantization validates levels, which must be in [2, 255].
func NewQuantization(levels int) (*Quantization, error) {
	if levels < 2 || levels > 255 {
		return nil, fmt.Errorf("%w: quantization levels %d outside [2,255]", ErrInvalidOptions, levels)
	}
	q := &Quantization{}
	step := 255 / float64(levels-1)
	for v := range q.table {
		q.table[v] = imageutil.ClampUint8(math.Round(float64(v)/step) * step)
	}
	return q, nil
}

func (q *Quantization) Name() string { return "quantization" }

func (q *Quantization) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	return mapPixels(b, p, func(_ Coord, px Pixel) Pixel {
		return Pixel{R: q.table[px.R], G: q.table[px.G], B: q.table[px.B], A: px.A}
	}), nil
}

// Gamma raises each normalized colour channel to the power Gamma, on 8-bit
// values in fast mode and on linear light in precise mode.
type Gamma struct {
	gamma   float64
	precise bool
	table   [256]uint8
}

// NewGamma validates gamma, which must be positive.
func NewGamma(gamma float64, precise bool) (*Gamma, error) {
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return nil, fmt.Errorf("%w: gamma %g must be positive", ErrInvalidOptions, gamma)
	}
	g := &Gamma{gamma: gamma, precise: precise}
	for v := range g.table {
		g.table[v] = imageutil.ClampUint8(math.Pow(float64(v)/255, gamma) * 255)
	}
	return g, nil
}

func (g *Gamma) Name() string { return "gamma" }

func (g *Gamma) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	if g.precise {
		p.Setup(b.Height())
		pow := func(v float32) float32 { return float32(math.Pow(float64(v), g.gamma)) }
		b.ParMapLinear(func(_ Coord, l LinearRGBA) LinearRGBA {
			return LinearRGBA{R: pow(l.R), G: pow(l.G), B: pow(l.B), A: l.A}
		}, p, imageutil.FullOffset(b.Size()))
		return b, nil
	}
	return mapPixels(b, p, func(_ Coord, px Pixel) Pixel {
		return Pixel{R: g.table[px.R], G: g.table[px.G], B: g.table[px.B], A: px.A}
	}), nil
}

// RemapFunction selects the curve Remapping applies to linear light.
type RemapFunction int

const (
	// RemapLinear stretches [Min, Max] onto [0, 1].
	RemapLinear RemapFunction = iota
	// RemapExponential raises each channel to the power Factor.
	RemapExponential
	// RemapLogarithmic takes log base Factor of v+1.
	RemapLogarithmic
)

// ParseRemapFunction accepts "linear", "exponential" or "logarithmic".
func ParseRemapFunction(s string) (RemapFunction, error) {
	switch strings.ToLower(s) {
	case "", "linear":
		return RemapLinear, nil
	case "exponential", "exp":
		return RemapExponential, nil
	case "logarithmic", "log":
		return RemapLogarithmic, nil
	}
	return 0, fmt.Errorf("%w: unknown remapping function %q", ErrInvalidOptions, s)
}

// RemappingOptions configures Remapping. Min and Max apply to RemapLinear,
// Factor to the other two.
type RemappingOptions struct {
	Function RemapFunction
	Min, Max float64
	Factor   float64
}

// Remapping passes every colour channel through a curve in linear light.
// Results outside [0,1] are clamped and alpha is kept.
type Remapping struct {
	opts RemappingOptions
}

// NewRemapping validates the fields the chosen function reads.
func NewRemapping(opts RemappingOptions) (*Remapping, error) {
	bad := func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
	switch opts.Function {
	case RemapLinear:
		if bad(opts.Min) || bad(opts.Max) || opts.Max <= opts.Min {
			return nil, fmt.Errorf("%w: remapping range [%g, %g] is empty", ErrInvalidOptions, opts.Min, opts.Max)
		}
	case RemapExponential:
		if bad(opts.Factor) || opts.Factor <= 0 {
			return nil, fmt.Errorf("%w: exponent %g must be positive", ErrInvalidOptions, opts.Factor)
		}
	case RemapLogarithmic:
		if bad(opts.Factor) || opts.Factor <= 1 {
			return nil, fmt.Errorf("%w: logarithm base %g must exceed 1", ErrInvalidOptions, opts.Factor)
		}
	default:
		return nil, fmt.Errorf("%w: remapping function %d", ErrInvalidOptions, opts.Function)
	}
	return &Remapping{opts: opts}, nil
}

func (r *Remapping) Name() string { return "remapping" }

func (r *Remapping) curve(v float32) float32 {
	o := r.opts
	switch o.Function {
	case RemapExponential:
		return float32(math.Pow(float64(v), o.Factor))
	case RemapLogarithmic:
		return float32(math.Log(float64(v)+1) / math.Log(o.Factor))
	}
	return float32((float64(v) - o.Min) / (o.Max - o.Min))
}

func (r *Remapping) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	p.Setup(b.Height())
	b.ParMapLinear(func(_ Coord, l LinearRGBA) LinearRGBA {
		return LinearRGBA{R: r.curve(l.R), G: r.curve(l.G), B: r.curve(l.B), A: l.A}
	}, p, imageutil.FullOffset(b.Size()))
	return b, nil
}
