package imageutil

import "math"

// srgbToLinear maps every 8-bit sRGB value to linear light.
var srgbToLinear = func() (t [256]float32) {
	for i := range t {
		t[i] = float32(DecodeSRGB(float64(i) / 255))
	}
	return t
}()

// DecodeSRGB applies the sRGB transfer function inverse to v in [0,1].
func DecodeSRGB(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// EncodeSRGB applies the sRGB transfer function to linear v in [0,1].
func EncodeSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// ToLinear converts an 8-bit sRGB pixel to linear light.
func ToLinear(p Pixel) LinearRGBA {
	return LinearRGBA{
		R: srgbToLinear[p.R],
		G: srgbToLinear[p.G],
		B: srgbToLinear[p.B],
		A: float32(p.A) / 255,
	}
}

// FromLinear encodes a linear-light colour back to 8-bit sRGB. Channels are
// clamped to [0,1] first.
func FromLinear(l LinearRGBA) Pixel {
	return Pixel{
		R: unitToUint8(EncodeSRGB(clampUnit(float64(l.R)))),
		G: unitToUint8(EncodeSRGB(clampUnit(float64(l.G)))),
		B: unitToUint8(EncodeSRGB(clampUnit(float64(l.B)))),
		A: unitToUint8(clampUnit(float64(l.A))),
	}
}

// Luma returns the plain average of the colour channels, the single-channel
// value used by the gradient engine.
func Luma(p Pixel) float64 {
	return (float64(p.R) + float64(p.G) + float64(p.B)) / 3
}

// Luminance returns the BT.601 weighted luminance in [0,255].
func Luminance(p Pixel) float64 {
	return 0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B)
}

// HSV is a hue/saturation/value triple. H is in degrees [0,360), S and V
// in [0,1].
type HSV struct {
	H, S, V float64
}

// ToHSV converts the colour channels of p to HSV.
func ToHSV(p Pixel) HSV {
	r, g, b := float64(p.R)/255, float64(p.G)/255, float64(p.B)/255
	hi := max(r, g, b)
	lo := min(r, g, b)
	d := hi - lo

	hsv := HSV{V: hi}
	if hi > 0 {
		hsv.S = d / hi
	}
	hsv.H = hue(r, g, b, hi, d)
	return hsv
}

// FromHSV converts c back to a pixel with alpha a.
func FromHSV(c HSV, a uint8) Pixel {
	r, g, b := hueToRGB(c.H, c.V*c.S, c.V-c.V*c.S)
	return Pixel{R: unitToUint8(r), G: unitToUint8(g), B: unitToUint8(b), A: a}
}

// HSL is a hue/saturation/lightness triple with the same ranges as HSV.
type HSL struct {
	H, S, L float64
}

// ToHSL converts the colour channels of p to HSL.
func ToHSL(p Pixel) HSL {
	r, g, b := float64(p.R)/255, float64(p.G)/255, float64(p.B)/255
	hi := max(r, g, b)
	lo := min(r, g, b)
	d := hi - lo

	hsl := HSL{L: (hi + lo) / 2}
	if d > 0 {
		hsl.S = d / (1 - math.Abs(2*hsl.L-1))
	}
	hsl.H = hue(r, g, b, hi, d)
	return hsl
}

// FromHSL converts c back to a pixel with alpha a.
func FromHSL(c HSL, a uint8) Pixel {
	chroma := (1 - math.Abs(2*c.L-1)) * c.S
	r, g, b := hueToRGB(c.H, chroma, c.L-chroma/2)
	return Pixel{R: unitToUint8(r), G: unitToUint8(g), B: unitToUint8(b), A: a}
}

func hue(r, g, b, hi, d float64) float64 {
	if d == 0 {
		return 0
	}
	var h float64
	switch hi {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h
}

// hueToRGB rebuilds r,g,b from a hue, a chroma and the minimum channel value.
func hueToRGB(h, chroma, m float64) (r, g, b float64) {
	hp := math.Mod(h, 360) / 60
	x := chroma * (1 - math.Abs(math.Mod(hp, 2)-1))
	switch {
	case hp < 1:
		r, g, b = chroma, x, 0
	case hp < 2:
		r, g, b = x, chroma, 0
	case hp < 3:
		r, g, b = 0, chroma, x
	case hp < 4:
		r, g, b = 0, x, chroma
	case hp < 5:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	return r + m, g + m, b + m
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func unitToUint8(v float64) uint8 {
	return ClampUint8(v * 255)
}

// ClampUint8 rounds v and clamps it to [0,255].
func ClampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
