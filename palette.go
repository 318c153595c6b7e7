package pixelpipe

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa". The leading # is
// optional and alpha defaults to opaque.
func ParseColor(s string) (Pixel, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Pixel{}, fmt.Errorf("%w: colour %q", ErrInvalidOptions, s)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return Pixel{}, fmt.Errorf("%w: colour %q: %v", ErrInvalidOptions, s, err)
	}
	return Pixel{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// Palette is a fixed set of opaque colours indexed by a k-d tree for
// nearest colour lookups.
type Palette struct {
	colors []Pixel
	root   *colorNode
}

// colorNode is a k-d tree node split on the R, G or B axis.
type colorNode struct {
	color       Pixel
	left, right *colorNode
	axis        int
}

// NewPalette builds a palette from colors. Alpha is ignored and duplicates
// are dropped.
func NewPalette(colors []Pixel) (*Palette, error) {
	seen := make(map[Pixel]bool, len(colors))
	var uniq []Pixel
	for _, c := range colors {
		c.A = 255
		if !seen[c] {
			seen[c] = true
			uniq = append(uniq, c)
		}
	}
	if len(uniq) == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrInvalidOptions)
	}
	return &Palette{colors: uniq, root: buildColorTree(slices.Clone(uniq))}, nil
}

// Colors returns the palette entries in insertion order.
func (pl *Palette) Colors() []Pixel { return slices.Clone(pl.colors) }

// buildColorTree splits on the axis with the largest variance at every
// level, taking the median along that axis as the node colour.
func buildColorTree(colors []Pixel) *colorNode {
	if len(colors) == 0 {
		return nil
	}
	axis := splitAxis(colors)
	slices.SortStableFunc(colors, func(a, b Pixel) int {
		return int(component(a, axis)) - int(component(b, axis))
	})
	median := len(colors) / 2
	return &colorNode{
		color: colors[median],
		left:  buildColorTree(colors[:median]),
		right: buildColorTree(colors[median+1:]),
		axis:  axis,
	}
}

func splitAxis(colors []Pixel) int {
	var mean, variance [3]float64
	for _, c := range colors {
		for a := range 3 {
			mean[a] += float64(component(c, a))
		}
	}
	for a := range 3 {
		mean[a] /= float64(len(colors))
	}
	for _, c := range colors {
		for a := range 3 {
			d := float64(component(c, a)) - mean[a]
			variance[a] += d * d
		}
	}
	switch {
	case variance[0] > variance[1] && variance[0] > variance[2]:
		return 0
	case variance[1] > variance[2]:
		return 1
	}
	return 2
}

func component(c Pixel, axis int) uint8 {
	switch axis {
	case 0:
		return c.R
	case 1:
		return c.G
	}
	return c.B
}

func distanceSq(a, b Pixel) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Nearest returns the palette colour closest to c in RGB space, with the
// alpha of c.
func (pl *Palette) Nearest(c Pixel) Pixel {
	best, bestDist := pl.root.color, distanceSq(pl.root.color, c)
	pl.root.nearest(c, &best, &bestDist)
	best.A = c.A
	return best
}

func (n *colorNode) nearest(target Pixel, best *Pixel, bestDist *int) {
	if n == nil {
		return
	}
	if d := distanceSq(n.color, target); d < *bestDist {
		*best, *bestDist = n.color, d
	}
	diff := int(component(target, n.axis)) - int(component(n.color, n.axis))
	near, far := n.left, n.right
	if diff >= 0 {
		near, far = n.right, n.left
	}
	near.nearest(target, best, bestDist)
	if diff*diff < *bestDist {
		far.nearest(target, best, bestDist)
	}
}

func rgb(r, g, b uint8) Pixel { return Pixel{R: r, G: g, B: b, A: 255} }

// ansi16 holds the xterm defaults for the 16 basic ANSI colours.
var ansi16 = []Pixel{
	rgb(0, 0, 0), rgb(205, 0, 0), rgb(0, 205, 0), rgb(205, 205, 0),
	rgb(0, 0, 238), rgb(205, 0, 205), rgb(0, 205, 205), rgb(229, 229, 229),
	rgb(127, 127, 127), rgb(255, 0, 0), rgb(0, 255, 0), rgb(255, 255, 0),
	rgb(92, 92, 255), rgb(255, 0, 255), rgb(0, 255, 255), rgb(255, 255, 255),
}

// ansi256 is the xterm 256 colour table: the basic 16, a 6x6x6 cube and a
// 24 step gray ramp.
func ansi256() []Pixel {
	levels := []uint8{0, 95, 135, 175, 215, 255}
	colors := slices.Clone(ansi16)
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				colors = append(colors, Pixel{R: r, G: g, B: b, A: 255})
			}
		}
	}
	for i := range 24 {
		v := uint8(8 + 10*i)
		colors = append(colors, Pixel{R: v, G: v, B: v, A: 255})
	}
	return colors
}

// webSafe is the 216 colour cube with channel steps of 51.
func webSafe() []Pixel {
	var colors []Pixel
	for r := 0; r <= 255; r += 51 {
		for g := 0; g <= 255; g += 51 {
			for b := 0; b <= 255; b += 51 {
				colors = append(colors, Pixel{R: uint8(r), G: uint8(g), B: uint8(b), A: 255})
			}
		}
	}
	return colors
}

// NamedPalette returns one of the built-in palettes: ansi16, ansi256,
// web-safe or bw.
func NamedPalette(name string) (*Palette, error) {
	switch strings.ToLower(name) {
	case "ansi16":
		return NewPalette(ansi16)
	case "ansi256":
		return NewPalette(ansi256())
	case "web-safe", "websafe":
		return NewPalette(webSafe())
	case "bw":
		return NewPalette([]Pixel{rgb(0, 0, 0), rgb(255, 255, 255)})
	}
	return nil, fmt.Errorf("%w: unknown palette %q", ErrInvalidOptions, name)
}

// PaletteMap replaces every pixel with its nearest palette colour. With
// Dither set the quantization error is diffused Floyd-Steinberg style:
// 7/16 right, 3/16 below left, 5/16 below and 1/16 below right. Alpha is
// kept.
type PaletteMap struct {
	Palette *Palette
	Dither  bool
}

func (m *PaletteMap) Name() string { return "palette" }

func (m *PaletteMap) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	if m.Palette == nil {
		return nil, fmt.Errorf("%w: palette map without a palette", ErrInvalidOptions)
	}
	if !m.Dither {
		return mapPixels(b, p, func(_ Coord, px Pixel) Pixel {
			return m.Palette.Nearest(px)
		}), nil
	}
	m.diffuse(b, p)
	return b, nil
}

// diffuse runs row by row since every pixel depends on the error of the
// ones before it.
func (m *PaletteMap) diffuse(b *imageutil.PixelBuffer, p *progress.Progress) {
	w, h := b.Width(), b.Height()
	p.Setup(h)
	// Two rows of accumulated error, padded by one on each side.
	cur := make([][3]float64, w+2)
	next := make([][3]float64, w+2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := imageutil.Pt(x, y)
			px := b.Pixel(c)
			e := cur[x+1]
			want := Pixel{
				R: imageutil.ClampUint8(float64(px.R) + e[0]),
				G: imageutil.ClampUint8(float64(px.G) + e[1]),
				B: imageutil.ClampUint8(float64(px.B) + e[2]),
				A: px.A,
			}
			got := m.Palette.Nearest(want)
			b.SetPixel(c, got)
			diff := [3]float64{
				float64(want.R) - float64(got.R),
				float64(want.G) - float64(got.G),
				float64(want.B) - float64(got.B),
			}
			for ch, d := range diff {
				cur[x+2][ch] += d * 7 / 16
				next[x][ch] += d * 3 / 16
				next[x+1][ch] += d * 5 / 16
				next[x+2][ch] += d * 1 / 16
			}
		}
		cur, next = next, cur
		clear(next)
		p.Increment()
	}
}
