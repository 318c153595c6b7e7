package pixelpipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Pixel
	}{
		{"#fff", Pixel{R: 255, G: 255, B: 255, A: 255}},
		{"102030", Pixel{R: 0x10, G: 0x20, B: 0x30, A: 255}},
		{"#10203080", Pixel{R: 0x10, G: 0x20, B: 0x30, A: 0x80}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "#12", "#ggg", "#1234567"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidOptions, bad)
	}
}

func bruteNearest(colors []Pixel, c Pixel) int {
	best := distanceSq(colors[0], c)
	for _, p := range colors[1:] {
		best = min(best, distanceSq(p, c))
	}
	return best
}

// Ties may resolve to a different entry, so compare distances.
func TestPaletteNearestMatchesBruteForce(t *testing.T) {
	for _, name := range []string{"ansi16", "ansi256", "web-safe", "bw"} {
		pal, err := NamedPalette(name)
		require.NoError(t, err)
		img := imageutil.CreateNoiseImage(32, 32, 7)
		for y := 0; y < 32; y++ {
			for x := 0; x < 32; x++ {
				c := img.Pixel(imageutil.Pt(x, y))
				got := pal.Nearest(c)
				assert.Equal(t, bruteNearest(pal.Colors(), c), distanceSq(got, c), "%s %v", name, c)
				assert.Equal(t, c.A, got.A)
			}
		}
	}
}

func TestPaletteBuild(t *testing.T) {
	_, err := NewPalette(nil)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = NamedPalette("sunset")
	assert.ErrorIs(t, err, ErrInvalidOptions)

	pal, err := NewPalette([]Pixel{{R: 1, A: 10}, {R: 1, A: 255}, {G: 2}})
	require.NoError(t, err)
	assert.Equal(t, []Pixel{{R: 1, A: 255}, {G: 2, A: 255}}, pal.Colors())

	full, err := NamedPalette("ansi256")
	require.NoError(t, err)
	// The basic 16 overlap the cube at black, white and the pure primaries.
	assert.Len(t, full.Colors(), 16+216+24-7)
}

func TestPaletteMapWithoutDither(t *testing.T) {
	pal, err := NamedPalette("bw")
	require.NoError(t, err)
	b := imageutil.NewPixelBuffer(3, 1)
	b.SetPixel(imageutil.Pt(0, 0), Pixel{R: 100, G: 100, B: 100, A: 255})
	b.SetPixel(imageutil.Pt(1, 0), Pixel{R: 128, G: 128, B: 128, A: 40})
	b.SetPixel(imageutil.Pt(2, 0), Pixel{R: 250, G: 10, B: 250, A: 255})

	out, err := (&PaletteMap{Palette: pal}).Process(b, progress.New(0))
	require.NoError(t, err)
	assert.Equal(t, Pixel{A: 255}, out.Pixel(imageutil.Pt(0, 0)))
	assert.Equal(t, Pixel{R: 255, G: 255, B: 255, A: 40}, out.Pixel(imageutil.Pt(1, 0)))
	assert.Equal(t, Pixel{R: 255, G: 255, B: 255, A: 255}, out.Pixel(imageutil.Pt(2, 0)))
}

func TestPaletteMapDitherKeepsMeanLevel(t *testing.T) {
	pal, err := NamedPalette("bw")
	require.NoError(t, err)
	gray := Pixel{R: 128, G: 128, B: 128, A: 255}

	plain, err := (&PaletteMap{Palette: pal}).Process(imageutil.CreateSolidImage(32, 32, gray), nil)
	require.NoError(t, err)
	dithered, err := (&PaletteMap{Palette: pal, Dither: true}).Process(imageutil.CreateSolidImage(32, 32, gray), nil)
	require.NoError(t, err)

	white := func(b *imageutil.PixelBuffer) float64 {
		n := 0
		for y := 0; y < b.Height(); y++ {
			for x := 0; x < b.Width(); x++ {
				if b.Pixel(imageutil.Pt(x, y)).R == 255 {
					n++
				}
			}
		}
		return float64(n) / float64(b.Size().Area())
	}
	assert.Equal(t, 1.0, white(plain))
	assert.InDelta(t, 0.5, white(dithered), 0.1)
}

func TestPaletteMapNeedsPalette(t *testing.T) {
	_, err := (&PaletteMap{}).Process(imageutil.NewPixelBuffer(1, 1), nil)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestPaletteFilterCustomColors(t *testing.T) {
	params := []byte("colors: ['#f00', '#00f']\n")
	pl, err := Build("palette", params, DefaultSettings())
	require.NoError(t, err)
	out, err := pl.Run(imageutil.CreateSolidImage(2, 2, Pixel{R: 200, G: 20, B: 90, A: 255}), nil)
	require.NoError(t, err)
	assert.Equal(t, Pixel{R: 255, A: 255}, out.Pixel(imageutil.Pt(1, 1)))

	_, err = Build("palette", []byte("colors: ['nope']\n"), DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
