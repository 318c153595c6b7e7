package pixelpipe

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/pixelpipe/imageutil"
)

func TestAddAndSubtractSaturate(t *testing.T) {
	a := imageutil.Pixel{R: 200, G: 10, B: 0, A: 255}
	b := imageutil.Pixel{R: 100, G: 20, B: 5, A: 0}
	operand := imageutil.CreateSolidImage(3, 2, b)

	sum := MustApply(&Add{Operand: operand}, imageutil.CreateSolidImage(3, 2, a))
	assert.Equal(t, imageutil.Pixel{R: 255, G: 30, B: 5, A: 255}, sum.Pixel(imageutil.Pt(2, 1)))

	diff := MustApply(&Subtract{Operand: operand}, imageutil.CreateSolidImage(3, 2, a))
	assert.Equal(t, imageutil.Pixel{R: 100, G: 0, B: 0, A: 255}, diff.Pixel(imageutil.Pt(2, 1)))
}

func TestAddReadsOperandPerPixel(t *testing.T) {
	src := imageutil.CreateNoiseImage(7, 5, 3)
	operand := imageutil.CreateNoiseImage(7, 5, 9)
	out := MustApply(&Add{Operand: operand}, src.Clone())
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			c := imageutil.Pt(x, y)
			s, o := src.Pixel(c), operand.Pixel(c)
			want := imageutil.Pixel{
				R: uint8(min(int(s.R)+int(o.R), 255)),
				G: uint8(min(int(s.G)+int(o.G), 255)),
				B: uint8(min(int(s.B)+int(o.B), 255)),
				A: 255,
			}
			assert.Equal(t, want, out.Pixel(c), "at %v", c)
		}
	}

	// Subtracting an image from itself leaves black with no alpha.
	zero := MustApply(&Subtract{Operand: src}, src.Clone())
	assert.True(t, imageutil.CreateSolidImage(7, 5, imageutil.Pixel{}).Equal(zero))
}

func TestArithmeticSizeMismatch(t *testing.T) {
	operand := imageutil.CreateSolidImage(2, 2, opaqueGray)
	_, err := Apply(&Add{Operand: operand}, imageutil.NewPixelBuffer(3, 2))
	assert.ErrorIs(t, err, ErrInvalidImageFormat)
	_, err = Apply(&Subtract{Operand: operand}, imageutil.NewPixelBuffer(2, 3))
	assert.ErrorIs(t, err, ErrInvalidImageFormat)
}

func TestArithmeticFilters(t *testing.T) {
	src := imageutil.Pixel{R: 50, G: 60, B: 70, A: 200}

	pl, err := Build("subtract", []byte("color: '#0a141e00'"), DefaultSettings())
	require.NoError(t, err)
	out, err := pl.Run(imageutil.CreateSolidImage(2, 2, src), nil)
	require.NoError(t, err)
	assert.Equal(t, imageutil.Pixel{R: 40, G: 40, B: 40, A: 200}, out.Pixel(imageutil.Pt(1, 1)))

	path := filepath.Join(t.TempDir(), "operand.png")
	require.NoError(t, imageutil.WriteToFile(imageutil.CreateSolidImage(2, 2, imageutil.Pixel{R: 10, A: 255}), path))
	pl, err = Build("add", []byte("image: "+path), DefaultSettings())
	require.NoError(t, err)
	out, err = pl.Run(imageutil.CreateSolidImage(2, 2, src), nil)
	require.NoError(t, err)
	assert.Equal(t, imageutil.Pixel{R: 60, G: 60, B: 70, A: 255}, out.Pixel(imageutil.Pt(0, 1)))

	_, err = Build("add", []byte("color: purple"), DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = Build("add", []byte("image: "+filepath.Join(t.TempDir(), "missing.png")), DefaultSettings())
	assert.Error(t, err)
}
