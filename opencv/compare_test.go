package opencv

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/pixelpipe"
	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

func TestFrameRoundTrip(t *testing.T) {
	src := imageutil.CreateNoiseImage(7, 5, 3)
	f := MarshalFrame(src)
	assert.Equal(t, FrameSize{Width: 7, Height: 5}, f.Size)
	assert.Len(t, f.Data, 7*5*4)

	back, err := f.Unmarshal()
	require.NoError(t, err)
	assert.True(t, src.Equal(back))
}

func TestFrameRejectsMismatchedData(t *testing.T) {
	f := Frame{Data: make([]float32, 10), Size: FrameSize{Width: 2, Height: 2}}
	_, err := f.Unmarshal()
	assert.ErrorIs(t, err, pixelpipe.ErrInvalidImageFormat)
	_, err = f.Mat()
	assert.ErrorIs(t, err, pixelpipe.ErrInvalidImageFormat)
}

func TestMatCopiesFrame(t *testing.T) {
	f := MarshalFrame(imageutil.CreateGradientImage(6, 4))
	m, err := f.Mat()
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 4, m.Rows())
	assert.Equal(t, 6, m.Cols())
	back, err := frameFromMat(m)
	require.NoError(t, err)
	assert.Equal(t, f, back)

	// The mat owns its data.
	f.Data[0] = 0.5
	assert.NotEqual(t, f.Data[0], back.Data[0])
}

func TestCompareNegative(t *testing.T) {
	src := imageutil.CreateColorBarsImage(64, 32)
	p := &progress.Progress{}
	native, err := Negative{}.Process(src.Clone(), p)
	require.NoError(t, err)
	assert.True(t, p.Done())

	pure := pixelpipe.MustApply(&pixelpipe.Negative{}, src.Clone())
	assert.Equal(t, 0, imageutil.CalculateMaxDiff(native, pure))
}

func TestCompareGaussianBlur(t *testing.T) {
	const radius = 2
	src := imageutil.CreateNoiseImage(48, 32, 9)

	g, err := NewGaussianBlur(radius, 1.4)
	require.NoError(t, err)
	native, err := pixelpipe.Apply(g, src.Clone())
	require.NoError(t, err)

	blur, err := pixelpipe.NewGaussianBlur(radius, 1.4, false)
	require.NoError(t, err)
	pure := pixelpipe.MustApply(blur, src.Clone())

	// Only the interior is comparable; the borders are handled differently.
	inner := src.Size().Shrink(radius)
	origin := imageutil.Pt(radius, radius)
	maxDiff := imageutil.CalculateMaxDiff(native.SubBuffer(origin, inner), pure.SubBuffer(origin, inner))
	mse := imageutil.CalculateMSE(native.SubBuffer(origin, inner), pure.SubBuffer(origin, inner))
	t.Logf("Gaussian blur MSE: %f, Max diff: %d", mse, maxDiff)
	assert.LessOrEqual(t, maxDiff, 1)
}

func TestGaussianBlurValidation(t *testing.T) {
	_, err := NewGaussianBlur(-1, 1)
	assert.ErrorIs(t, err, pixelpipe.ErrInvalidKernel)
	_, err = NewGaussianBlur(1, 0)
	assert.ErrorIs(t, err, pixelpipe.ErrInvalidKernel)
}

func TestRegisteredFilters(t *testing.T) {
	for _, name := range []string{"opencv-gaussian-blur", "opencv-negative"} {
		pl, err := pixelpipe.Build(name, nil, pixelpipe.DefaultSettings())
		require.NoError(t, err, name)
		out, err := pixelpipe.Run(pl, imageutil.CreateGradientImage(16, 16))
		require.NoError(t, err, name)
		assert.Equal(t, imageutil.Size{Width: 16, Height: 16}, out.Size())
	}
	_, err := pixelpipe.Build("opencv-negative", []byte("precise: true"), pixelpipe.DefaultSettings())
	assert.ErrorIs(t, err, pixelpipe.ErrInvalidOptions)
}

func TestNativeFailuresWrapGpuBackend(t *testing.T) {
	src := imageutil.CreateGradientImage(4, 4)
	_, err := run(src, nil, func(gocv.Mat, *gocv.Mat) error {
		return errors.New("copy failed")
	})
	assert.ErrorIs(t, err, pixelpipe.ErrGpuBackend)
	assert.ErrorContains(t, err, "copy failed")

	// An op that produces nothing must not pass for a result.
	_, err = run(src, nil, func(gocv.Mat, *gocv.Mat) error { return nil })
	assert.ErrorIs(t, err, pixelpipe.ErrGpuBackend)
}

func TestInvert(t *testing.T) {
	f := MarshalFrame(imageutil.CreateSolidImage(2, 2, imageutil.Pixel{R: 255, G: 51, A: 255}))
	var got Frame
	require.NoError(t, withMat(f, func(src gocv.Mat) error {
		dst := gocv.NewMat()
		defer dst.Close()
		if err := invert(src, &dst); err != nil {
			return err
		}
		var err error
		got, err = frameFromMat(dst)
		return err
	}))
	require.Len(t, got.Data, 16)
	assert.InDelta(t, 0, got.Data[0], 1e-6)
	assert.InDelta(t, 0.8, got.Data[1], 1e-6)
	assert.InDelta(t, 1, got.Data[2], 1e-6)
	assert.InDelta(t, 0, got.Data[3], 1e-6)
}
