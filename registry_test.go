package pixelpipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

func TestBuildUnknownFilter(t *testing.T) {
	_, err := Build("nope", nil, DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestBuildRejectsUnknownOption(t *testing.T) {
	_, err := Build("gaussian-blur", []byte("radius: 1\nbogus: 2\n"), DefaultSettings())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Contains(t, err.Error(), "gaussian-blur")
}

func TestBuildRejectsInvalidValues(t *testing.T) {
	_, err := Build("threshold", []byte("channels: rq"), DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidChannelSelector)

	_, err = Build("rotate", []byte("degrees: 30"), DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidAngle)

	_, err = Build("canny", []byte("kernel: scharr"), DefaultSettings())
	assert.ErrorIs(t, err, ErrNotImplemented)

	s := DefaultSettings()
	s.Border = BorderMirror
	_, err = Build("median", nil, s)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestBuildWrapsBorderedProcessors(t *testing.T) {
	pl, err := Build("gaussian-blur", []byte("radius: 1\nsigma: 0.8"), DefaultSettings())
	require.NoError(t, err)
	ec, ok := pl.(*EnlargementCropPipeline)
	require.True(t, ok)
	assert.Equal(t, 1, ec.Processor().Border())

	pl, err = Build("negative", nil, DefaultSettings())
	require.NoError(t, err)
	assert.IsType(t, &Single{}, pl)
}

func TestFastSettingSkipsEnlargement(t *testing.T) {
	s := DefaultSettings()
	s.Fast = true
	pl, err := Build("mean-blur", nil, s)
	require.NoError(t, err)

	pp := progress.NewPipeline()
	_, err = pl.Run(imageutil.CreateNoiseImage(8, 8, 3), pp)
	require.NoError(t, err)
	assert.Len(t, pp.Stages(), 1)
}

func TestEveryFilterBuildsAndRuns(t *testing.T) {
	resizing := map[string]bool{
		"scale": false, "rotate": true, "rotate-flexible": true, "crop": true, "enlargement": true,
	}
	defs := Filters()
	require.NotEmpty(t, defs)
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].Name, defs[i].Name)
	}

	for _, def := range defs {
		t.Run(def.Name, func(t *testing.T) {
			pl, err := def.Build(nil, DefaultSettings())
			require.NoError(t, err)
			src := imageutil.CreateNoiseImage(16, 12, 5)
			out, err := Run(pl, src)
			require.NoError(t, err)
			if !resizing[def.Name] {
				assert.Equal(t, imageutil.Size{Width: 16, Height: 12}, out.Size())
			}
		})
	}
}

func TestFilterDefaults(t *testing.T) {
	def, ok := Lookup("gaussian-blur")
	require.True(t, ok)
	d, ok := def.Defaults().(*blurOptions)
	require.True(t, ok)
	assert.Equal(t, 2, d.Radius)

	// Defaults hands out copies.
	d.Radius = 99
	assert.Equal(t, 2, def.Defaults().(*blurOptions).Radius)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	def, ok := Lookup("negative")
	require.True(t, ok)
	assert.Panics(t, func() { Register(def) })
	assert.Panics(t, func() { Register(FilterDef{}) })
}

func TestDecodeOptionsEmptyKeepsDefaults(t *testing.T) {
	opts := blurOptions{Radius: 3, Sigma: 2}
	require.NoError(t, DecodeOptions([]byte("  \n"), &opts))
	assert.Equal(t, blurOptions{Radius: 3, Sigma: 2}, opts)

	require.NoError(t, DecodeOptions([]byte("sigma: 1.5"), &opts))
	assert.Equal(t, blurOptions{Radius: 3, Sigma: 1.5}, opts)
}
