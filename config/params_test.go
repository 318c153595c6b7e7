package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/pixelpipe"
)

func TestParamsFromPairsDecodeThroughRegistry(t *testing.T) {
	params, err := ParamsFromPairs([]string{"radius=1", "sigma = 0.5", "precise=true"})
	require.NoError(t, err)

	var opts struct {
		Radius  int     `yaml:"radius"`
		Sigma   float64 `yaml:"sigma"`
		Precise bool    `yaml:"precise"`
	}
	require.NoError(t, pixelpipe.DecodeOptions(params, &opts))
	assert.Equal(t, 1, opts.Radius)
	assert.Equal(t, 0.5, opts.Sigma)
	assert.True(t, opts.Precise)

	_, err = pixelpipe.Build("gaussian-blur", params, pixelpipe.DefaultSettings())
	assert.NoError(t, err)
}

func TestParamsFromPairsStrings(t *testing.T) {
	params, err := ParamsFromPairs([]string{"channels=rg", "red=10"})
	require.NoError(t, err)
	_, err = pixelpipe.Build("threshold", params, pixelpipe.DefaultSettings())
	assert.NoError(t, err)
}

func TestParamsFromPairsErrors(t *testing.T) {
	params, err := ParamsFromPairs(nil)
	require.NoError(t, err)
	assert.Nil(t, params)

	for _, bad := range [][]string{{"radius"}, {"=3"}, {"a=1", "a=2"}} {
		_, err := ParamsFromPairs(bad)
		assert.ErrorIs(t, err, pixelpipe.ErrInvalidOptions, "%v", bad)
	}
}
