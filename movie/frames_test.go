package movie

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/pixelpipe"
	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

var frameSize = imageutil.Size{Width: 4, Height: 3}

func rawFrames(n int) ([]*imageutil.PixelBuffer, []byte) {
	var frames []*imageutil.PixelBuffer
	var raw bytes.Buffer
	for i := 0; i < n; i++ {
		f := imageutil.CreateNoiseImage(frameSize.Width, frameSize.Height, uint32(i+1))
		frames = append(frames, f)
		raw.Write(f.Bytes())
	}
	return frames, raw.Bytes()
}

func TestFrameReaderReadsUntilEOF(t *testing.T) {
	frames, raw := rawFrames(3)
	fr, err := NewFrameReader(bytes.NewReader(raw), frameSize)
	require.NoError(t, err)

	for i := range frames {
		got, err := fr.Next()
		require.NoError(t, err)
		assert.True(t, frames[i].Equal(got), "frame %d", i)
	}
	_, err = fr.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 3, fr.Frames())
}

func TestFrameReaderTruncatedFrame(t *testing.T) {
	_, raw := rawFrames(2)
	fr, err := NewFrameReader(bytes.NewReader(raw[:len(raw)-5]), frameSize)
	require.NoError(t, err)

	_, err = fr.Next()
	require.NoError(t, err)
	_, err = fr.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFrameReaderRejectsEmptySize(t *testing.T) {
	_, err := NewFrameReader(bytes.NewReader(nil), imageutil.Size{})
	assert.ErrorIs(t, err, pixelpipe.ErrInvalidOptions)
}

func TestProcessAppliesPipelinePerFrame(t *testing.T) {
	frames, raw := rawFrames(4)
	var out bytes.Buffer
	p := &progress.Progress{}

	n, err := Process(bytes.NewReader(raw), &out, frameSize, pixelpipe.NewSingle(&pixelpipe.Negative{}), 4, p)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, p.Done())

	fr, err := NewFrameReader(&out, frameSize)
	require.NoError(t, err)
	for i, f := range frames {
		got, err := fr.Next()
		require.NoError(t, err)
		want := pixelpipe.MustApply(&pixelpipe.Negative{}, f.Clone())
		assert.True(t, want.Equal(got), "frame %d", i)
	}
}

func TestProcessStopsOnPipelineError(t *testing.T) {
	_, raw := rawFrames(3)
	calls := 0
	failing := pixelpipe.NewSingle(pixelpipe.ProcessorFunc{
		ID: "flaky",
		Fn: func(b *imageutil.PixelBuffer, _ *progress.Progress) (*imageutil.PixelBuffer, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("boom")
			}
			return b, nil
		},
	})

	var out bytes.Buffer
	n, err := Process(bytes.NewReader(raw), &out, frameSize, failing, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 1")
	assert.Equal(t, 1, n)
}

func TestProcessRejectsResizedFrames(t *testing.T) {
	_, raw := rawFrames(1)
	rot, err := pixelpipe.NewRotate(90)
	require.NoError(t, err)

	_, err = Process(bytes.NewReader(raw), io.Discard, frameSize, pixelpipe.NewSingle(rot), 0, nil)
	assert.ErrorIs(t, err, pixelpipe.ErrInvalidOptions)
}
