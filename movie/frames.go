// Package movie runs a pipeline over a stream of raw RGBA8 video frames,
// such as the output of
//
//	ffmpeg -i in.mp4 -f rawvideo -pix_fmt rgba -
//
// Container handling is left to external tools.
package movie

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wbrown/pixelpipe"
	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// FrameReader reads fixed-size frames from a raw stream.
type FrameReader struct {
	r    *bufio.Reader
	size imageutil.Size
	n    int
}

// NewFrameReader reads frames of size from r.
func NewFrameReader(r io.Reader, size imageutil.Size) (*FrameReader, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("%w: frame size %v", pixelpipe.ErrInvalidOptions, size)
	}
	return &FrameReader{r: bufio.NewReaderSize(r, size.Area()*4), size: size}, nil
}

// Next returns the next frame. It returns io.EOF at a clean end of stream
// and io.ErrUnexpectedEOF when the stream stops inside a frame.
func (fr *FrameReader) Next() (*imageutil.PixelBuffer, error) {
	b := imageutil.NewPixelBuffer(fr.size.Width, fr.size.Height)
	if _, err := io.ReadFull(fr.r, b.Pix); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("frame %d: %w", fr.n, err)
		}
		return nil, err
	}
	fr.n++
	return b, nil
}

// Frames returns how many complete frames have been read.
func (fr *FrameReader) Frames() int { return fr.n }

// FrameWriter writes frames to a raw stream. Call Flush when done.
type FrameWriter struct {
	w *bufio.Writer
	n int
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: bufio.NewWriter(w)}
}

// Write appends b's pixels to the stream.
func (fw *FrameWriter) Write(b *imageutil.PixelBuffer) error {
	if _, err := fw.w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("writing frame %d: %w", fw.n, err)
	}
	fw.n++
	return nil
}

func (fw *FrameWriter) Flush() error {
	return fw.w.Flush()
}

// Frames returns how many frames have been written.
func (fw *FrameWriter) Frames() int { return fw.n }

// Process runs every frame from r through pl and writes the results to w.
// Frames are independent: each gets a fresh PipelineProgress, and an output
// frame of a different size than the input is rejected. p counts frames
// and is set up for total when total is positive. It returns the number of
// frames written.
func Process(r io.Reader, w io.Writer, size imageutil.Size, pl pixelpipe.Pipeline, total int, p *progress.Progress) (int, error) {
	fr, err := NewFrameReader(r, size)
	if err != nil {
		return 0, err
	}
	fw := NewFrameWriter(w)
	if total > 0 {
		p.Setup(total)
	}

	start := time.Now()
	for {
		frame, err := fr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fw.Frames(), err
		}
		out, err := pl.Run(frame, progress.NewPipeline())
		if err != nil {
			return fw.Frames(), fmt.Errorf("frame %d: %w", fr.Frames()-1, err)
		}
		if out.Size() != size {
			return fw.Frames(), fmt.Errorf("%w: frame %d came out %v, want %v",
				pixelpipe.ErrInvalidOptions, fr.Frames()-1, out.Size(), size)
		}
		if err := fw.Write(out); err != nil {
			return fw.Frames(), err
		}
		p.Increment()
	}
	if err := fw.Flush(); err != nil {
		return fw.Frames(), fmt.Errorf("flushing frames: %w", err)
	}
	log.Debug().
		Int("frames", fw.Frames()).
		Stringer("size", size).
		Dur("elapsed", time.Since(start)).
		Msg("movie processed")
	return fw.Frames(), nil
}
