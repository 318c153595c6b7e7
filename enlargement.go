package pixelpipe

import (
	"fmt"
	"strings"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// BorderStrategy decides what fills the pixels added by an Enlargement.
type BorderStrategy int

const (
	// BorderConstant fills the border with a single colour.
	BorderConstant BorderStrategy = iota
	// BorderMirror is reserved for reflecting the image into the border.
	// It is not implemented; selecting it fails with ErrNotImplemented.
	BorderMirror
	// BorderReplicate repeats the nearest edge pixel, so the border adds
	// no gradient of its own.
	BorderReplicate
)

func (s BorderStrategy) String() string {
	switch s {
	case BorderConstant:
		return "constant"
	case BorderMirror:
		return "mirror"
	case BorderReplicate:
		return "replicate"
	}
	return fmt.Sprintf("BorderStrategy(%d)", int(s))
}

// ParseBorderStrategy accepts "constant", "mirror" or "replicate".
func ParseBorderStrategy(s string) (BorderStrategy, error) {
	switch strings.ToLower(s) {
	case "", "constant":
		return BorderConstant, nil
	case "mirror":
		return BorderMirror, nil
	case "replicate", "clamp":
		return BorderReplicate, nil
	}
	return 0, fmt.Errorf("%w: unknown border strategy %q", ErrInvalidOptions, s)
}

func (s BorderStrategy) validate() error {
	switch s {
	case BorderConstant, BorderReplicate:
		return nil
	case BorderMirror:
		return fmt.Errorf("%w: mirror border strategy", ErrNotImplemented)
	}
	return fmt.Errorf("%w: unknown border strategy %d", ErrInvalidOptions, int(s))
}

// DefaultFill is the border colour used when none is configured.
var DefaultFill = imageutil.Pixel{A: 255}

// Enlargement pads a buffer with border pixels on every edge.
type Enlargement struct {
	border    int
	replicate bool
	fill      imageutil.Pixel
}

// NewEnlargement validates the border size and strategy.
func NewEnlargement(border int, strategy BorderStrategy, fill imageutil.Pixel) (*Enlargement, error) {
	if border < 0 {
		return nil, fmt.Errorf("%w: negative border %d", ErrInvalidOptions, border)
	}
	if err := strategy.validate(); err != nil {
		return nil, err
	}
	return &Enlargement{border: border, replicate: strategy == BorderReplicate, fill: fill}, nil
}

func (e *Enlargement) Name() string { return "enlargement" }

func (e *Enlargement) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	size := b.Size().Grow(e.border)
	out := imageutil.NewPixelBuffer(size.Width, size.Height)
	fill := e.fill
	border := e.border
	w, h := b.Width(), b.Height()
	// An empty buffer has no edge to repeat.
	replicate := e.replicate && w > 0 && h > 0
	p.Setup(size.Height)
	out.ParForEachRow(func(y int, row []uint8) {
		sy := y - border
		if replicate {
			sy = min(max(sy, 0), h-1)
		}
		if sy < 0 || sy >= h {
			for i := 0; i < len(row); i += 4 {
				row[i], row[i+1], row[i+2], row[i+3] = fill.R, fill.G, fill.B, fill.A
			}
			return
		}
		src := b.Pix[sy*b.Stride : sy*b.Stride+w*4]
		copy(row[border*4:], src)
		left, right := fill, fill
		if replicate {
			left = b.Pixel(imageutil.Pt(0, sy))
			right = b.Pixel(imageutil.Pt(w-1, sy))
		}
		for x := 0; x < border; x++ {
			i, j := x*4, (border+w+x)*4
			row[i], row[i+1], row[i+2], row[i+3] = left.R, left.G, left.B, left.A
			row[j], row[j+1], row[j+2], row[j+3] = right.R, right.G, right.B, right.A
		}
	}, p, imageutil.FullOffset(size))
	return out, nil
}

// Crop cuts the rectangle at Origin with the given Size out of a buffer.
type Crop struct {
	Origin imageutil.Coord
	Size   imageutil.Size
}

// NewCrop validates the rectangle. Whether it fits is checked against each
// buffer when processing.
func NewCrop(origin imageutil.Coord, size imageutil.Size) (*Crop, error) {
	if origin.X < 0 || origin.Y < 0 || size.Width < 0 || size.Height < 0 {
		return nil, fmt.Errorf("%w: crop %v at %v", ErrInvalidOptions, size, origin)
	}
	return &Crop{Origin: origin, Size: size}, nil
}

func (c *Crop) Name() string { return "crop" }

func (c *Crop) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	if c.Origin.X+c.Size.Width > b.Width() || c.Origin.Y+c.Size.Height > b.Height() {
		return nil, fmt.Errorf("%w: crop %v at %v exceeds %v buffer", ErrInvalidOptions, c.Size, c.Origin, b.Size())
	}
	out := imageutil.NewPixelBuffer(c.Size.Width, c.Size.Height)
	p.Setup(c.Size.Height)
	out.ParForEachRow(func(y int, row []uint8) {
		start := (c.Origin.Y+y)*b.Stride + c.Origin.X*4
		copy(row, b.Pix[start:start+c.Size.Width*4])
	}, p, imageutil.FullOffset(c.Size))
	return out, nil
}

// EnlargementCropOptions configure an EnlargementCropPipeline.
type EnlargementCropOptions struct {
	// Fast skips enlargement and cropping. The processor then leaves a ring
	// of Border pixels unprocessed, which trades border accuracy for speed.
	Fast     bool
	Strategy BorderStrategy
	Fill     imageutil.Pixel
}

// DefaultEnlargementCropOptions returns full mode with an opaque black
// constant border.
func DefaultEnlargementCropOptions() EnlargementCropOptions {
	return EnlargementCropOptions{Strategy: BorderConstant, Fill: DefaultFill}
}

// EnlargementCropPipeline runs a border-reading processor so that every
// pixel of the input is processed: it pads the buffer by the processor's
// border, runs the processor and crops back to the original size.
type EnlargementCropPipeline struct {
	processor BorderedProcessor
	fast      bool
	enlarge   *Enlargement
}

// NewEnlargementCropPipeline validates opts and wraps p.
func NewEnlargementCropPipeline(p BorderedProcessor, opts EnlargementCropOptions) (*EnlargementCropPipeline, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil processor", ErrInvalidOptions)
	}
	enlarge, err := NewEnlargement(p.Border(), opts.Strategy, opts.Fill)
	if err != nil {
		return nil, err
	}
	return &EnlargementCropPipeline{processor: p, fast: opts.Fast, enlarge: enlarge}, nil
}

// Processor returns the wrapped processor.
func (e *EnlargementCropPipeline) Processor() BorderedProcessor {
	return e.processor
}

func (e *EnlargementCropPipeline) Run(b *imageutil.PixelBuffer, pp *progress.PipelineProgress) (*imageutil.PixelBuffer, error) {
	if e.fast {
		pp.Expect(1)
		return runStage(pp, e.processor.Name(), b, e.processor.Process)
	}

	pp.Expect(3)
	size := b.Size()
	enlarged, err := runStage(pp, e.enlarge.Name(), b, e.enlarge.Process)
	if err != nil {
		return nil, err
	}
	processed, err := runStage(pp, e.processor.Name(), enlarged, e.processor.Process)
	if err != nil {
		return nil, err
	}
	border := e.processor.Border()
	crop := &Crop{Origin: imageutil.Pt(border, border), Size: size}
	return runStage(pp, crop.Name(), processed, crop.Process)
}
