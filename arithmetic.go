package pixelpipe

import (
	"fmt"

	"github.com/wbrown/pixelpipe/imageutil"
	"github.com/wbrown/pixelpipe/progress"
)

// Add saturates the per-channel sum of the input and Operand, alpha
// included. Operand must match the input size. A nil Operand adds Color to
// every pixel instead.
type Add struct {
	Operand *imageutil.PixelBuffer
	Color   Pixel
}

func (a *Add) Name() string { return "add" }

func (a *Add) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	return combine(b, a.Operand, a.Color, p, func(x, y uint8) uint8 {
		return uint8(min(int(x)+int(y), 255))
	})
}

// Subtract saturates the per-channel difference of the input and Operand
// at zero, alpha included. Operand and Color work as for Add.
type Subtract struct {
	Operand *imageutil.PixelBuffer
	Color   Pixel
}

func (s *Subtract) Name() string { return "subtract" }

func (s *Subtract) Process(b *imageutil.PixelBuffer, p *progress.Progress) (*imageutil.PixelBuffer, error) {
	return combine(b, s.Operand, s.Color, p, func(x, y uint8) uint8 {
		return uint8(max(int(x)-int(y), 0))
	})
}

// combine replaces every byte of b with op(byte, operand byte), reading the
// operand from other when it is set and from c otherwise.
func combine(b, other *imageutil.PixelBuffer, c Pixel, p *progress.Progress, op func(x, y uint8) uint8) (*imageutil.PixelBuffer, error) {
	if other != nil && other.Size() != b.Size() {
		return nil, fmt.Errorf("%w: operand is %dx%d, image is %dx%d", ErrInvalidImageFormat,
			other.Width(), other.Height(), b.Width(), b.Height())
	}
	constant := [4]uint8{c.R, c.G, c.B, c.A}
	p.Setup(b.Height())
	b.ParForEachRow(func(y int, row []uint8) {
		for i := range row {
			v := constant[i%4]
			if other != nil {
				v = other.Pix[y*other.Stride+i]
			}
			row[i] = op(row[i], v)
		}
	}, p, imageutil.FullOffset(b.Size()))
	return b, nil
}
