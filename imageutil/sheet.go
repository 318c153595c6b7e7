package imageutil

import (
	"fmt"
	"image"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Panel is one captioned image of a contact sheet.
type Panel struct {
	Label string
	Image *PixelBuffer
}

// SheetOptions control the contact sheet layout.
type SheetOptions struct {
	Columns    int
	Padding    int
	FontSize   float64
	Background Pixel
	Foreground Pixel
}

// DefaultSheetOptions returns a dark sheet with four columns.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{
		Columns:    4,
		Padding:    8,
		FontSize:   14,
		Background: Pixel{R: 32, G: 32, B: 32, A: 255},
		Foreground: Pixel{R: 230, G: 230, B: 230, A: 255},
	}
}

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// ContactSheet lays panels out in a grid, each cell sized to the largest
// panel with its label rendered underneath.
func ContactSheet(panels []Panel, opts SheetOptions) (*PixelBuffer, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("contact sheet needs at least one panel")
	}
	ttf, err := loadLabelFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", err)
	}

	cols := max(1, min(opts.Columns, len(panels)))
	rows := (len(panels) + cols - 1) / cols
	var cell Size
	for _, p := range panels {
		cell.Width = max(cell.Width, p.Image.Width())
		cell.Height = max(cell.Height, p.Image.Height())
	}
	labelHeight := int(opts.FontSize*1.5) + opts.Padding

	cellW := cell.Width + opts.Padding
	cellH := cell.Height + labelHeight + opts.Padding
	sheet := NewFilledBuffer(cols*cellW+opts.Padding, rows*cellH+opts.Padding, opts.Background)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(opts.FontSize)
	ctx.SetClip(sheet.Bounds())
	ctx.SetDst(sheet.RGBA)
	ctx.SetSrc(image.NewUniform(opts.Foreground))
	ctx.SetHinting(font.HintingFull)

	for i, p := range panels {
		origin := Pt(opts.Padding+(i%cols)*cellW, opts.Padding+(i/cols)*cellH)
		sheet.Paste(p.Image, origin)
		baseline := origin.Y + cell.Height + int(opts.FontSize) + opts.Padding/2
		if _, err := ctx.DrawString(p.Label, freetype.Pt(origin.X, baseline)); err != nil {
			return nil, fmt.Errorf("failed to draw label %q: %w", p.Label, err)
		}
	}
	return sheet, nil
}
