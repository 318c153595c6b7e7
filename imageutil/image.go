// Package imageutil holds the pixel-level machinery of pixelpipe: the
// RGBA8 PixelBuffer with its serial and parallel traversals, kernels and
// convolution, the gradient engine and the stages of the Canny detector.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Pixel is one RGBA8 pixel as stored in a PixelBuffer.
type Pixel = color.RGBA

// LinearRGBA is the normalized linear-light view of a Pixel. Colour channels
// are decoded from sRGB, alpha is a plain 0..1 scale. It is derived on read
// and encoded on write, a PixelBuffer never stores it.
type LinearRGBA struct {
	R, G, B, A float32
}

// PixelBuffer wraps image.RGBA anchored at the origin, so Pix is a
// contiguous row-major buffer of exactly Width*Height*4 bytes.
type PixelBuffer struct {
	*image.RGBA
}

// NewPixelBuffer returns a zero-filled buffer; every pixel is transparent
// black.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("imageutil: negative buffer size %dx%d", width, height))
	}
	return &PixelBuffer{RGBA: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// NewFilledBuffer returns a buffer with every pixel set to p.
func NewFilledBuffer(width, height int, p Pixel) *PixelBuffer {
	b := NewPixelBuffer(width, height)
	b.Fill(p)
	return b
}

// PixelBufferFromImage converts any image.Image to a PixelBuffer.
func PixelBufferFromImage(img image.Image) *PixelBuffer {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) &&
		rgba.Stride == 4*rgba.Rect.Dx() {
		return &PixelBuffer{RGBA: rgba}
	}
	bounds := img.Bounds()
	b := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	draw.Draw(b.RGBA, b.Rect, img, bounds.Min, draw.Src)
	return b
}

// PixelBufferFromBytes wraps raw row-major RGBA8 bytes. The slice is used
// directly, not copied.
func PixelBufferFromBytes(width, height int, data []byte) (*PixelBuffer, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrInvalidImageFormat, width, height)
	}
	if want := width * height * 4; len(data) != want {
		return nil, fmt.Errorf("%w: %dx%d RGBA needs %d bytes, got %d",
			ErrInvalidImageFormat, width, height, want, len(data))
	}
	return &PixelBuffer{RGBA: &image.RGBA{
		Pix:    data,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}}, nil
}

// Width returns the buffer width.
func (b *PixelBuffer) Width() int {
	return b.Rect.Dx()
}

// Height returns the buffer height.
func (b *PixelBuffer) Height() int {
	return b.Rect.Dy()
}

// Size returns the buffer dimensions.
func (b *PixelBuffer) Size() Size {
	return Size{Width: b.Width(), Height: b.Height()}
}

// Bytes returns the underlying RGBA8 data.
func (b *PixelBuffer) Bytes() []byte {
	return b.Pix
}

func (b *PixelBuffer) offset(c Coord) int {
	if !c.InBounds(b.Size()) {
		panic(fmt.Sprintf("imageutil: coordinate %v outside %dx%d buffer", c, b.Width(), b.Height()))
	}
	return c.Y*b.Stride + c.X*4
}

// Pixel returns the pixel at c. c must lie inside the buffer.
func (b *PixelBuffer) Pixel(c Coord) Pixel {
	i := b.offset(c)
	s := b.Pix[i : i+4 : i+4]
	return Pixel{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// SetPixel stores p at c. c must lie inside the buffer.
func (b *PixelBuffer) SetPixel(c Coord, p Pixel) {
	i := b.offset(c)
	s := b.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = p.R, p.G, p.B, p.A
}

// Linear returns the linear-light view of the pixel at c.
func (b *PixelBuffer) Linear(c Coord) LinearRGBA {
	return ToLinear(b.Pixel(c))
}

// SetLinear encodes l back to sRGB and stores it at c.
func (b *PixelBuffer) SetLinear(c Coord, l LinearRGBA) {
	b.SetPixel(c, FromLinear(l))
}

// Fill sets every pixel to p.
func (b *PixelBuffer) Fill(p Pixel) {
	for i := 0; i+3 < len(b.Pix); i += 4 {
		b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = p.R, p.G, p.B, p.A
	}
}

// Clone creates a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	clone := NewPixelBuffer(b.Width(), b.Height())
	copy(clone.Pix, b.Pix)
	return clone
}

// Equal reports whether both buffers have the same size and bytes.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	return b.Size() == o.Size() && bytes.Equal(b.Pix, o.Pix)
}

// SubBuffer copies the w x h rectangle whose top-left corner is at origin
// into a new buffer. The rectangle must lie inside b.
func (b *PixelBuffer) SubBuffer(origin Coord, size Size) *PixelBuffer {
	if origin.X < 0 || origin.Y < 0 || size.Width < 0 || size.Height < 0 ||
		origin.X+size.Width > b.Width() || origin.Y+size.Height > b.Height() {
		panic(fmt.Sprintf("imageutil: rectangle %v+%v outside %dx%d buffer",
			origin, size, b.Width(), b.Height()))
	}
	out := NewPixelBuffer(size.Width, size.Height)
	for y := 0; y < size.Height; y++ {
		src := (origin.Y+y)*b.Stride + origin.X*4
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], b.Pix[src:src+size.Width*4])
	}
	return out
}

// Paste copies src into b with its top-left corner at origin. src must fit.
func (b *PixelBuffer) Paste(src *PixelBuffer, origin Coord) {
	if origin.X < 0 || origin.Y < 0 ||
		origin.X+src.Width() > b.Width() || origin.Y+src.Height() > b.Height() {
		panic(fmt.Sprintf("imageutil: cannot paste %dx%d at %v into %dx%d buffer",
			src.Width(), src.Height(), origin, b.Width(), b.Height()))
	}
	for y := 0; y < src.Height(); y++ {
		dst := (origin.Y+y)*b.Stride + origin.X*4
		copy(b.Pix[dst:dst+src.Width()*4], src.Pix[y*src.Stride:(y+1)*src.Stride])
	}
}
