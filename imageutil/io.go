package imageutil

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ReadFromFile decodes the image at path into a PixelBuffer.
// Supports PNG, JPEG, GIF, BMP, TIFF and WebP.
func ReadFromFile(path string) (*PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads any registered image format from r.
func Decode(r io.Reader) (*PixelBuffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImageFormat, err)
		}
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return PixelBufferFromImage(img), nil
}

// WriteToFile encodes b to path. The format follows the extension
// (png, jpg/jpeg, gif, bmp, tif/tiff); anything else is written as PNG.
func WriteToFile(b *PixelBuffer, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()
	if err := Encode(f, b, filepath.Ext(path)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// Encode writes b to w in the format named by ext, e.g. ".png".
func Encode(w io.Writer, b *PixelBuffer, ext string) error {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, b.RGBA, &jpeg.Options{Quality: 95})
	case ".gif":
		return gif.Encode(w, b.RGBA, nil)
	case ".bmp":
		return bmp.Encode(w, b.RGBA)
	case ".tif", ".tiff":
		return tiff.Encode(w, b.RGBA, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, b.RGBA)
	}
}
