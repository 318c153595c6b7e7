// Package opencv runs selected filters through OpenCV. It requires OpenCV
// to be installed (see gocv.io). Pixels cross the boundary as Frames of
// normalized float32 RGBA; any failure on the native side is reported as
// pixelpipe.ErrGpuBackend and is never retried on the CPU.
package opencv

import (
	"fmt"
	"unsafe"

	"gocv.io/x/gocv"

	"github.com/wbrown/pixelpipe"
	"github.com/wbrown/pixelpipe/imageutil"
)

// FrameSize is the pixel size of a Frame.
type FrameSize struct {
	Width, Height int32
}

// Frame is an RGBA image with channels in [0,1], four floats per pixel in
// row-major order.
type Frame struct {
	Data []float32
	Size FrameSize
}

// MarshalFrame converts b to a Frame.
func MarshalFrame(b *imageutil.PixelBuffer) Frame {
	f := Frame{
		Data: make([]float32, b.Width()*b.Height()*4),
		Size: FrameSize{Width: int32(b.Width()), Height: int32(b.Height())},
	}
	for i, v := range b.Bytes() {
		f.Data[i] = float32(v) / 255
	}
	return f
}

// Unmarshal converts f back to 8-bit pixels, clamping and rounding each
// channel.
func (f Frame) Unmarshal() (*imageutil.PixelBuffer, error) {
	w, h := int(f.Size.Width), int(f.Size.Height)
	if w < 0 || h < 0 || len(f.Data) != w*h*4 {
		return nil, fmt.Errorf("%w: %d floats for a %dx%d frame", pixelpipe.ErrInvalidImageFormat, len(f.Data), w, h)
	}
	b := imageutil.NewPixelBuffer(w, h)
	for i, v := range f.Data {
		b.Pix[i] = imageutil.ClampUint8(float64(v) * 255)
	}
	return b, nil
}

// Mat returns a native copy of f. The caller owns the Mat and must Close it
// exactly once.
func (f Frame) Mat() (gocv.Mat, error) {
	rows, cols := int(f.Size.Height), int(f.Size.Width)
	if rows <= 0 || cols <= 0 || len(f.Data) != rows*cols*4 {
		return gocv.Mat{}, fmt.Errorf("%w: cannot build a %dx%d mat from %d floats",
			pixelpipe.ErrInvalidImageFormat, cols, rows, len(f.Data))
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&f.Data[0])), len(f.Data)*4)
	view, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV32FC4, raw)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", pixelpipe.ErrGpuBackend, err)
	}
	defer view.Close()
	owned := view.Clone()
	if owned.Empty() {
		owned.Close()
		return gocv.Mat{}, fmt.Errorf("%w: cloning %dx%d mat", pixelpipe.ErrGpuBackend, cols, rows)
	}
	return owned, nil
}

// frameFromMat copies a CV_32FC4 mat back into a Frame.
func frameFromMat(m gocv.Mat) (Frame, error) {
	if m.Empty() || m.Type() != gocv.MatTypeCV32FC4 {
		return Frame{}, fmt.Errorf("%w: unexpected result mat of type %v", pixelpipe.ErrGpuBackend, m.Type())
	}
	data, err := m.DataPtrFloat32()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", pixelpipe.ErrGpuBackend, err)
	}
	return Frame{
		Data: append([]float32(nil), data...),
		Size: FrameSize{Width: int32(m.Cols()), Height: int32(m.Rows())},
	}, nil
}

// withMat hands fn a native copy of f and closes it when fn returns, on
// every path.
func withMat(f Frame, fn func(src gocv.Mat) error) error {
	m, err := f.Mat()
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
