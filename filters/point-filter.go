package filters

import (
	"errors"
	"image"

	"github.com/soypat/pixfx"
)

var (
	errShapeMismatch  = errors.New("pixel shape mismatch")
	errNilPixelFunc   = errorString("nil PointFunc")
	errWholeImageOnly = errorString("filter requires the whole image and does not accept a ROI")
)

// PointFunc processes a contiguous row of pixels.
// dst and src contain rowWidth pixels worth of bytes.
// The function should iterate through pixels: for i := 0; i < len(src); i += bytesPerPixel { ... }
type PointFunc func(dst, src []byte)

// PointFilter applies a per-pixel transformation using a callback function.
// It handles the iteration, buffering, and ROI logic common to all per-pixel filters.
// The callback is invoked once per row with contiguous pixel data.
type PointFilter struct {
	In    pixfx.Shape
	Out   pixfx.Shape
	Fn    PointFunc
	Ctrls []pixfx.Control // User-defined controls for this filter.
}

// ShapeIO implements [pixfx.Filter].
func (f *PointFilter) ShapeIO() (output, input pixfx.Shape) {
	return f.Out, f.In
}

// Controls implements [pixfx.Filter].
func (f *PointFilter) Controls() []pixfx.Control {
	return f.Ctrls
}

// Process implements [pixfx.Filter].
func (f *PointFilter) Process(dst []byte, src pixfx.Image, roi *image.Rectangle) (pixfx.Dims, error) {
	if f.Fn == nil {
		return pixfx.Dims{}, errNilPixelFunc
	}
	outShape, inShape := f.ShapeIO()
	srcDims := src.Dims()
	if srcDims.Shape != inShape {
		return pixfx.Dims{}, errShapeMismatch
	}
	dstDims, startX, startY, endX, endY := outputRegion(srcDims, outShape, roi)
	dst, _, err := pixfx.ValidateProcessArgs(dst, dstDims, src, roi)
	if err != nil {
		return pixfx.Dims{}, err
	}
	inBytesPerPixel := inShape.Channels()
	srcRowBytes := srcDims.SizeRow()
	rowBuf := make([]byte, srcRowBytes) // Fallback buffer for non-buffered sources.
	for y := startY; y < endY; y++ {
		srcRow, err := pixfx.ImageRow(rowBuf, src, y)
		if err != nil {
			return pixfx.Dims{}, err
		}
		dstRowStart := (y - startY) * dstDims.Stride
		f.Fn(dst[dstRowStart:dstRowStart+dstDims.Stride], srcRow[startX*inBytesPerPixel:endX*inBytesPerPixel])
	}
	return dstDims, nil
}

// outputRegion returns the packed output dimensions and the source region written for roi.
func outputRegion(srcDims pixfx.Dims, outShape pixfx.Shape, roi *image.Rectangle) (dstDims pixfx.Dims, startX, startY, endX, endY int) {
	endX, endY = srcDims.Width, srcDims.Height
	if roi != nil {
		startX, startY = roi.Min.X, roi.Min.Y
		endX, endY = roi.Max.X, roi.Max.Y
	}
	outWidth := endX - startX
	dstDims = pixfx.Dims{
		Width:  outWidth,
		Height: endY - startY,
		Stride: outWidth * outShape.Channels(),
		Shape:  outShape,
	}
	return dstDims, startX, startY, endX, endY
}

type errorString string

func (e errorString) Error() string { return string(e) }
