package filters

import (
	"image"

	"github.com/soypat/pixfx"
)

// NeighborFunc computes the pixels of row y starting at column x0 into dst.
// dst holds len(dst)/channels pixels. src is the complete input image and
// must only be read through clamped access so edges never read out of bounds.
type NeighborFunc func(dst []byte, src *pixfx.Buffer, x0, y int)

// NeighborhoodFilter applies a fixed-radius neighborhood operation such as a
// convolution. Writes are limited to the ROI while reads always see the
// whole source image, so the output of a ROI does not depend on how the
// image was partitioned.
type NeighborhoodFilter struct {
	Shape  pixfx.Shape
	Radius int
	Fn     NeighborFunc
	Ctrls  []pixfx.Control
}

// ShapeIO implements [pixfx.Filter].
func (f *NeighborhoodFilter) ShapeIO() (output, input pixfx.Shape) {
	return f.Shape, f.Shape
}

// Controls implements [pixfx.Filter].
func (f *NeighborhoodFilter) Controls() []pixfx.Control { return f.Ctrls }

// Process implements [pixfx.Filter].
func (f *NeighborhoodFilter) Process(dst []byte, src pixfx.Image, roi *image.Rectangle) (pixfx.Dims, error) {
	if f.Fn == nil {
		return pixfx.Dims{}, errNilPixelFunc
	}
	srcDims := src.Dims()
	if srcDims.Shape != f.Shape {
		return pixfx.Dims{}, errShapeMismatch
	}
	dstDims, startX, startY, _, endY := outputRegion(srcDims, f.Shape, roi)
	dst, _, err := pixfx.ValidateProcessArgs(dst, dstDims, src, roi)
	if err != nil {
		return pixfx.Dims{}, err
	}
	full, err := wholeBuffer(src)
	if err != nil {
		return pixfx.Dims{}, err
	}
	for y := startY; y < endY; y++ {
		off := (y - startY) * dstDims.Stride
		f.Fn(dst[off:off+dstDims.Stride], full, startX, y)
	}
	return dstDims, nil
}

// wholeBuffer returns src as a [pixfx.Buffer], reading it into memory if needed.
func wholeBuffer(src pixfx.Image) (*pixfx.Buffer, error) {
	if b, ok := src.(*pixfx.Buffer); ok {
		return b, nil
	}
	d := src.Dims()
	b, err := pixfx.NewBuffer(d.Width, d.Height, d.Shape)
	if err != nil {
		return nil, err
	}
	rowBuf := make([]byte, d.SizeRow())
	for y := 0; y < d.Height; y++ {
		row, err := pixfx.ImageRow(rowBuf, src, y)
		if err != nil {
			return nil, err
		}
		copy(b.Rows(y, y+1), row)
	}
	return b, nil
}
