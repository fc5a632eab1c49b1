package pixfx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
)

// ErrOutOfRange is returned by strict pixel accessors called outside image bounds.
var ErrOutOfRange = errors.New("pixel coordinate out of range")

// Pixel holds up to 4 channel samples. Only the first Shape.Channels() are meaningful.
type Pixel [4]uint8

// Buffer is a contiguous row-major image in memory with 1, 3 or 4 channels per pixel.
// Rows are tightly packed so len(Buffer()) == Width*Height*Channels.
type Buffer struct {
	width, height int
	shape         Shape
	pix           []byte
}

var _ ImageBuffered = (*Buffer)(nil)

// NewBuffer allocates a zeroed buffer of the given dimensions.
func NewBuffer(width, height int, shape Shape) (*Buffer, error) {
	if err := checkBufferArgs(width, height, shape); err != nil {
		return nil, err
	}
	return &Buffer{
		width:  width,
		height: height,
		shape:  shape,
		pix:    make([]byte, width*height*shape.Channels()),
	}, nil
}

// NewBufferFrom wraps pix without copying. len(pix) must equal width*height*channels.
func NewBufferFrom(width, height int, shape Shape, pix []byte) (*Buffer, error) {
	if err := checkBufferArgs(width, height, shape); err != nil {
		return nil, err
	}
	if want := width * height * shape.Channels(); len(pix) != want {
		return nil, fmt.Errorf("buffer length %d, want %d for %dx%d %s", len(pix), want, width, height, shape)
	}
	return &Buffer{width: width, height: height, shape: shape, pix: pix}, nil
}

func checkBufferArgs(width, height int, shape Shape) error {
	if width <= 0 || height <= 0 {
		return errors.New("empty image")
	} else if shape.Channels() == 0 {
		return errors.New("bad pixel shape")
	}
	return nil
}

// Dims implements [Image].
func (b *Buffer) Dims() Dims {
	return Dims{
		Width:  b.width,
		Height: b.height,
		Stride: b.width * b.shape.Channels(),
		Shape:  b.shape,
	}
}

// ReadAt implements [io.ReaderAt].
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	} else if off >= int64(len(b.pix)) {
		return 0, io.EOF
	}
	n := copy(p, b.pix[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Buffer implements [ImageBuffered].
func (b *Buffer) Buffer() []byte { return b.pix }

func (b *Buffer) Width() int   { return b.width }
func (b *Buffer) Height() int  { return b.height }
func (b *Buffer) Shape() Shape { return b.shape }
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Rows returns the bytes of rows [start, end). The slice aliases the buffer.
func (b *Buffer) Rows(start, end int) []byte {
	stride := b.width * b.shape.Channels()
	return b.pix[start*stride : end*stride]
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.width + x) * b.shape.Channels()
}

// At returns the pixel at (x,y) or [ErrOutOfRange].
func (b *Buffer) At(x, y int) (px Pixel, err error) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return px, ErrOutOfRange
	}
	off := b.offset(x, y)
	copy(px[:], b.pix[off:off+b.shape.Channels()])
	return px, nil
}

// Set writes the pixel at (x,y) or returns [ErrOutOfRange].
func (b *Buffer) Set(x, y int, px Pixel) error {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return ErrOutOfRange
	}
	off := b.offset(x, y)
	copy(b.pix[off:off+b.shape.Channels()], px[:])
	return nil
}

// ClampedAt returns the pixel at (x,y) with coordinates clamped to the image. It never fails.
func (b *Buffer) ClampedAt(x, y int) (px Pixel) {
	x = min(max(x, 0), b.width-1)
	y = min(max(y, 0), b.height-1)
	off := b.offset(x, y)
	copy(px[:], b.pix[off:off+b.shape.Channels()])
	return px
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.pix = bytes.Clone(b.pix)
	return &c
}

// Equal reports whether b and other have identical dimensions, shape and bytes.
func (b *Buffer) Equal(other *Buffer) bool {
	return b.width == other.width && b.height == other.height &&
		b.shape == other.shape && bytes.Equal(b.pix, other.pix)
}
