package pixfx

import (
	"errors"
	"image"
)

// Convert returns b in the requested channel layout. If shape already
// matches b is returned as is.
//
// Gray is broadcast to RGB, RGB is reduced to gray by (r+g+b)/3.
// Added alpha channels are opaque and removed alpha channels are dropped.
func (b *Buffer) Convert(shape Shape) (*Buffer, error) {
	if shape == b.shape {
		return b, nil
	}
	dst, err := NewBuffer(b.width, b.height, shape)
	if err != nil {
		return nil, err
	}
	sc, dc := b.shape.Channels(), shape.Channels()
	src := b.pix
	out := dst.pix
	for i, j := 0, 0; i < len(src); i, j = i+sc, j+dc {
		var r, g, bl, a uint8 = src[i], src[i], src[i], 255
		if sc >= 3 {
			g, bl = src[i+1], src[i+2]
		}
		if sc == 4 {
			a = src[i+3]
		}
		switch dc {
		case 1:
			out[j] = uint8((uint32(r) + uint32(g) + uint32(bl)) / 3)
		case 3:
			out[j], out[j+1], out[j+2] = r, g, bl
		case 4:
			out[j], out[j+1], out[j+2], out[j+3] = r, g, bl, a
		}
	}
	return dst, nil
}

// ToRGBA copies b into a new [image.RGBA].
func (b *Buffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	if b.shape == ShapeRGBA8888 {
		copy(img.Pix, b.pix)
		return img
	}
	rgba, _ := b.Convert(ShapeRGBA8888) // Shape validated on construction.
	copy(img.Pix, rgba.pix)
	return img
}

// FromRGBA copies img into a new buffer of the given shape.
func FromRGBA(img *image.RGBA, shape Shape) (*Buffer, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.New("empty image")
	}
	w, h := bounds.Dx(), bounds.Dy()
	rgba, err := NewBuffer(w, h, ShapeRGBA8888)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		copy(rgba.Rows(y, y+1), row[:w*4])
	}
	return rgba.Convert(shape)
}
