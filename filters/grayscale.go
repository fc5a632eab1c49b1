package filters

import "github.com/soypat/pixfx"

// gray returns the channel mean (r+g+b)/3 of the pixel starting at px.
// Single channel pixels are their own gray value.
func gray(px []byte, channels int) uint8 {
	if channels < 3 {
		return px[0]
	}
	return uint8((uint32(px[0]) + uint32(px[1]) + uint32(px[2])) / 3)
}

// broadcast writes v to the color channels of dst and copies alpha from src.
func broadcast(dst, src []byte, channels int, v uint8) {
	switch channels {
	case 1:
		dst[0] = v
	case 3:
		dst[0], dst[1], dst[2] = v, v, v
	case 4:
		dst[0], dst[1], dst[2], dst[3] = v, v, v, src[3]
	}
}

// NewGrayscale creates a filter replacing each pixel's color with the
// channel mean (r+g+b)/3. Alpha is preserved.
func NewGrayscale(shape pixfx.Shape) *PointFilter {
	c := shape.Channels()
	return &PointFilter{
		In:  shape,
		Out: shape,
		Fn: func(dst, src []byte) {
			for i := 0; i < len(src); i += c {
				broadcast(dst[i:], src[i:], c, gray(src[i:], c))
			}
		},
	}
}
