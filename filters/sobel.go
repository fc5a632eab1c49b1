package filters

import (
	"math"

	"github.com/soypat/pixfx"
)

var (
	sobelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// NewSobelEdge creates a Sobel gradient magnitude filter over the gray
// level of the 3x3 neighborhood. The magnitude is broadcast to the color channels.
func NewSobelEdge(shape pixfx.Shape) *NeighborhoodFilter {
	c := shape.Channels()
	return &NeighborhoodFilter{
		Shape:  shape,
		Radius: 1,
		Fn: func(dst []byte, src *pixfx.Buffer, x0, y int) {
			for i := 0; i < len(dst); i += c {
				x := x0 + i/c
				var gx, gy int
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						px := src.ClampedAt(x+kx, y+ky)
						g := int(gray(px[:], c))
						gx += g * sobelX[ky+1][kx+1]
						gy += g * sobelY[ky+1][kx+1]
					}
				}
				mag := clampRound(math.Sqrt(float64(gx*gx + gy*gy)))
				center := src.ClampedAt(x, y)
				broadcast(dst[i:], center[:], c, mag)
			}
		},
	}
}
