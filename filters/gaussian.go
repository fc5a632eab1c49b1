package filters

import (
	"math"

	"github.com/soypat/pixfx"
)

// gaussianWeights holds the hand-tuned blur weights. They sum to 0.987 and are
// normalized when a filter is built.
var gaussianWeights = [5][5]float64{
	{0.003, 0.013, 0.022, 0.013, 0.003},
	{0.013, 0.059, 0.097, 0.059, 0.013},
	{0.022, 0.097, 0.159, 0.097, 0.022},
	{0.013, 0.059, 0.097, 0.059, 0.013},
	{0.003, 0.013, 0.022, 0.013, 0.003},
}

func normalizeKernel(k [5][5]float64) [5][5]float64 {
	var sum float64
	for _, row := range k {
		for _, w := range row {
			sum += w
		}
	}
	for i := range k {
		for j := range k[i] {
			k[i][j] /= sum
		}
	}
	return k
}

// NewGaussianBlur creates a 5x5 blur. Color channels are convolved, alpha is
// taken from the center pixel.
func NewGaussianBlur(shape pixfx.Shape) *NeighborhoodFilter {
	kernel := normalizeKernel(gaussianWeights)
	c := shape.Channels()
	cc := shape.ColorChannels()
	return &NeighborhoodFilter{
		Shape:  shape,
		Radius: 2,
		Fn: func(dst []byte, src *pixfx.Buffer, x0, y int) {
			for i := 0; i < len(dst); i += c {
				x := x0 + i/c
				var sum [3]float64
				for ky := -2; ky <= 2; ky++ {
					for kx := -2; kx <= 2; kx++ {
						px := src.ClampedAt(x+kx, y+ky)
						w := kernel[ky+2][kx+2]
						for ch := 0; ch < cc; ch++ {
							sum[ch] += float64(px[ch]) * w
						}
					}
				}
				for ch := 0; ch < cc; ch++ {
					dst[i+ch] = clampRound(sum[ch])
				}
				if c == 4 {
					dst[i+3] = src.ClampedAt(x, y)[3]
				}
			}
		},
	}
}

func clampRound(v float64) uint8 {
	return uint8(min(max(math.Round(v), 0), 255))
}
