package filters

import "github.com/soypat/pixfx"

// NewZeroFirstChannel creates a filter that clears the first channel of every
// pixel. It is the CPU reference of [NewZeroFirstChannelGPU].
func NewZeroFirstChannel(shape pixfx.Shape) *PointFilter {
	c := shape.Channels()
	return &PointFilter{
		In:  shape,
		Out: shape,
		Fn: func(dst, src []byte) {
			copy(dst, src)
			for i := 0; i < len(dst); i += c {
				dst[i] = 0
			}
		},
	}
}
