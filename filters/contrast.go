package filters

import "github.com/soypat/pixfx"

const (
	// ContrastIdentity is the contrast level that leaves images unchanged.
	ContrastIdentity = 100
	ContrastMin      = 0
	ContrastMax      = 200
)

// ContrastFactor returns the contrast scaling factor for level in [0,200].
//
//	factor = 259*(adj+255) / (255*(259-adj)), adj = level-100
func ContrastFactor(level int) float64 {
	adj := float64(level - ContrastIdentity)
	return (259 * (adj + 255)) / (255 * (259 - adj))
}

// contrastLUT maps every sample value through the contrast curve of level.
func contrastLUT(level int) (lut [256]uint8) {
	factor := ContrastFactor(level)
	for c := range lut {
		v := int(factor*float64(c-128) + 128)
		lut[c] = uint8(min(max(v, 0), 255))
	}
	return lut
}

// NewContrast creates a contrast adjustment filter. Level ranges 0..200
// with 100 being identity; values outside are clamped.
func NewContrast(shape pixfx.Shape, level int) *PointFilter {
	c := shape.Channels()
	cc := shape.ColorChannels()
	ctrl := &pixfx.ControlOrdered[int]{
		Name:        "Level",
		Description: "Contrast level, 100 leaves the image unchanged",
		Min:         ContrastMin,
		Max:         ContrastMax,
		Step:        1,
	}
	ctrl.Value = ctrl.Clamp(level)
	lut := contrastLUT(ctrl.Value)
	ctrl.OnChange = func(level int) error {
		lut = contrastLUT(level)
		return nil
	}
	return &PointFilter{
		In:  shape,
		Out: shape,
		Fn: func(dst, src []byte) {
			for i := 0; i < len(src); i += c {
				for ch := 0; ch < cc; ch++ {
					dst[i+ch] = lut[src[i+ch]]
				}
				if c == 4 {
					dst[i+3] = src[i+3]
				}
			}
		},
		Ctrls: []pixfx.Control{ctrl},
	}
}
