package filters

import "github.com/soypat/pixfx"

// DefaultEdgeThreshold is the gray level above which [NewEdgeThreshold] outputs white.
const DefaultEdgeThreshold = 128

// NewEdgeThreshold creates a binarizing filter: pixels whose gray level is
// strictly greater than threshold become 255, all others 0.
func NewEdgeThreshold(shape pixfx.Shape, threshold int) *PointFilter {
	c := shape.Channels()
	ctrl := &pixfx.ControlOrdered[int]{
		Name:        "Threshold",
		Description: "Gray level above which pixels become white",
		Min:         0,
		Max:         255,
		Step:        1,
	}
	ctrl.Value = ctrl.Clamp(threshold)
	return &PointFilter{
		In:  shape,
		Out: shape,
		Fn: func(dst, src []byte) {
			t := ctrl.Value
			for i := 0; i < len(src); i += c {
				var v uint8
				if int(gray(src[i:], c)) > t {
					v = 255
				}
				broadcast(dst[i:], src[i:], c, v)
			}
		},
		Ctrls: []pixfx.Control{ctrl},
	}
}
