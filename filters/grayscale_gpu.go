package filters

import "github.com/cogentcore/webgpu/wgpu"

const grayscaleTransform = `
fn transform(c: vec4<f32>) -> vec4<f32> {
    let gray = (c.r + c.g + c.b) / 3.0;
    return vec4<f32>(gray, gray, gray, c.a);
}
`

// GrayscaleFilterGPU is the GPU counterpart of [NewGrayscale]. Results may
// differ from the CPU filter by one level due to float rounding.
type GrayscaleFilterGPU struct {
	PointFilterGPU
}

// NewGrayscaleGPU creates a GPU-accelerated channel mean grayscale filter.
func NewGrayscaleGPU(device *wgpu.Device, queue *wgpu.Queue) (*GrayscaleFilterGPU, error) {
	f := &GrayscaleFilterGPU{}
	if err := f.Init(device, queue, "grayscale-gpu", grayscaleTransform); err != nil {
		return nil, err
	}
	return f, nil
}
