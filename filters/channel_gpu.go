package filters

import "github.com/cogentcore/webgpu/wgpu"

const zeroFirstChannelTransform = `
fn transform(c: vec4<f32>) -> vec4<f32> {
    return vec4<f32>(0.0, c.g, c.b, c.a);
}
`

// ZeroFirstChannelGPU clears the red channel of every pixel on the GPU.
// Gray images reach it broadcast to RGBA, so after conversion back to gray a
// pixel v becomes (0+v+v)/3 instead of the 0 written by [NewZeroFirstChannel].
type ZeroFirstChannelGPU struct {
	PointFilterGPU
}

// NewZeroFirstChannelGPU creates the GPU counterpart of [NewZeroFirstChannel].
func NewZeroFirstChannelGPU(device *wgpu.Device, queue *wgpu.Queue) (*ZeroFirstChannelGPU, error) {
	f := &ZeroFirstChannelGPU{}
	if err := f.Init(device, queue, "zero-first-channel-gpu", zeroFirstChannelTransform); err != nil {
		return nil, err
	}
	return f, nil
}
