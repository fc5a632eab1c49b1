package filters

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPU holds a WebGPU device shared by accelerated filters.
type GPU struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
}

// OpenGPU requests a low power adapter and device. It fails when WebGPU is unavailable.
func OpenGPU() (*GPU, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, errors.New("webgpu not available")
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceLowPower,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	return &GPU{Device: device, Queue: device.GetQueue()}, nil
}

// Release frees the device.
func (g *GPU) Release() {
	if g.Queue != nil {
		g.Queue.Release()
	}
	if g.Device != nil {
		g.Device.Release()
	}
}
