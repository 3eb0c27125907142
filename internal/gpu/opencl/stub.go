//go:build !opencl_gpu

package opencl

import "context"

// ListPlatforms always fails without the opencl_gpu build tag: the
// binary was built without the purego OpenCL bindings compiled in, so
// there's nothing to enumerate.
func ListPlatforms() ([]Platform, error) {
	return nil, ErrGPUUnavailable
}

// Device is an opaque handle in stub builds; there is no real device to
// bind to.
type Device struct{}

// Open always fails without the opencl_gpu build tag.
func Open(platform PlatformID, device DeviceID) (*Device, error) {
	return nil, ErrGPUUnavailable
}

// DotProduct always fails without the opencl_gpu build tag.
func (d *Device) DotProduct(ctx context.Context, query, matrix, result []float32, numDims int) error {
	return ErrGPUUnavailable
}

// DotProductTiled always fails without the opencl_gpu build tag.
func (d *Device) DotProductTiled(ctx context.Context, query, matrixT, result []float32, numDims, numRows int) error {
	return ErrGPUUnavailable
}

// Close is a no-op in stub builds.
func (d *Device) Close() error {
	return nil
}
