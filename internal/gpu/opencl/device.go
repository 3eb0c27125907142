//go:build opencl_gpu

package opencl

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/sunsided/flatvec/internal/engineerr"
)

// ListPlatforms enumerates every OpenCL platform visible to the ICD
// loader, along with each platform's devices, in the order Open expects
// its platform/device indices to refer to them.
func ListPlatforms() ([]Platform, error) {
	if err := loadLibrary(); err != nil {
		return nil, engineerr.GPUUnavailable(err)
	}

	var count uint32
	if rc := clGetPlatformIDs(0, nil, &count); rc != clSuccess {
		return nil, clError(rc, "clGetPlatformIDs(count)")
	}
	if count == 0 {
		return nil, nil
	}

	ids := make([]uintptr, count)
	if rc := clGetPlatformIDs(count, &ids[0], nil); rc != clSuccess {
		return nil, clError(rc, "clGetPlatformIDs")
	}

	platforms := make([]Platform, 0, count)
	for i, id := range ids {
		name, err := platformInfoString(id, clPlatformName)
		if err != nil {
			return nil, err
		}
		version, err := platformInfoString(id, clPlatformVersion)
		if err != nil {
			return nil, err
		}
		profile, err := platformInfoString(id, clPlatformProfile)
		if err != nil {
			return nil, err
		}

		devices, err := listDevices(id)
		if err != nil {
			return nil, err
		}

		platforms = append(platforms, Platform{
			ID:      PlatformID(i),
			Name:    name,
			Version: version,
			Profile: profile,
			Devices: devices,
		})
	}
	return platforms, nil
}

func listDevices(platform uintptr) ([]DeviceInfo, error) {
	var count uint32
	if rc := clGetDeviceIDs(platform, clDeviceTypeAll, 0, nil, &count); rc != clSuccess {
		return nil, clError(rc, "clGetDeviceIDs(count)")
	}
	if count == 0 {
		return nil, nil
	}

	ids := make([]uintptr, count)
	if rc := clGetDeviceIDs(platform, clDeviceTypeAll, count, &ids[0], nil); rc != clSuccess {
		return nil, clError(rc, "clGetDeviceIDs")
	}

	devices := make([]DeviceInfo, 0, count)
	for i, id := range ids {
		name, err := deviceInfoString(id, clDeviceName)
		if err != nil {
			return nil, err
		}
		devices = append(devices, DeviceInfo{ID: DeviceID(i), Name: name})
	}
	return devices, nil
}

func platformInfoString(platform uintptr, param uint32) (string, error) {
	var size uintptr
	if rc := clGetPlatformInfo(platform, param, 0, 0, &size); rc != clSuccess {
		return "", clError(rc, "clGetPlatformInfo(size)")
	}
	buf := make([]byte, size)
	if size > 0 {
		if rc := clGetPlatformInfo(platform, param, size, uintptr(unsafe.Pointer(&buf[0])), nil); rc != clSuccess {
			return "", clError(rc, "clGetPlatformInfo")
		}
	}
	return trimNulString(buf), nil
}

func deviceInfoString(device uintptr, param uint32) (string, error) {
	var size uintptr
	if rc := clGetDeviceInfo(device, param, 0, 0, &size); rc != clSuccess {
		return "", clError(rc, "clGetDeviceInfo(size)")
	}
	buf := make([]byte, size)
	if size > 0 {
		if rc := clGetDeviceInfo(device, param, size, uintptr(unsafe.Pointer(&buf[0])), nil); rc != clSuccess {
			return "", clError(rc, "clGetDeviceInfo")
		}
	}
	return trimNulString(buf), nil
}

func trimNulString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

func cString(s string) []byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return buf
}

// Device is an opened OpenCL context, command queue, and compiled-program
// cache bound to one platform/device pair. DotProduct may be called
// repeatedly; the program and kernel for a given Variant are built once
// and reused (spec.md §4.J host sequence step 1).
type Device struct {
	platformID uintptr
	deviceID   uintptr
	context    uintptr
	queue      uintptr
	cache      *programCache
}

// Open selects platform and device by their ListPlatforms index and
// creates a context and in-order command queue for them.
func Open(platform PlatformID, device DeviceID) (*Device, error) {
	if err := loadLibrary(); err != nil {
		return nil, engineerr.GPUUnavailable(err)
	}

	platforms, err := ListPlatforms()
	if err != nil {
		return nil, err
	}
	if int(platform) < 0 || int(platform) >= len(platforms) {
		return nil, engineerr.New(engineerr.ErrCodeNoSuchPlatform, fmt.Sprintf("no platform %d", platform), nil)
	}
	p := platforms[platform]
	if int(device) < 0 || int(device) >= len(p.Devices) {
		return nil, engineerr.New(engineerr.ErrCodeNoSuchDevice, fmt.Sprintf("no device %d on platform %d", device, platform), nil)
	}

	platformIDs, err := rawPlatformIDs()
	if err != nil {
		return nil, err
	}
	platformHandle := platformIDs[platform]

	deviceHandles, err := rawDeviceIDs(platformHandle)
	if err != nil {
		return nil, err
	}
	deviceHandle := deviceHandles[device]

	var errcode int32
	ctx := clCreateContext(0, 1, &deviceHandle, 0, 0, &errcode)
	if err := clError(errcode, "clCreateContext"); err != nil {
		return nil, err
	}

	queue := clCreateCommandQueue(ctx, deviceHandle, 0, &errcode)
	if err := clError(errcode, "clCreateCommandQueue"); err != nil {
		clReleaseContext(ctx)
		return nil, err
	}

	return &Device{
		platformID: platformHandle,
		deviceID:   deviceHandle,
		context:    ctx,
		queue:      queue,
		cache:      newProgramCache(),
	}, nil
}

func rawPlatformIDs() ([]uintptr, error) {
	var count uint32
	if rc := clGetPlatformIDs(0, nil, &count); rc != clSuccess {
		return nil, clError(rc, "clGetPlatformIDs(count)")
	}
	ids := make([]uintptr, count)
	if count > 0 {
		if rc := clGetPlatformIDs(count, &ids[0], nil); rc != clSuccess {
			return nil, clError(rc, "clGetPlatformIDs")
		}
	}
	return ids, nil
}

func rawDeviceIDs(platform uintptr) ([]uintptr, error) {
	var count uint32
	if rc := clGetDeviceIDs(platform, clDeviceTypeAll, 0, nil, &count); rc != clSuccess {
		return nil, clError(rc, "clGetDeviceIDs(count)")
	}
	ids := make([]uintptr, count)
	if count > 0 {
		if rc := clGetDeviceIDs(platform, clDeviceTypeAll, count, &ids[0], nil); rc != clSuccess {
			return nil, clError(rc, "clGetDeviceIDs")
		}
	}
	return ids, nil
}

// buildOrReuse returns the compiled program+kernel for variant on this
// device, building it on first use and caching it afterward.
func (d *Device) buildOrReuse(variant Variant) (builtProgram, error) {
	if bp, ok := d.cache.get(DeviceID(0), variant); ok {
		return bp, nil
	}

	source := cString(sourceFor(variant))
	srcPtr := uintptr(unsafe.Pointer(&source[0]))
	length := uintptr(len(source) - 1)

	var errcode int32
	program := clCreateProgramWithSrc(d.context, 1, &srcPtr, &length, &errcode)
	if err := clError(errcode, "clCreateProgramWithSource"); err != nil {
		return builtProgram{}, err
	}

	device := d.deviceID
	if rc := clBuildProgram(program, 1, &device, 0, 0, 0); rc != clSuccess {
		clReleaseProgram(program)
		return builtProgram{}, clError(rc, "clBuildProgram")
	}

	name := cString(string(variant))
	kernel := clCreateKernel(program, uintptr(unsafe.Pointer(&name[0])), &errcode)
	if err := clError(errcode, "clCreateKernel"); err != nil {
		clReleaseProgram(program)
		return builtProgram{}, err
	}

	bp := builtProgram{program: program, kernel: kernel}
	d.cache.put(DeviceID(0), variant, bp)
	return bp, nil
}

// DotProduct scores every row of matrix (a numRows x numDims row-major
// buffer) against query, writing numRows scores into result. It follows
// spec.md §4.J's host sequence: allocate device buffers sized to actual
// use, write inputs, dispatch the kernel waiting on both writes, then
// block only on the final readback. This is the VariantSimple row-major
// kernel; see DotProductTiled for the column-major one.
func (d *Device) DotProduct(ctx context.Context, query, matrix, result []float32, numDims int) error {
	if len(query) != numDims {
		return engineerr.DimensionalityMismatch(numDims, len(query))
	}
	numRows := len(matrix) / numDims
	if numRows*numDims != len(matrix) || len(result) != numRows {
		return fmt.Errorf("opencl: matrix/result size mismatch: %d floats, %d dims, %d results", len(matrix), numDims, len(result))
	}
	return d.dotProduct(ctx, VariantSimple, query, matrix, result, numDims, numRows, false)
}

// DotProductTiled is DotProduct's column-major counterpart: matrixT must
// already be in the layout internal/matrix.AsTransposed produces (numDims
// rows of numRows floats each — row k holds every vector's k'th
// component), which lets the kernel stage the query vector into local
// memory once per work-group instead of re-reading it from global memory
// per row. Callers that can afford the one-time host-side transpose use
// this path instead of DotProduct.
func (d *Device) DotProductTiled(ctx context.Context, query, matrixT, result []float32, numDims, numRows int) error {
	if len(query) != numDims {
		return engineerr.DimensionalityMismatch(numDims, len(query))
	}
	if numRows*numDims != len(matrixT) || len(result) != numRows {
		return fmt.Errorf("opencl: matrixT/result size mismatch: %d floats, %d dims, %d results", len(matrixT), numDims, len(result))
	}
	return d.dotProduct(ctx, VariantTiled, query, matrixT, result, numDims, numRows, true)
}

func (d *Device) dotProduct(ctx context.Context, variant Variant, query, matrix, result []float32, numDims, numRows int, tiled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bp, err := d.buildOrReuse(variant)
	if err != nil {
		return engineerr.New(engineerr.ErrCodeGPUBuildFailed, err.Error(), err)
	}

	matrixBuf, err := d.newBuffer(clMemReadOnly, len(matrix)*4)
	if err != nil {
		return engineerr.New(engineerr.ErrCodeGPUDispatch, err.Error(), err)
	}
	defer clReleaseMemObject(matrixBuf)

	queryBuf, err := d.newBuffer(clMemReadOnly, len(query)*4)
	if err != nil {
		return engineerr.New(engineerr.ErrCodeGPUDispatch, err.Error(), err)
	}
	defer clReleaseMemObject(queryBuf)

	resultBuf, err := d.newBuffer(clMemWriteOnly, len(result)*4)
	if err != nil {
		return engineerr.New(engineerr.ErrCodeGPUDispatch, err.Error(), err)
	}
	defer clReleaseMemObject(resultBuf)

	var writeMatrixEvt, writeQueryEvt uintptr
	if rc := clEnqueueWriteBuffer(d.queue, matrixBuf, clFalse, 0, uintptr(len(matrix)*4), uintptr(unsafe.Pointer(&matrix[0])), 0, nil, &writeMatrixEvt); rc != clSuccess {
		return clError(rc, "clEnqueueWriteBuffer(matrix)")
	}
	defer clReleaseEvent(writeMatrixEvt)

	if rc := clEnqueueWriteBuffer(d.queue, queryBuf, clFalse, 0, uintptr(len(query)*4), uintptr(unsafe.Pointer(&query[0])), 0, nil, &writeQueryEvt); rc != clSuccess {
		return clError(rc, "clEnqueueWriteBuffer(query)")
	}
	defer clReleaseEvent(writeQueryEvt)

	uintArg := func(idx uint32, v uint32) error {
		val := v
		if rc := clSetKernelArg(bp.kernel, idx, 4, uintptr(unsafe.Pointer(&val))); rc != clSuccess {
			return clError(rc, "clSetKernelArg")
		}
		return nil
	}
	memArg := func(idx uint32, mem uintptr) error {
		m := mem
		if rc := clSetKernelArg(bp.kernel, idx, unsafe.Sizeof(m), uintptr(unsafe.Pointer(&m))); rc != clSuccess {
			return clError(rc, "clSetKernelArg")
		}
		return nil
	}
	if err := memArg(0, matrixBuf); err != nil {
		return err
	}
	if err := memArg(1, queryBuf); err != nil {
		return err
	}
	if err := memArg(2, resultBuf); err != nil {
		return err
	}
	if err := uintArg(3, uint32(numRows)); err != nil {
		return err
	}
	if err := uintArg(4, uint32(numDims)); err != nil {
		return err
	}
	if tiled {
		// Local-memory argument: a NULL host pointer with the buffer's
		// byte size tells the runtime to allocate per-work-group local
		// storage instead of binding a host/device buffer.
		if rc := clSetKernelArg(bp.kernel, 5, uintptr(numDims*4), 0); rc != clSuccess {
			return clError(rc, "clSetKernelArg(local)")
		}
	}

	waitList := []uintptr{writeMatrixEvt, writeQueryEvt}
	var kernelEvt uintptr
	globalSize := uintptr(numRows)
	if rc := clEnqueueNDRangeKernel(d.queue, bp.kernel, 1, nil, &globalSize, nil, uint32(len(waitList)), &waitList[0], &kernelEvt); rc != clSuccess {
		return clError(rc, "clEnqueueNDRangeKernel")
	}
	defer clReleaseEvent(kernelEvt)

	var readEvt uintptr
	kernelWait := []uintptr{kernelEvt}
	if rc := clEnqueueReadBuffer(d.queue, resultBuf, clFalse, 0, uintptr(len(result)*4), uintptr(unsafe.Pointer(&result[0])), 1, &kernelWait[0], &readEvt); rc != clSuccess {
		return clError(rc, "clEnqueueReadBuffer")
	}
	defer clReleaseEvent(readEvt)

	if rc := clWaitForEvents(1, &readEvt); rc != clSuccess {
		return clError(rc, "clWaitForEvents")
	}
	return nil
}

func (d *Device) newBuffer(flags uint64, sizeBytes int) (uintptr, error) {
	var errcode int32
	buf := clCreateBuffer(d.context, flags, uintptr(sizeBytes), 0, &errcode)
	if err := clError(errcode, "clCreateBuffer"); err != nil {
		return 0, err
	}
	return buf, nil
}

// Close releases the device's command queue and context. The cached
// programs/kernels are released by the OS when the process exits; an
// explicit release isn't needed for the short-lived CLI processes this
// engine runs as.
func (d *Device) Close() error {
	if rc := clReleaseCommandQueue(d.queue); rc != clSuccess {
		return clError(rc, "clReleaseCommandQueue")
	}
	if rc := clReleaseContext(d.context); rc != clSuccess {
		return clError(rc, "clReleaseContext")
	}
	return nil
}
