//go:build opencl_gpu

package opencl

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

// OpenCL C API constants this package actually uses. Named after their
// upstream cl.h counterparts rather than renumbered, so anyone cross
// referencing the Khronos headers can follow along directly.
const (
	clDeviceTypeAll = 0xFFFFFFFF

	clPlatformName    = 0x0902
	clPlatformVersion = 0x0901
	clPlatformProfile = 0x0900

	clDeviceName = 0x102B

	clMemReadOnly  = 1 << 2
	clMemWriteOnly = 1 << 1
	clMemReadWrite = 1 << 0

	clTrue  = 1
	clFalse = 0

	clSuccess = 0
)

var (
	libOnce   sync.Once
	libHandle uintptr
	libErr    error

	clGetPlatformIDs        func(numEntries uint32, platforms *uintptr, numPlatforms *uint32) int32
	clGetPlatformInfo       func(platform uintptr, paramName uint32, paramValueSize uintptr, paramValue uintptr, paramValueSizeRet *uintptr) int32
	clGetDeviceIDs          func(platform uintptr, deviceType uint64, numEntries uint32, devices *uintptr, numDevices *uint32) int32
	clGetDeviceInfo         func(device uintptr, paramName uint32, paramValueSize uintptr, paramValue uintptr, paramValueSizeRet *uintptr) int32
	clCreateContext         func(properties uintptr, numDevices uint32, devices *uintptr, pfnNotify uintptr, userData uintptr, errcodeRet *int32) uintptr
	clCreateCommandQueue    func(context uintptr, device uintptr, properties uint64, errcodeRet *int32) uintptr
	clCreateBuffer          func(context uintptr, flags uint64, size uintptr, hostPtr uintptr, errcodeRet *int32) uintptr
	clCreateProgramWithSrc  func(context uintptr, count uint32, strings *uintptr, lengths *uintptr, errcodeRet *int32) uintptr
	clBuildProgram          func(program uintptr, numDevices uint32, deviceList *uintptr, options uintptr, pfnNotify uintptr, userData uintptr) int32
	clCreateKernel          func(program uintptr, kernelName uintptr, errcodeRet *int32) uintptr
	clSetKernelArg          func(kernel uintptr, argIndex uint32, argSize uintptr, argValue uintptr) int32
	clEnqueueWriteBuffer    func(queue uintptr, buffer uintptr, blocking uint32, offset uintptr, size uintptr, ptr uintptr, numEvents uint32, waitList *uintptr, event *uintptr) int32
	clEnqueueNDRangeKernel  func(queue uintptr, kernel uintptr, workDim uint32, globalOffset *uintptr, globalSize *uintptr, localSize *uintptr, numEvents uint32, waitList *uintptr, event *uintptr) int32
	clEnqueueReadBuffer     func(queue uintptr, buffer uintptr, blocking uint32, offset uintptr, size uintptr, ptr uintptr, numEvents uint32, waitList *uintptr, event *uintptr) int32
	clWaitForEvents         func(numEvents uint32, eventList *uintptr) int32
	clReleaseMemObject      func(mem uintptr) int32
	clReleaseKernel         func(kernel uintptr) int32
	clReleaseProgram        func(program uintptr) int32
	clReleaseCommandQueue   func(queue uintptr) int32
	clReleaseContext        func(ctx uintptr) int32
	clReleaseEvent          func(event uintptr) int32
)

// libraryPath is where purego looks for the system OpenCL ICD loader,
// the same "well-known system path" approach as the teacher's
// cmd/purego-test verification binary.
func libraryPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "/System/Library/Frameworks/OpenCL.framework/OpenCL"
	default:
		return "libOpenCL.so.1"
	}
}

// loadLibrary opens the OpenCL ICD loader and binds every function this
// package calls, exactly once per process.
func loadLibrary() error {
	libOnce.Do(func() {
		libHandle, libErr = purego.Dlopen(libraryPath(), purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if libErr != nil {
			return
		}
		purego.RegisterLibFunc(&clGetPlatformIDs, libHandle, "clGetPlatformIDs")
		purego.RegisterLibFunc(&clGetPlatformInfo, libHandle, "clGetPlatformInfo")
		purego.RegisterLibFunc(&clGetDeviceIDs, libHandle, "clGetDeviceIDs")
		purego.RegisterLibFunc(&clGetDeviceInfo, libHandle, "clGetDeviceInfo")
		purego.RegisterLibFunc(&clCreateContext, libHandle, "clCreateContext")
		purego.RegisterLibFunc(&clCreateCommandQueue, libHandle, "clCreateCommandQueue")
		purego.RegisterLibFunc(&clCreateBuffer, libHandle, "clCreateBuffer")
		purego.RegisterLibFunc(&clCreateProgramWithSrc, libHandle, "clCreateProgramWithSource")
		purego.RegisterLibFunc(&clBuildProgram, libHandle, "clBuildProgram")
		purego.RegisterLibFunc(&clCreateKernel, libHandle, "clCreateKernel")
		purego.RegisterLibFunc(&clSetKernelArg, libHandle, "clSetKernelArg")
		purego.RegisterLibFunc(&clEnqueueWriteBuffer, libHandle, "clEnqueueWriteBuffer")
		purego.RegisterLibFunc(&clEnqueueNDRangeKernel, libHandle, "clEnqueueNDRangeKernel")
		purego.RegisterLibFunc(&clEnqueueReadBuffer, libHandle, "clEnqueueReadBuffer")
		purego.RegisterLibFunc(&clWaitForEvents, libHandle, "clWaitForEvents")
		purego.RegisterLibFunc(&clReleaseMemObject, libHandle, "clReleaseMemObject")
		purego.RegisterLibFunc(&clReleaseKernel, libHandle, "clReleaseKernel")
		purego.RegisterLibFunc(&clReleaseProgram, libHandle, "clReleaseProgram")
		purego.RegisterLibFunc(&clReleaseCommandQueue, libHandle, "clReleaseCommandQueue")
		purego.RegisterLibFunc(&clReleaseContext, libHandle, "clReleaseContext")
		purego.RegisterLibFunc(&clReleaseEvent, libHandle, "clReleaseEvent")
	})
	return libErr
}

func clError(code int32, op string) error {
	if code == clSuccess {
		return nil
	}
	return fmt.Errorf("opencl: %s failed: code %d", op, code)
}
