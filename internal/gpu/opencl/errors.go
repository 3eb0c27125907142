package opencl

import "github.com/sunsided/flatvec/internal/engineerr"

// ErrGPUUnavailable is returned by every exported function when the
// binary was built without the opencl_gpu tag, or when no OpenCL runtime
// could be loaded on this host. Callers that hit a specific platform
// error get it wrapped via engineerr.GPUUnavailable instead, chaining
// back to this sentinel through errors.Is.
var ErrGPUUnavailable = engineerr.New(engineerr.ErrCodeGPUUnavailable, "opencl runtime unavailable", nil)
