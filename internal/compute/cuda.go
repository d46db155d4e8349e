//go:build cuda

package compute

/*
#cgo CFLAGS: -I/opt/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR} -lcudart -lkernels -lstdc++
#include <stdlib.h>

extern int cuda_device_count();
extern const char* cuda_device_name_get();
extern int bodyforce_gpu(float* bodies, int n, float dt, float eps2);
extern int integrate_gpu(float* bodies, int n, float dt);
*/
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/san-kum/nbodybench/internal/body"
)

type CUDABackend struct {
	available  bool
	deviceName string
}

func NewCUDABackend() *CUDABackend {
	count := int(C.cuda_device_count())
	name := ""
	if count > 0 {
		name = C.GoString(C.cuda_device_name_get())
	}
	return &CUDABackend{
		available:  count > 0,
		deviceName: name,
	}
}

func (c *CUDABackend) Name() string {
	if c.available {
		return "cuda (" + c.deviceName + ")"
	}
	return "cuda (not available)"
}

func (c *CUDABackend) Available() bool { return c.available }
func (c *CUDABackend) Cleanup()        {}

// Accumulate hands the interleaved store to the device kernel. The call
// copies the buffer in, runs the kernel, and copies it back before
// returning, so device residency never outlives the phase.
func (c *CUDABackend) Accumulate(s *body.Store, dt, eps2 float32) error {
	if !c.available {
		return NewCPUBackend().Accumulate(s, dt, eps2)
	}
	if eps2 <= 0 {
		return ErrSoftening
	}
	n := s.Len()
	if n == 0 {
		return nil
	}

	buf := s.Raw()
	rc := C.bodyforce_gpu(
		(*C.float)(unsafe.Pointer(&buf[0])),
		C.int(n),
		C.float(dt),
		C.float(eps2),
	)
	if rc != 0 {
		return fmt.Errorf("compute: bodyforce kernel failed with code %d", int(rc))
	}
	return nil
}

func (c *CUDABackend) Integrate(s *body.Store, dt float32) error {
	if !c.available {
		return NewCPUBackend().Integrate(s, dt)
	}
	n := s.Len()
	if n == 0 {
		return nil
	}

	buf := s.Raw()
	rc := C.integrate_gpu(
		(*C.float)(unsafe.Pointer(&buf[0])),
		C.int(n),
		C.float(dt),
	)
	if rc != 0 {
		return fmt.Errorf("compute: integrate kernel failed with code %d", int(rc))
	}
	return nil
}
