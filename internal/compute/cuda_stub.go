//go:build !cuda

package compute

import "github.com/san-kum/nbodybench/internal/body"

type CUDABackend struct{}

func NewCUDABackend() *CUDABackend {
	return &CUDABackend{}
}

func (c *CUDABackend) Name() string    { return "cuda (not available)" }
func (c *CUDABackend) Available() bool { return false }
func (c *CUDABackend) Cleanup()        {}

func (c *CUDABackend) Accumulate(s *body.Store, dt, eps2 float32) error {
	return NewCPUBackend().Accumulate(s, dt, eps2)
}

func (c *CUDABackend) Integrate(s *body.Store, dt float32) error {
	return NewCPUBackend().Integrate(s, dt)
}
