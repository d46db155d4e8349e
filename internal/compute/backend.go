package compute

import (
	"fmt"

	"github.com/san-kum/nbodybench/internal/body"
)

// Backend executes the two compute phases of one simulation step. Both
// calls return only after every worker they launched has completed, so a
// return is the phase barrier: all writes of the phase are visible to the
// caller. Implementations that stage the store on an accelerator must
// copy it in before the phase and flush it back before returning.
type Backend interface {
	Name() string
	Available() bool

	// Accumulate computes, for every body i, the net softened
	// gravitational acceleration from all bodies j and applies the
	// velocity kick v_i += dt * a_i. Positions are read-only.
	Accumulate(s *body.Store, dt, eps2 float32) error

	// Integrate advances every body's position by pos_i += v_i * dt.
	// Velocities are read-only.
	Integrate(s *body.Store, dt float32) error

	Cleanup()
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

// AutoSelectBackend prefers CUDA when a device is present, otherwise the
// parallel CPU backend.
func AutoSelectBackend() Backend {
	cuda := NewCUDABackend()
	if cuda.Available() {
		return cuda
	}
	return NewCPUBackend()
}

// ForName resolves a backend by its configuration name and installs it
// as the active backend, cleaning up the previous one.
func ForName(name string, grid Grid, invSqrt InvSqrt) (Backend, error) {
	b, err := resolve(name, grid, invSqrt)
	if err != nil {
		return nil, err
	}
	SetBackend(b)
	return b, nil
}

func resolve(name string, grid Grid, invSqrt InvSqrt) (Backend, error) {
	switch name {
	case "serial":
		return NewSerialBackend(invSqrt), nil
	case "cpu":
		return NewCPUBackendWith(grid, invSqrt), nil
	case "cuda":
		cuda := NewCUDABackend()
		if !cuda.Available() {
			return nil, fmt.Errorf("compute: cuda backend not available")
		}
		return cuda, nil
	case "auto", "":
		cuda := NewCUDABackend()
		if cuda.Available() {
			return cuda, nil
		}
		return NewCPUBackendWith(grid, invSqrt), nil
	default:
		return nil, fmt.Errorf("compute: unknown backend: %s", name)
	}
}
