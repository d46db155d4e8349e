package compute

import (
	"fmt"
	"sync"

	"github.com/san-kum/nbodybench/internal/body"
)

// CPUBackend runs both kernels on a 2D grid of goroutine workers with
// grid-stride index striping in each dimension.
type CPUBackend struct {
	grid    Grid
	invSqrt InvSqrt
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{grid: DefaultGrid(), invSqrt: ExactInvSqrt}
}

func NewCPUBackendWith(grid Grid, invSqrt InvSqrt) *CPUBackend {
	if invSqrt == nil {
		invSqrt = ExactInvSqrt
	}
	return &CPUBackend{grid: grid, invSqrt: invSqrt}
}

func (c *CPUBackend) Name() string {
	return fmt.Sprintf("cpu (%dx%d)", c.grid.I, c.grid.J)
}

func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

// Accumulate runs the all-pairs force kernel in two rounds. Round one:
// worker (wi,wj) strides targets i across the I axis and sources j
// across the J axis, summing partial accelerations into a per-j-stripe
// buffer; distinct wi never share a row of that buffer, so the round is
// race-free without locks. Round two, after all partial sums are
// complete, reduces the J stripes per body and applies the velocity
// kick. Positions are never written.
func (c *CPUBackend) Accumulate(s *body.Store, dt, eps2 float32) error {
	if err := c.grid.Validate(); err != nil {
		return err
	}
	if eps2 <= 0 {
		return ErrSoftening
	}
	n := s.Len()
	if n == 0 {
		return nil
	}

	gi, gj := c.grid.I, c.grid.J
	partials := make([][]float32, gj)
	for w := range partials {
		partials[w] = make([]float32, 3*n)
	}

	buf := s.Raw()
	errs := make([]error, gi*gj)

	var wg sync.WaitGroup
	for wi := 0; wi < gi; wi++ {
		for wj := 0; wj < gj; wj++ {
			wg.Add(1)
			go func(wi, wj int) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						errs[wi*gj+wj] = fmt.Errorf("worker (%d,%d): %v", wi, wj, r)
					}
				}()

				acc := partials[wj]
				inv := c.invSqrt
				for i := wi; i < n; i += gi {
					base := i * body.Stride
					xi, yi, zi := buf[base], buf[base+1], buf[base+2]

					var ax, ay, az float32
					for j := wj; j < n; j += gj {
						jb := j * body.Stride
						dx := buf[jb] - xi
						dy := buf[jb+1] - yi
						dz := buf[jb+2] - zi

						// The self pair has d = 0 and r2 = eps2 > 0,
						// so it contributes exactly zero.
						r2 := dx*dx + dy*dy + dz*dz + eps2
						r3inv := inv(r2)
						r3inv = r3inv * r3inv * r3inv

						ax += dx * r3inv
						ay += dy * r3inv
						az += dz * r3inv
					}
					acc[i*3] += ax
					acc[i*3+1] += ay
					acc[i*3+2] += az
				}
			}(wi, wj)
		}
	}
	wg.Wait()

	// All partial sums are visible here; only now may velocities change.
	redErrs := make([]error, gi)
	var red sync.WaitGroup
	for wi := 0; wi < gi; wi++ {
		red.Add(1)
		go func(wi int) {
			defer red.Done()
			defer func() {
				if r := recover(); r != nil {
					redErrs[wi] = fmt.Errorf("reduce worker %d: %v", wi, r)
				}
			}()

			for i := wi; i < n; i += gi {
				var ax, ay, az float32
				for w := 0; w < gj; w++ {
					p := partials[w]
					ax += p[i*3]
					ay += p[i*3+1]
					az += p[i*3+2]
				}
				s.AddVel(i, dt*ax, dt*ay, dt*az)
			}
		}(wi)
	}
	red.Wait()

	return firstError(errs, redErrs)
}

// Integrate advances positions on a flat 1D grid-stride loop. Each
// worker owns its stripe of bodies outright, so no reduction is needed.
func (c *CPUBackend) Integrate(s *body.Store, dt float32) error {
	if err := c.grid.Validate(); err != nil {
		return err
	}
	n := s.Len()
	if n == 0 {
		return nil
	}

	workers := c.grid.workers()
	if workers > n {
		workers = n
	}

	buf := s.Raw()
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[w] = fmt.Errorf("worker %d: %v", w, r)
				}
			}()

			for i := w; i < n; i += workers {
				base := i * body.Stride
				buf[base] += dt * buf[base+3]
				buf[base+1] += dt * buf[base+4]
				buf[base+2] += dt * buf[base+5]
			}
		}(w)
	}
	wg.Wait()

	return firstError(errs, nil)
}

func firstError(a, b []error) error {
	for _, err := range a {
		if err != nil {
			return err
		}
	}
	for _, err := range b {
		if err != nil {
			return err
		}
	}
	return nil
}
