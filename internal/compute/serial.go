package compute

import "github.com/san-kum/nbodybench/internal/body"

// SerialBackend is the single-threaded reference implementation. Its
// summation order is fixed, which makes it the baseline for the
// order-independence tolerance of the parallel backends.
type SerialBackend struct {
	invSqrt InvSqrt
}

func NewSerialBackend(invSqrt InvSqrt) *SerialBackend {
	if invSqrt == nil {
		invSqrt = ExactInvSqrt
	}
	return &SerialBackend{invSqrt: invSqrt}
}

func (b *SerialBackend) Name() string    { return "serial" }
func (b *SerialBackend) Available() bool { return true }
func (b *SerialBackend) Cleanup()        {}

func (b *SerialBackend) Accumulate(s *body.Store, dt, eps2 float32) error {
	if eps2 <= 0 {
		return ErrSoftening
	}
	n := s.Len()
	buf := s.Raw()
	inv := b.invSqrt

	for i := 0; i < n; i++ {
		base := i * body.Stride
		xi, yi, zi := buf[base], buf[base+1], buf[base+2]

		var ax, ay, az float32
		for j := 0; j < n; j++ {
			jb := j * body.Stride
			dx := buf[jb] - xi
			dy := buf[jb+1] - yi
			dz := buf[jb+2] - zi

			r2 := dx*dx + dy*dy + dz*dz + eps2
			r3inv := inv(r2)
			r3inv = r3inv * r3inv * r3inv

			ax += dx * r3inv
			ay += dy * r3inv
			az += dz * r3inv
		}
		s.AddVel(i, dt*ax, dt*ay, dt*az)
	}
	return nil
}

func (b *SerialBackend) Integrate(s *body.Store, dt float32) error {
	n := s.Len()
	buf := s.Raw()
	for i := 0; i < n; i++ {
		base := i * body.Stride
		buf[base] += dt * buf[base+3]
		buf[base+1] += dt * buf[base+4]
		buf[base+2] += dt * buf[base+5]
	}
	return nil
}
