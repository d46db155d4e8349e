package metrics

import (
	"math"

	"github.com/san-kum/nbodybench/internal/body"
)

// Energy averages the total mechanical energy of the system over the
// observed iterations, with unit masses and the softened potential. It
// costs O(N^2) per observation, so runs enable it only for diagnostics.
type Energy struct {
	eps2    float64
	samples int
	total   float64
}

func NewEnergy(eps2 float32) *Energy {
	return &Energy{eps2: float64(eps2)}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(s *body.Store, iter int, elapsedMs float64) {
	n := s.Len()
	ke := 0.0
	pe := 0.0

	for i := 0; i < n; i++ {
		vx, vy, vz := s.Vel(i)
		ke += 0.5 * float64(vx*vx+vy*vy+vz*vz)

		xi, yi, zi := s.Pos(i)
		for j := i + 1; j < n; j++ {
			xj, yj, zj := s.Pos(j)
			dx := float64(xj - xi)
			dy := float64(yj - yi)
			dz := float64(zj - zi)
			r := math.Sqrt(dx*dx + dy*dy + dz*dz + e.eps2)
			pe -= 1.0 / r
		}
	}

	e.total += ke + pe
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.samples = 0
	e.total = 0
}

// MomentumDrift tracks the largest deviation of total momentum from its
// first observation. Pairwise kicks cancel exactly in the analytic law,
// so drift measures the floating-point summation error of a backend.
type MomentumDrift struct {
	samples int
	p0      [3]float64
	max     float64
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{}
}

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(s *body.Store, iter int, elapsedMs float64) {
	var p [3]float64
	for i := 0; i < s.Len(); i++ {
		vx, vy, vz := s.Vel(i)
		p[0] += float64(vx)
		p[1] += float64(vy)
		p[2] += float64(vz)
	}

	if m.samples == 0 {
		m.p0 = p
	}
	m.samples++

	dx := p[0] - m.p0[0]
	dy := p[1] - m.p0[1]
	dz := p[2] - m.p0[2]
	drift := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if drift > m.max {
		m.max = drift
	}
}

func (m *MomentumDrift) Value() float64 { return m.max }

func (m *MomentumDrift) Reset() {
	m.samples = 0
	m.p0 = [3]float64{}
	m.max = 0
}
