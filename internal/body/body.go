package body

import (
	"fmt"
	"math"
)

// Body is one point mass with 3D position and velocity. Mass is uniform
// across a store and folded into the force constant, so there is no mass
// field; a body's index in its store is its only identity.
type Body struct {
	X, Y, Z    float32
	VX, VY, VZ float32
}

// Stride is the number of float32 values per body in the flat layout.
const Stride = 6

// MaxBodies bounds a single allocation at 1.5 GiB of float32 state.
const MaxBodies = 1 << 26

// Store holds N bodies in one contiguous buffer, interleaved
// x,y,z,vx,vy,vz per body. The buffer is allocated once, never resized,
// and overwritten in place by each simulation step.
type Store struct {
	n   int
	buf []float32
}

// NewStore allocates a store for n bodies. A store that cannot be sized
// is a fatal condition for the caller; no run may start without one.
func NewStore(n int) (*Store, error) {
	if n < 0 {
		return nil, fmt.Errorf("body: invalid body count %d", n)
	}
	if n > MaxBodies {
		return nil, fmt.Errorf("body: body count %d exceeds maximum %d", n, MaxBodies)
	}
	return &Store{n: n, buf: make([]float32, n*Stride)}, nil
}

func (s *Store) Len() int { return s.n }

// Raw exposes the flat interleaved buffer. Kernels index it directly;
// the layout is part of the store's contract.
func (s *Store) Raw() []float32 { return s.buf }

func (s *Store) At(i int) Body {
	base := i * Stride
	return Body{
		X: s.buf[base], Y: s.buf[base+1], Z: s.buf[base+2],
		VX: s.buf[base+3], VY: s.buf[base+4], VZ: s.buf[base+5],
	}
}

func (s *Store) Set(i int, b Body) {
	base := i * Stride
	s.buf[base] = b.X
	s.buf[base+1] = b.Y
	s.buf[base+2] = b.Z
	s.buf[base+3] = b.VX
	s.buf[base+4] = b.VY
	s.buf[base+5] = b.VZ
}

func (s *Store) Pos(i int) (x, y, z float32) {
	base := i * Stride
	return s.buf[base], s.buf[base+1], s.buf[base+2]
}

func (s *Store) SetPos(i int, x, y, z float32) {
	base := i * Stride
	s.buf[base], s.buf[base+1], s.buf[base+2] = x, y, z
}

func (s *Store) Vel(i int) (vx, vy, vz float32) {
	base := i * Stride
	return s.buf[base+3], s.buf[base+4], s.buf[base+5]
}

func (s *Store) SetVel(i int, vx, vy, vz float32) {
	base := i * Stride
	s.buf[base+3], s.buf[base+4], s.buf[base+5] = vx, vy, vz
}

// AddVel applies a velocity kick to body i.
func (s *Store) AddVel(i int, dvx, dvy, dvz float32) {
	base := i * Stride
	s.buf[base+3] += dvx
	s.buf[base+4] += dvy
	s.buf[base+5] += dvz
}

func (s *Store) Clone() *Store {
	c := &Store{n: s.n, buf: make([]float32, len(s.buf))}
	copy(c.buf, s.buf)
	return c
}

// IsFinite reports whether every field of every body is finite.
func (s *Store) IsFinite() bool {
	for _, v := range s.buf {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
