package compute

import (
	"errors"
	"fmt"
	"runtime"
)

// Domain errors for kernel launches.
var (
	// ErrBadGrid indicates a worker-grid shape the backend rejects.
	ErrBadGrid = errors.New("compute: invalid worker grid")

	// ErrSoftening indicates a non-positive softening constant, which
	// would let near-coincident bodies produce unbounded forces.
	ErrSoftening = errors.New("compute: softening must be positive")
)

const maxWorkers = 1 << 16

// Grid is the worker-grid shape of the parallel backend. I workers
// stripe the target-body axis and J workers stripe the source-body axis;
// each worker visits indices start, start+stride, start+2*stride within
// its axis, so any shape is correct for any body count.
type Grid struct {
	I, J int
}

// DefaultGrid stripes targets across all CPUs with a serial inner loop.
func DefaultGrid() Grid {
	return Grid{I: runtime.NumCPU(), J: 1}
}

// Validate rejects shapes that cannot be launched.
func (g Grid) Validate() error {
	if g.I < 1 || g.J < 1 {
		return fmt.Errorf("%w: %dx%d", ErrBadGrid, g.I, g.J)
	}
	if g.I*g.J > maxWorkers {
		return fmt.Errorf("%w: %dx%d exceeds %d workers", ErrBadGrid, g.I, g.J, maxWorkers)
	}
	return nil
}

func (g Grid) workers() int { return g.I * g.J }
