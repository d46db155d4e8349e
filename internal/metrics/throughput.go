package metrics

import "github.com/san-kum/nbodybench/internal/body"

// Throughput reports billions of pairwise interactions per second,
// averaged over the observed iterations. Every iteration evaluates
// exactly N^2 ordered pairs, self pairs included.
type Throughput struct {
	bodies  int
	iters   int
	totalMs float64
}

func NewThroughput() *Throughput {
	return &Throughput{}
}

func (t *Throughput) Name() string { return "giga_interactions_per_sec" }

func (t *Throughput) Observe(s *body.Store, iter int, elapsedMs float64) {
	t.bodies = s.Len()
	t.iters++
	t.totalMs += elapsedMs
}

func (t *Throughput) Value() float64 {
	if t.iters == 0 || t.totalMs <= 0 {
		return 0
	}
	avgSec := t.totalMs / float64(t.iters) / 1000
	n := float64(t.bodies)
	return 1e-9 * n * n / avgSec
}

func (t *Throughput) Reset() {
	t.bodies = 0
	t.iters = 0
	t.totalMs = 0
}

// SlowestIteration records the worst per-iteration wall time in ms.
type SlowestIteration struct {
	maxMs float64
}

func NewSlowestIteration() *SlowestIteration {
	return &SlowestIteration{}
}

func (m *SlowestIteration) Name() string { return "slowest_iter_ms" }

func (m *SlowestIteration) Observe(s *body.Store, iter int, elapsedMs float64) {
	if elapsedMs > m.maxMs {
		m.maxMs = elapsedMs
	}
}

func (m *SlowestIteration) Value() float64 { return m.maxMs }
func (m *SlowestIteration) Reset()         { m.maxMs = 0 }
