package metrics

import "github.com/san-kum/nbodybench/internal/body"

// Metric observes the body store once per completed iteration and
// reduces its observations to a single value at the end of a run.
type Metric interface {
	Name() string
	Observe(s *body.Store, iter int, elapsedMs float64)
	Value() float64
	Reset()
}
