package sim

import "time"

// Timer measures one iteration of the step loop.
type Timer struct {
	t0 time.Time
}

func (t *Timer) Start() {
	t.t0 = time.Now()
}

func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.t0).Nanoseconds()) / 1e6
}
