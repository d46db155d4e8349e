package sim

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/nbodybench/internal/body"
	"github.com/san-kum/nbodybench/internal/compute"
	"github.com/san-kum/nbodybench/internal/metrics"
)

// Runner owns the body store for the duration of a run and drives the
// strict two-phase step loop: force accumulation, barrier, position
// integration, barrier. The backend's phase calls return only after all
// their workers have joined, which is what makes each barrier real.
type Runner struct {
	backend   compute.Backend
	metrics   []metrics.Metric
	observers []Observer
	phase     Phase
}

// New returns a runner for the given backend. A nil backend selects the
// package-level active backend.
func New(backend compute.Backend) *Runner {
	if backend == nil {
		backend = compute.GetBackend()
	}
	return &Runner{
		backend: backend,
		phase:   Idle,
	}
}

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.observers = append(r.observers, o) }
func (r *Runner) Phase() Phase               { return r.phase }
func (r *Runner) Backend() compute.Backend   { return r.backend }

// Run executes cfg.Iters iterations over s. Phase failures are reported
// to stderr and collected in the result; unless cfg.StopOnError is set
// the loop runs to completion regardless, so a result is produced even
// from a degraded run.
func (r *Runner) Run(ctx context.Context, s *body.Store, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Bodies:     s.Len(),
		IterMillis: make([]float64, 0, cfg.Iters),
		Metrics:    make(map[string]float64),
		Errors:     make([]error, 0),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	var timer Timer
	for k := 0; k < cfg.Iters; k++ {
		select {
		case <-ctx.Done():
			r.phase = Finished
			return result, ctx.Err()
		default:
		}

		timer.Start()

		r.phase = ForcesInFlight
		if err := r.backend.Accumulate(s, cfg.Dt, cfg.Softening); err != nil {
			perr := &PhaseError{Phase: ForcesInFlight, Iter: k, Wrapped: err}
			fmt.Fprintf(os.Stderr, "nbodybench: %v\n", perr)
			result.Errors = append(result.Errors, perr)
			if cfg.StopOnError {
				r.phase = Finished
				return result, perr
			}
		}
		r.phase = ForcesDone

		// Every velocity write of this iteration is visible here; only
		// now may positions move.
		r.phase = IntegrationInFlight
		if err := r.backend.Integrate(s, cfg.Dt); err != nil {
			perr := &PhaseError{Phase: IntegrationInFlight, Iter: k, Wrapped: err}
			fmt.Fprintf(os.Stderr, "nbodybench: %v\n", perr)
			result.Errors = append(result.Errors, perr)
			if cfg.StopOnError {
				r.phase = Finished
				return result, perr
			}
		}
		r.phase = StepComplete

		elapsed := timer.ElapsedMs()
		result.IterMillis = append(result.IterMillis, elapsed)
		result.TotalMillis += elapsed
		result.Iters++

		for _, m := range r.metrics {
			m.Observe(s, k, elapsed)
		}
		for _, o := range r.observers {
			o.OnIteration(k, elapsed, s)
		}
	}
	r.phase = Finished

	if result.Iters > 0 {
		result.AvgIterMillis = result.TotalMillis / float64(result.Iters)
	}
	if result.AvgIterMillis > 0 {
		n := float64(result.Bodies)
		result.GigaInteractionsPerSec = 1e-9 * n * n / (result.AvgIterMillis / 1000)
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Iters < 0 {
		return fmt.Errorf("%w: iteration count must be non-negative, got %d", ErrInvalidConfig, cfg.Iters)
	}
	if cfg.Softening <= 0 {
		return fmt.Errorf("%w: softening must be positive, got %g", ErrInvalidConfig, cfg.Softening)
	}
	return nil
}
