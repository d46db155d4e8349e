package sim

import "github.com/san-kum/nbodybench/internal/body"

// Phase tracks the orchestrator through one iteration of the step loop.
type Phase int

const (
	Idle Phase = iota
	ForcesInFlight
	ForcesDone
	IntegrationInFlight
	StepComplete
	Finished
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case ForcesInFlight:
		return "force accumulation"
	case ForcesDone:
		return "forces done"
	case IntegrationInFlight:
		return "position integration"
	case StepComplete:
		return "step complete"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Config holds the immutable parameters of one run.
type Config struct {
	Dt        float32
	Iters     int
	Softening float32 // eps2, added to every squared distance

	// StopOnError promotes a phase failure to a hard stop instead of
	// the default report-and-continue.
	StopOnError bool
}

func DefaultConfig() Config {
	return Config{
		Dt:        0.01,
		Iters:     10,
		Softening: 1e-9,
	}
}

// Result collects timings and derived throughput for a completed run.
type Result struct {
	Bodies     int
	Iters      int
	IterMillis []float64

	TotalMillis   float64
	AvgIterMillis float64

	// GigaInteractionsPerSec is 1e-9 * N^2 / average iteration seconds;
	// N^2 counts every ordered pair including the zero self pairs.
	GigaInteractionsPerSec float64

	Metrics map[string]float64
	Errors  []error
}

// Observer is notified after each completed iteration, once both phase
// barriers have passed.
type Observer interface {
	OnIteration(iter int, elapsedMs float64, s *body.Store)
}
