// Package compute provides the parallel kernels of a simulation step.
//
// The package automatically selects the best available backend:
//
//   - CUDA: GPU-accelerated force accumulation and integration
//   - CPU: goroutine worker grid, used when no GPU is present
//
// Each step is two phases over the shared body store: Accumulate reads
// all positions and kicks every velocity; Integrate reads velocities and
// drifts every position. A backend call returning is the barrier between
// phases.
//
//	backend := compute.GetBackend()
//	backend.Accumulate(store, dt, eps2)
//	backend.Integrate(store, dt)
//
// Build with CUDA support:
//
//	go build -tags cuda ./...
package compute
