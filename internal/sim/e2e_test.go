package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodybench/internal/body"
	"github.com/san-kum/nbodybench/internal/checker"
	"github.com/san-kum/nbodybench/internal/compute"
	"github.com/san-kum/nbodybench/internal/sim"
)

var _ = Describe("End-to-end benchmark run", func() {
	newRun := func(n int, seed int64) (*sim.Runner, *body.Store) {
		s, err := body.NewStore(n)
		Expect(err).NotTo(HaveOccurred())
		body.Randomize(s, seed)
		return sim.New(compute.NewCPUBackend()), s
	}

	It("completes the default workload with a finite state", func() {
		runner, store := newRun(4096, 42)

		cfg := sim.DefaultConfig()
		result, err := runner.Run(context.Background(), store, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Iters).To(Equal(10))
		Expect(result.Errors).To(BeEmpty())
		Expect(result.GigaInteractionsPerSec).To(BeNumerically(">", 0))
		Expect(store.IsFinite()).To(BeTrue())

		rep, err := checker.Verify(store, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(rep.NonFinite).To(BeZero())
	})

	It("reproduces the same fingerprint for the same seed and grid", func() {
		run := func() uint64 {
			s, err := body.NewStore(512)
			Expect(err).NotTo(HaveOccurred())
			body.Randomize(s, 7)

			backend := compute.NewCPUBackendWith(compute.Grid{I: 4, J: 2}, nil)
			runner := sim.New(backend)

			cfg := sim.DefaultConfig()
			cfg.Iters = 5
			_, err = runner.Run(context.Background(), s, cfg)
			Expect(err).NotTo(HaveOccurred())

			return checker.Fingerprint(s, 1234)
		}

		Expect(run()).To(Equal(run()))
	})

	It("moves each body by exactly velocity times dt per iteration", func() {
		s, err := body.NewStore(64)
		Expect(err).NotTo(HaveOccurred())
		body.Randomize(s, 3)

		backend := compute.NewSerialBackend(nil)
		cfg := sim.DefaultConfig()

		// Run the force phase alone, snapshot the kicked velocities,
		// then check the integration phase applies them verbatim.
		Expect(backend.Accumulate(s, cfg.Dt, cfg.Softening)).To(Succeed())
		before := s.Clone()

		Expect(backend.Integrate(s, cfg.Dt)).To(Succeed())

		for i := 0; i < s.Len(); i++ {
			x0, y0, z0 := before.Pos(i)
			vx, vy, vz := before.Vel(i)
			x, y, z := s.Pos(i)
			Expect(x).To(Equal(x0 + cfg.Dt*vx))
			Expect(y).To(Equal(y0 + cfg.Dt*vy))
			Expect(z).To(Equal(z0 + cfg.Dt*vz))
		}
	})

	It("keeps serial and parallel backends in close agreement", func() {
		runWith := func(b compute.Backend) *body.Store {
			s, err := body.NewStore(128)
			Expect(err).NotTo(HaveOccurred())
			body.Randomize(s, 11)

			runner := sim.New(b)
			cfg := sim.DefaultConfig()
			cfg.Iters = 2
			_, err = runner.Run(context.Background(), s, cfg)
			Expect(err).NotTo(HaveOccurred())
			return s
		}

		serial := runWith(compute.NewSerialBackend(nil))
		parallel := runWith(compute.NewCPUBackendWith(compute.Grid{I: 3, J: 4}, nil))

		// Summation order differs, so agreement is approximate.
		for i := 0; i < serial.Len(); i++ {
			sx, sy, sz := serial.Pos(i)
			px, py, pz := parallel.Pos(i)
			Expect(px).To(BeNumerically("~", sx, 1e-2))
			Expect(py).To(BeNumerically("~", sy, 1e-2))
			Expect(pz).To(BeNumerically("~", sz, 1e-2))
		}
	})
})
