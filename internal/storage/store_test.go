package storage

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nbodybench/internal/body"
	"github.com/san-kum/nbodybench/internal/checker"
	"github.com/san-kum/nbodybench/internal/sim"
)

func testRun(t *testing.T, n int) (*sim.Result, *body.Store) {
	t.Helper()
	bodies, err := body.NewStore(n)
	if err != nil {
		t.Fatal(err)
	}
	body.Randomize(bodies, 42)

	result := &sim.Result{
		Bodies:                 n,
		Iters:                  10,
		TotalMillis:            120,
		AvgIterMillis:          12,
		GigaInteractionsPerSec: 1.4,
		Metrics:                map[string]float64{"slowest_iter_ms": 15},
	}
	return result, bodies
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	result, bodies := testRun(t, 32)
	runID, err := st.Save(RunMetadata{
		Shift:       5,
		Dt:          0.01,
		Softening:   1e-9,
		Seed:        42,
		Salt:        777,
		Backend:     "cpu (8x1)",
		Fingerprint: 0xdeadbeef,
	}, result, bodies)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != runID {
		t.Errorf("ID = %q, want %q", meta.ID, runID)
	}
	if meta.Bodies != 32 || meta.Iters != 10 {
		t.Errorf("bodies/iters = %d/%d, want 32/10", meta.Bodies, meta.Iters)
	}
	if meta.Salt != 777 || meta.Fingerprint != 0xdeadbeef {
		t.Errorf("salt/fingerprint not preserved: %+v", meta)
	}
	if meta.AvgIterMillis != 12 || meta.GigaInteractionsPerSec != 1.4 {
		t.Errorf("timings not preserved: %+v", meta)
	}
	if meta.Metrics["slowest_iter_ms"] != 15 {
		t.Errorf("metrics not preserved: %v", meta.Metrics)
	}
}

func TestLoadBodiesRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	result, bodies := testRun(t, 16)
	runID, err := st.Save(RunMetadata{}, result, bodies)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := st.LoadBodies(runID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != bodies.Len() {
		t.Fatalf("loaded %d bodies, want %d", loaded.Len(), bodies.Len())
	}

	// The decimal snapshot uses shortest round-trip formatting, so the
	// reloaded store must match bit for bit.
	for i, v := range bodies.Raw() {
		if math.Float32bits(loaded.Raw()[i]) != math.Float32bits(v) {
			t.Fatalf("field %d did not round-trip: %v vs %v", i, v, loaded.Raw()[i])
		}
	}

	if checker.Fingerprint(loaded, 9) != checker.Fingerprint(bodies, 9) {
		t.Error("fingerprint changed across the snapshot round trip")
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("fresh store lists %d runs", len(runs))
	}

	result, bodies := testRun(t, 8)
	if _, err := st.Save(RunMetadata{Backend: "serial"}, result, bodies); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("listed %d runs, want 1", len(runs))
	}
	if runs[0].Backend != "serial" {
		t.Errorf("listed backend %q, want serial", runs[0].Backend)
	}
}

func TestListMissingDir(t *testing.T) {
	st := New(t.TempDir() + "/never-created")
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("missing dir listed %d runs", len(runs))
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestSnapshotWriteErrorSurfaces(t *testing.T) {
	// The csv writer buffers, so a sink failure only shows up at flush
	// time; it must still fail the save.
	_, bodies := testRun(t, 4)
	if err := writeBodies(failingWriter{}, bodies); err == nil {
		t.Error("failed snapshot write reported success")
	}
}

func TestSaveRecordsErrors(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	result, bodies := testRun(t, 4)
	result.Errors = []error{
		&sim.PhaseError{Phase: sim.ForcesInFlight, Iter: 2},
	}

	runID, err := st.Save(RunMetadata{}, result, bodies)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(meta.Errors) != 1 {
		t.Fatalf("recorded %d errors, want 1", len(meta.Errors))
	}
}
