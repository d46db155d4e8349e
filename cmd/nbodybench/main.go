package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nbodybench/internal/body"
	"github.com/san-kum/nbodybench/internal/checker"
	"github.com/san-kum/nbodybench/internal/compute"
	"github.com/san-kum/nbodybench/internal/config"
	"github.com/san-kum/nbodybench/internal/metrics"
	"github.com/san-kum/nbodybench/internal/sim"
	"github.com/san-kum/nbodybench/internal/storage"
	"github.com/san-kum/nbodybench/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	shift       int
	dt          float64
	iters       int
	softening   float64
	seed        int64
	salt        int64
	backendName string
	gridI       int
	gridJ       int
	fastInvSqrt bool
	stopOnError bool
	diagnostics bool
	configFile  string
	preset      string
	// bench sweep bounds
	benchMinShift int
	benchMaxShift int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nbodybench",
		Short: "all-pairs n-body force computation benchmark",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nbodybench", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the benchmark",
		RunE:  runBenchmark,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the benchmark with a live terminal view",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "sweep body counts and tabulate scaling",
		RunE:  runSweep,
	}
	benchCmd.Flags().IntVar(&benchMinShift, "min-shift", 8, "smallest body-count exponent")
	benchCmd.Flags().IntVar(&benchMaxShift, "max-shift", 12, "largest body-count exponent")
	benchCmd.Flags().IntVar(&iters, "iters", config.DefaultIters, "iterations per size")
	benchCmd.Flags().StringVar(&backendName, "backend", "auto", "backend (auto, cpu, serial, cuda)")
	benchCmd.Flags().BoolVar(&fastInvSqrt, "fast-rsqrt", false, "use the approximate reciprocal square root")

	checkCmd := &cobra.Command{
		Use:   "check [run_id]",
		Short: "re-verify a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  checkRun,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, checkCmd, listCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&shift, "shift", config.DefaultShift, "body count as a power-of-two exponent")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&iters, "iters", config.DefaultIters, "iteration count")
	cmd.Flags().Float64Var(&softening, "softening", config.DefaultSoftening, "squared softening constant")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().Int64Var(&salt, "salt", 0, "verification salt")
	cmd.Flags().StringVar(&backendName, "backend", "auto", "backend (auto, cpu, serial, cuda)")
	cmd.Flags().IntVar(&gridI, "grid-i", 0, "worker grid size along the target axis (0 = auto)")
	cmd.Flags().IntVar(&gridJ, "grid-j", 0, "worker grid size along the source axis (0 = auto)")
	cmd.Flags().BoolVar(&fastInvSqrt, "fast-rsqrt", false, "use the approximate reciprocal square root")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "abort the run on the first phase failure")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "track energy and momentum drift (O(N^2) per iteration)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers preset, then config file, then explicit CLI flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("shift") {
		cfg.Shift = shift
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = float32(dt)
	}
	if cmd.Flags().Changed("iters") {
		cfg.Iters = iters
	}
	if cmd.Flags().Changed("softening") {
		cfg.Softening = float32(softening)
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("salt") {
		cfg.Salt = salt
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = backendName
	}
	if cmd.Flags().Changed("grid-i") {
		cfg.GridI = gridI
	}
	if cmd.Flags().Changed("grid-j") {
		cfg.GridJ = gridJ
	}
	if cmd.Flags().Changed("fast-rsqrt") {
		cfg.FastInvSqrt = fastInvSqrt
	}
	if cmd.Flags().Changed("stop-on-error") {
		cfg.StopOnError = stopOnError
	}
	if cmd.Flags().Changed("diagnostics") {
		cfg.Diagnostics = diagnostics
	}

	return cfg, nil
}

func buildBackend(cfg *config.Config) (compute.Backend, error) {
	grid := compute.DefaultGrid()
	if cfg.GridI > 0 {
		grid.I = cfg.GridI
	}
	if cfg.GridJ > 0 {
		grid.J = cfg.GridJ
	}

	invSqrt := compute.ExactInvSqrt
	if cfg.FastInvSqrt {
		invSqrt = compute.FastInvSqrt
	}

	return compute.ForName(cfg.Backend, grid, invSqrt)
}

func buildRunner(cfg *config.Config) (*sim.Runner, *body.Store, error) {
	// Allocation failure is fatal: no run starts without a store.
	store, err := body.NewStore(cfg.Bodies())
	if err != nil {
		return nil, nil, err
	}
	body.Randomize(store, cfg.Seed)

	backend, err := buildBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	runner := sim.New(backend)
	runner.AddMetric(metrics.NewThroughput())
	runner.AddMetric(metrics.NewSlowestIteration())
	if cfg.Diagnostics {
		runner.AddMetric(metrics.NewEnergy(cfg.Softening))
		runner.AddMetric(metrics.NewMomentumDrift())
	}

	return runner, store, nil
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:          cfg.Dt,
		Iters:       cfg.Iters,
		Softening:   cfg.Softening,
		StopOnError: cfg.StopOnError,
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner, store, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %d bodies, %d iterations on %s...\n", store.Len(), cfg.Iters, runner.Backend().Name())

	result, err := runner.Run(context.Background(), store, simConfig(cfg))
	if err != nil {
		return err
	}

	rep, verr := checker.Verify(store, cfg.Salt)
	if verr != nil {
		fmt.Fprintf(os.Stderr, "accuracy check failed: %v\n", verr)
	}

	runID, err := st.Save(storage.RunMetadata{
		Shift:       cfg.Shift,
		Dt:          cfg.Dt,
		Softening:   cfg.Softening,
		Seed:        cfg.Seed,
		Salt:        cfg.Salt,
		Backend:     runner.Backend().Name(),
		Fingerprint: rep.Fingerprint,
	}, result, store)
	if err != nil {
		return err
	}

	printSummary(result, rep, runID)
	return nil
}

func printSummary(result *sim.Result, rep checker.Report, runID string) {
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("bodies: %d\n", result.Bodies)
	fmt.Printf("iterations: %d\n", result.Iters)
	fmt.Printf("total time: %.2f ms\n", result.TotalMillis)
	fmt.Printf("avg iteration: %.2f ms\n", result.AvgIterMillis)
	fmt.Printf("throughput: %.3f billion interactions/s\n", result.GigaInteractionsPerSec)
	fmt.Printf("fingerprint: %016x\n", rep.Fingerprint)

	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
	if len(result.Errors) > 0 {
		fmt.Printf("\nphase errors: %d (results may be garbage)\n", len(result.Errors))
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	runner, store, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	result, err := viz.Run(runner, store, simConfig(cfg))
	if err != nil {
		return err
	}
	if result == nil {
		// Quit before the run finished.
		return nil
	}

	rep, verr := checker.Verify(store, cfg.Salt)
	if verr != nil {
		fmt.Fprintf(os.Stderr, "accuracy check failed: %v\n", verr)
	}

	score := checker.NewScore(rep, result.GigaInteractionsPerSec, cfg.Salt)
	fmt.Printf("throughput: %.3f billion interactions/s, fingerprint %016x\n",
		score.GigaInteractionsPerSec, score.Fingerprint)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if benchMinShift > benchMaxShift {
		return fmt.Errorf("min-shift %d exceeds max-shift %d", benchMinShift, benchMaxShift)
	}

	cfg := config.DefaultConfig()
	cfg.Iters = iters
	cfg.Backend = backendName
	cfg.FastInvSqrt = fastInvSqrt

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SHIFT\tBODIES\tAVG_MS\tGI/S\tNS_PER_PAIR")

	gips := make([]float64, 0, benchMaxShift-benchMinShift+1)

	for s := benchMinShift; s <= benchMaxShift; s++ {
		cfg.Shift = s

		runner, store, err := buildRunner(cfg)
		if err != nil {
			return err
		}

		result, err := runner.Run(context.Background(), store, simConfig(cfg))
		if err != nil {
			return err
		}

		n := float64(result.Bodies)
		// time(N)/N^2: roughly flat for the brute-force algorithm.
		nsPerPair := result.AvgIterMillis * 1e6 / (n * n)

		fmt.Fprintf(w, "%d\t%d\t%.2f\t%.3f\t%.3f\n",
			s, result.Bodies, result.AvgIterMillis, result.GigaInteractionsPerSec, nsPerPair)
		gips = append(gips, result.GigaInteractionsPerSec)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if len(gips) > 1 {
		fmt.Println()
		graph := asciigraph.Plot(gips,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("GI/s, shift %d..%d", benchMinShift, benchMaxShift)),
		)
		fmt.Println(graph)
	}

	return nil
}

func checkRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	bodies, err := st.LoadBodies(runID)
	if err != nil {
		return err
	}

	rep, verr := checker.Verify(bodies, meta.Salt)
	if verr != nil {
		return verr
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bodies: %d, all finite\n", rep.Bodies)

	// The snapshot round-trips through decimal text, so the recomputed
	// fingerprint must match the recorded one bit for bit.
	if rep.Fingerprint != meta.Fingerprint {
		return fmt.Errorf("fingerprint mismatch: recorded %016x, recomputed %016x", meta.Fingerprint, rep.Fingerprint)
	}
	fmt.Printf("fingerprint: %016x (ok)\n", rep.Fingerprint)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBODIES\tITERS\tBACKEND\tAVG_MS\tGI/S")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%.2f\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Iters,
			run.Backend,
			run.AvgIterMillis,
			run.GigaInteractionsPerSec,
		)
	}

	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	bodies, err := st.LoadBodies(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSONStdout(meta, bodies)
}
