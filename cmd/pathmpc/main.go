package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pathmpc/internal/chart"
	"github.com/san-kum/pathmpc/internal/config"
	"github.com/san-kum/pathmpc/internal/integrators"
	"github.com/san-kum/pathmpc/internal/metrics"
	"github.com/san-kum/pathmpc/internal/mpc"
	"github.com/san-kum/pathmpc/internal/poly"
	"github.com/san-kum/pathmpc/internal/sim"
	"github.com/san-kum/pathmpc/internal/solver"
	"github.com/san-kum/pathmpc/internal/store"
	"github.com/san-kum/pathmpc/internal/tui"
	"github.com/san-kum/pathmpc/internal/vehicle"
)

var (
	dataDir    string
	configFile string
	preset     string
	duration   float64
	latency    int
	integName  string
	refSpeed   float64
	horizon    int
	budgetMS   int
	// solve command state
	stateX    float64
	stateY    float64
	statePsi  float64
	stateV    float64
	pathCoefs []float64
	// chart output
	chartOut string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pathmpc",
		Short: "model predictive path tracking",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Interactive dashboard when no command given.
			return tui.Run()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pathmpc", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop simulation",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "centerline", "scenario preset")
	runCmd.Flags().Float64Var(&duration, "time", 0, "override duration (s)")
	runCmd.Flags().IntVar(&latency, "latency", -1, "override actuator latency (control steps)")
	runCmd.Flags().StringVar(&integName, "integrator", "", "override integrator (euler, rk4)")
	runCmd.Flags().Float64Var(&refSpeed, "ref-speed", 0, "override reference speed")
	runCmd.Flags().IntVar(&horizon, "horizon", 0, "override horizon length")
	runCmd.Flags().IntVar(&budgetMS, "budget", 0, "override solve budget (ms)")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "run a single control solve and print the command",
		RunE:  solveOnce,
	}
	solveCmd.Flags().Float64Var(&stateX, "x", 0, "vehicle x")
	solveCmd.Flags().Float64Var(&stateY, "y", 0, "vehicle y")
	solveCmd.Flags().Float64Var(&statePsi, "psi", 0, "vehicle heading")
	solveCmd.Flags().Float64Var(&stateV, "v", 10, "vehicle speed")
	solveCmd.Flags().Float64SliceVar(&pathCoefs, "path", []float64{0, 0, 0, 0}, "cubic coefficients c0,c1,c2,c3")
	solveCmd.Flags().IntVar(&horizon, "horizon", 0, "override horizon length")
	solveCmd.Flags().IntVar(&budgetMS, "budget", 0, "override solve budget (ms)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render a saved run as an HTML report",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVar(&chartOut, "out", "report.html", "output HTML file")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDURATION\tLATENCY\tPATH")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0fs\t%d\t%v\n",
					name, p.Sim.Duration, p.Sim.LatencySteps, p.Path)
			}
			return w.Flush()
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run()
		},
	}

	rootCmd.AddCommand(runCmd, solveCmd, listCmd, plotCmd, chartCmd, exportCSVCmd, exportJSONCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	p := config.GetPreset(preset)
	if p == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	cp := *p
	cfg := &cp

	// Config file overrides the preset, flags override both.
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("time") {
		cfg.Sim.Duration = duration
	}
	if cmd.Flags().Changed("latency") {
		cfg.Sim.LatencySteps = latency
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Sim.Integrator = integName
	}
	if cmd.Flags().Changed("ref-speed") {
		cfg.Controller.RefSpeed = refSpeed
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Controller.Horizon = horizon
	}
	if cmd.Flags().Changed("budget") {
		cfg.Solver.BudgetMS = budgetMS
	}

	if err := cfg.Controller.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ref := poly.Poly(cfg.Path)
	ctrl, err := mpc.New(cfg.Controller, solver.NewAugLag(cfg.SolverOptions()))
	if err != nil {
		return err
	}

	ctx := context.Background()
	tracker := sim.NewTracker(ctx, ctrl, ref)

	var integ sim.Integrator
	if cfg.Sim.Integrator == "euler" {
		integ = integrators.NewEuler()
	} else {
		integ = integrators.NewRK4()
	}

	s := sim.New(vehicle.NewBicycle(cfg.Controller.Lf), integ, tracker)
	s.AddMetric(metrics.NewTrackingRMS(ref))
	s.AddMetric(metrics.NewSpeedError(cfg.Controller.RefSpeed))
	s.AddMetric(metrics.NewControlEffort())
	s.AddMetric(metrics.NewSteerSmoothness())

	init := cfg.GetInitState()
	x0 := sim.State{init.X, init.Y, init.Psi, init.V}

	fmt.Printf("running %s scenario...\n", preset)
	start := time.Now()

	result, err := s.Run(ctx, x0, sim.Config{
		Dt:            cfg.Controller.Dt,
		Duration:      cfg.Sim.Duration,
		LatencySteps:  cfg.Sim.LatencySteps,
		ValidateState: true,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(store.RunMetadata{
		Scenario:   preset,
		Dt:         cfg.Controller.Dt,
		Duration:   cfg.Sim.Duration,
		Horizon:    cfg.Controller.Horizon,
		RefSpeed:   cfg.Controller.RefSpeed,
		Integrator: cfg.Sim.Integrator,
		Path:       cfg.Path,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.States))
	fmt.Printf("mean solve time: %v\n", tracker.MeanSolveTime())
	if tracker.Failures() > 0 {
		fmt.Printf("failed solves: %d of %d\n", tracker.Failures(), tracker.Cycles())
	}
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func solveOnce(cmd *cobra.Command, args []string) error {
	if len(pathCoefs) != 4 {
		return fmt.Errorf("path needs 4 coefficients, got %d", len(pathCoefs))
	}

	cfg := mpc.DefaultConfig()
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = horizon
	}
	opts := solver.DefaultOptions()
	if cmd.Flags().Changed("budget") {
		opts.Budget = time.Duration(budgetMS) * time.Millisecond
	}

	ctrl, err := mpc.New(cfg, solver.NewAugLag(opts))
	if err != nil {
		return err
	}

	ref := poly.Poly(pathCoefs)
	state := mpc.State{
		X:    stateX,
		Y:    stateY,
		Psi:  statePsi,
		V:    stateV,
		CTE:  ref.Eval(stateX) - stateY,
		EPsi: statePsi - ref.Tangent(stateX),
	}

	start := time.Now()
	command, err := ctrl.ComputeControl(context.Background(), state, ref)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	fmt.Printf("status: %v (%v)\n", command.Status, elapsed)
	fmt.Printf("steering: %+.6f\n", command.Steering)
	fmt.Printf("accel: %+.6f\n", command.Accel)
	fmt.Printf("cost: %.4f\n", command.Cost)

	if len(command.Predicted) > 0 {
		ys := make([]float64, len(command.Predicted))
		for i, pt := range command.Predicted {
			ys[i] = pt.Y
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(ys,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("predicted y over horizon"),
		))
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tHORIZON\tINTEG\tRMS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%d\t%s\t%.4f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Horizon,
			run.Integrator,
			run.Metrics["tracking_rms"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(states))

	ref := poly.Poly(meta.Path)
	cte := make([]float64, len(states))
	y := make([]float64, len(states))
	v := make([]float64, len(states))
	for i, s := range states {
		cte[i] = ref.Eval(s[sim.IdxX]) - s[sim.IdxY]
		y[i] = s[sim.IdxY]
		v[i] = s[sim.IdxV]
	}

	for _, plot := range []struct {
		data    []float64
		caption string
	}{
		{cte, "cross-track error"},
		{y, "lateral position"},
		{v, "speed"},
	} {
		fmt.Println(asciigraph.Plot(plot.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(plot.caption),
		))
		fmt.Println()
	}

	_ = times

	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{
		States: make([]sim.State, len(states)),
		Times:  times,
	}
	for i, s := range states {
		result.States[i] = s
	}

	title := fmt.Sprintf("%s (%s)", meta.Scenario, meta.ID)
	if err := chart.RenderFile(chartOut, title, poly.Poly(meta.Path), result); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", chartOut)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "x", "y", "psi", "v"}); err != nil {
		return err
	}
	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{
		States:  make([]sim.State, len(states)),
		Times:   times,
		Metrics: meta.Metrics,
	}
	for i, s := range states {
		result.States[i] = s
	}

	return store.ExportJSONStdout(*meta, result)
}
