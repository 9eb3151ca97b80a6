package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/ssmsim/internal/analysis"
	"github.com/san-kum/ssmsim/internal/automation"
	"github.com/san-kum/ssmsim/internal/config"
	"github.com/san-kum/ssmsim/internal/experiment"
	"github.com/san-kum/ssmsim/internal/export"
	"github.com/san-kum/ssmsim/internal/metrics"
	"github.com/san-kum/ssmsim/internal/optim"
	"github.com/san-kum/ssmsim/internal/report"
	"github.com/san-kum/ssmsim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	verbose   bool
	dim       int
	steps     int
	seed      int64
	rng       string
	input     string
	amplitude float64
	threshold float64
	validate  bool
	// Config file
	configFile string
	// Preset name
	preset string
	// Prometheus textfile output
	promFile string
	// Phase plot axes
	xAxis int
	yAxis int
	// SVG output
	outPath string
	runs    int
	trials  int
	// Sweep and search
	paramName  string
	paramMin   float64
	paramMax   float64
	points     int
	metricName string
	grid       []string
)

// main registers the commands and flags and executes the root command, which
// runs the demonstration when no subcommand is given. It exits with status 1
// on any error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "ssmsim",
		Short:         "random linear state-space model simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		RunE: runDemo,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ssmsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "N=4, T=10, seed 0: print shapes and the first timesteps",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "generate, simulate and store a model",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&promFile, "prom-file", "", "write run metrics in Prometheus text format")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata and matrices",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot input, output and hidden states",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the output",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of two state components",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the output signal as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDIM\tSTEPS\tSEED\tRNG\tINPUT")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n", name, p.Dim, p.Steps, p.Seed, p.RNG, p.Input.Kind)
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time simulations across state dimensions",
		Args:  cobra.NoArgs,
		RunE:  benchModels,
	}
	benchCmd.Flags().IntVar(&runs, "runs", 8, "seeds per dimension")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run the demo model over independent input draws",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of input sequences")
	ensembleCmd.Flags().IntVarP(&dim, "dim", "n", config.DefaultDim, "state dimension N")
	ensembleCmd.Flags().IntVarP(&steps, "steps", "t", config.DefaultSteps, "timesteps T")
	ensembleCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of configurations from YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter over a range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&paramName, "param", "amplitude", fmt.Sprintf("parameter to vary %v", config.Params))
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&points, "points", 5, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "count stable models over consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of seeds")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search minimizing a metric",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	searchCmd.Flags().StringArrayVar(&grid, "grid", []string{"seed=0,1,2,3"}, "name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&metricName, "metric", "peak_output", "metric to minimize")

	for _, c := range []*cobra.Command{sweepCmd, monteCarloCmd, searchCmd} {
		addRunFlags(c)
	}

	rootCmd.AddCommand(demoCmd, runCmd, listCmd, showCmd, plotCmd, analyzeCmd, phaseCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd, ensembleCmd,
		scenarioCmd, sweepCmd, monteCarloCmd, searchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	exp := experiment.New(*config.DefaultConfig(), nil, slog.Default())
	if err := exp.Setup(); err != nil {
		return err
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	report.New(os.Stdout).Demo(exp.Model(), result, 3)
	return nil
}

// addRunFlags registers the flags resolveConfig reads.
func addRunFlags(c *cobra.Command) {
	c.Flags().IntVarP(&dim, "dim", "n", config.DefaultDim, "state dimension N")
	c.Flags().IntVarP(&steps, "steps", "t", config.DefaultSteps, "timesteps T")
	c.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	c.Flags().StringVar(&rng, "rng", config.DefaultRNG, "random source (threefry, pcg)")
	c.Flags().StringVar(&input, "input", config.DefaultInput, "input signal (uniform, step, impulse, zero)")
	c.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "input amplitude")
	c.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "stability metric threshold")
	c.Flags().BoolVar(&validate, "validate", false, "abort on the first NaN/Inf state")
	c.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	c.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	// config file overrides preset
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// explicit flags override both
	flags := cmd.Flags()
	if preset == "" && configFile == "" || flags.Changed("dim") {
		cfg.Dim = dim
	}
	if preset == "" && configFile == "" || flags.Changed("steps") {
		cfg.Steps = steps
	}
	if preset == "" && configFile == "" || flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("rng") {
		cfg.RNG = rng
	}
	if flags.Changed("input") {
		cfg.Input.Kind = input
	}
	if flags.Changed("amplitude") {
		cfg.Input.Amplitude = amplitude
	}
	if flags.Changed("threshold") {
		cfg.Metrics.Threshold = threshold
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(*cfg, nil, slog.Default())
	if err := exp.Setup(); err != nil {
		return err
	}

	var exporter *metrics.Exporter
	if promFile != "" {
		exporter = metrics.NewExporter()
		exp.GetSimulator().AddObserver(exporter)
	}

	fmt.Printf("running N=%d T=%d seed=%d (%s, %s input)...\n", cfg.Dim, cfg.Steps, cfg.Seed, cfg.RNG, cfg.Input.Kind)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	rho, err := exp.Model().SpectralRadius()
	if err != nil {
		slog.Warn("spectral radius unavailable", "error", err)
		rho = math.NaN()
	}

	if exporter != nil {
		exporter.Record(result.Metrics, rho, elapsed)
		if err := exporter.WriteTextfile(promFile); err != nil {
			return err
		}
		slog.Info("prometheus metrics written", "path", promFile)
	}

	runID, err := st.Save(storage.RunMetadata{
		Dim:            cfg.Dim,
		Steps:          cfg.Steps,
		Seed:           cfg.Seed,
		RNG:            cfg.RNG,
		Input:          cfg.Input.Kind,
		SpectralRadius: finiteOrZero(rho),
	}, exp.Model(), result)
	if err != nil {
		return err
	}
	slog.Debug("run stored", "id", runID, "dir", dataDir)

	p := report.New(os.Stdout)
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("spectral radius: %.6f\n\n", rho)
	p.Demo(exp.Model(), result, 3)
	fmt.Println()
	p.Metrics(result.Metrics)

	return nil
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
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
	fmt.Fprintln(w, "ID\tTIME\tN\tT\tSEED\tRNG\tINPUT\tRHO")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dim,
			run.Steps,
			run.Seed,
			run.RNG,
			run.Input,
			run.SpectralRadius,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	model, err := st.LoadModel(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("N=%d T=%d seed=%d rng=%s input=%s\n", meta.Dim, meta.Steps, meta.Seed, meta.RNG, meta.Input)
	fmt.Printf("spectral radius: %.6f\n\n", meta.SpectralRadius)

	p := report.New(os.Stdout)
	p.Matrices(model)
	p.Metrics(meta.Metrics)
	if len(meta.NonFinite) > 0 {
		fmt.Printf("non-finite metrics: %v\n", meta.NonFinite)
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", result.Len())

	p := report.New(os.Stdout)
	p.Plot(result.U, "u (input)", 80, 8)
	p.Plot(result.Y, "y (output)", 80, 10)

	_, n := result.X.Dims()
	maxPlots := 4
	if n > maxPlots {
		n = maxPlots
	}
	for i := 0; i < n; i++ {
		col := make([]float64, result.Len())
		for t := range col {
			col[t] = result.X.At(t, i)
		}
		p.Plot(col, fmt.Sprintf("x%d vs t", i), 80, 8)
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	ps := analysis.PowerSpectrum(result.Y)
	report.New(os.Stdout).Plot(ps, "power spectrum (y)", 80, 15)

	bin := analysis.DominantBin(ps)
	if bin == 0 {
		fmt.Println("no dominant frequency (output is DC or flat)")
		return nil
	}

	freq := analysis.BinFrequency(bin, len(result.Y))
	fmt.Printf("dominant frequency: %.4f cycles/step\n", freq)
	fmt.Printf("period: %.2f steps\n", 1.0/freq)

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	points, err := analysis.PhasePortrait(result, xAxis, yAxis)
	if err != nil {
		return err
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("x-axis: x%d, y-axis: x%d\n\n", xAxis, yAxis)
	fmt.Print(analysis.ScatterASCII(points, 70, 20))
	fmt.Printf("\nLegend: . = early, o = middle, ● = late\n")

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	_, n := result.X.Dims()
	header := []string{"t", "u"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	header = append(header, "y")
	if err := w.Write(header); err != nil {
		return err
	}

	for t := 0; t < result.Len(); t++ {
		row := []string{strconv.Itoa(t), strconv.FormatFloat(result.U[t], 'f', 6, 64)}
		for i := 0; i < n; i++ {
			row = append(row, strconv.FormatFloat(result.X.At(t, i), 'f', 6, 64))
		}
		row = append(row, strconv.FormatFloat(result.Y[t], 'f', 6, 64))
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	model, err := st.LoadModel(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSONStdout(meta, model, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	svg := export.SeriesToSVG(result.Y, 800, 400, "#00ff88")
	if svg == "" {
		return fmt.Errorf("not enough finite output samples to draw")
	}

	if outPath == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
		return err
	}
	slog.Info("svg written", "path", outPath)
	return nil
}

func benchModels(cmd *cobra.Command, args []string) error {
	dims := []int{4, 16, 64}
	horizons := []int{100, 1000}

	seeds, err := experiment.SeedRange(runs)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %d seeds per configuration\n\n", runs)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tT\tRUNS\tTIME\tSTEPS/SEC")

	for _, n := range dims {
		for _, t := range horizons {
			cfg := config.DefaultConfig()
			cfg.Dim = n
			cfg.Steps = t

			start := time.Now()
			results, err := experiment.RunSeeds(context.Background(), *cfg, seeds, slog.Default())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			total := 0
			for _, r := range results {
				total += r.StepsTaken
			}
			stepsPerSec := float64(total) / elapsed.Seconds()

			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n", n, t, len(results), elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Dim = dim
	cfg.Steps = steps
	cfg.Seed = seed
	if err := cfg.Validate(); err != nil {
		return err
	}

	results, err := experiment.InputEnsemble(context.Background(), *cfg, runs, slog.Default())
	if err != nil {
		return err
	}

	fmt.Printf("%d input draws through one N=%d model (seed %d)\n\n", len(results), cfg.Dim, cfg.Seed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tY[T-1]\tPEAK\tENERGY")

	final := make([]float64, len(results))
	for i, r := range results {
		final[i] = r.Y[r.Len()-1]
		fmt.Fprintf(w, "%d\t%.6g\t%.6g\t%.6g\n", i, final[i], r.Metrics["peak_output"], r.Metrics["output_energy"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := meanStd(final)
	fmt.Printf("\nfinal output mean %.6g, std %.6g\n", mean, std)
	return nil
}

func meanStd(v []float64) (float64, float64) {
	if len(v) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	mean := sum / float64(len(v))
	ss := 0.0
	for _, x := range v {
		ss += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / float64(len(v)))
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	results, err := automation.RunScenario(context.Background(), sc, slog.Default())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tN\tT\tSEED\tRHO\tY[T-1]\tSAVED")
	for i, r := range results {
		saved := "-"
		if r.Step.SaveAs != "" {
			id, err := st.Save(storage.RunMetadata{
				ID:             r.Step.SaveAs,
				Dim:            r.Config.Dim,
				Steps:          r.Config.Steps,
				Seed:           r.Config.Seed,
				RNG:            r.Config.RNG,
				Input:          r.Config.Input.Kind,
				SpectralRadius: finiteOrZero(r.SpectralRadius),
			}, r.Model, r.Result)
			if err != nil {
				return err
			}
			saved = id
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.4f\t%.6g\t%s\n",
			i+1, r.Config.Dim, r.Config.Steps, r.Config.Seed, r.SpectralRadius, r.Result.Y[r.Result.Len()-1], saved)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(context.Background(), &automation.ParameterSweep{
		Base:      *cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  points,
	}, slog.Default())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tRHO\tY[T-1]\tPEAK\n", strings.ToUpper(paramName))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.6g\t%.6g\n", r.ParamValue, r.SpectralRadius, r.FinalOutput, r.PeakOutput)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(context.Background(), &automation.MonteCarloConfig{
		Base:      *cfg,
		NumTrials: trials,
	}, slog.Default())
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	rhos := make([]float64, len(results))
	for i, r := range results {
		rhos[i] = r.SpectralRadius
	}
	mean, std := meanStd(rhos)

	fmt.Printf("N=%d, %d seeds from %d\n", cfg.Dim, len(results), cfg.Seed)
	fmt.Printf("stable: %d, unstable: %d\n", stable, unstable)
	fmt.Printf("spectral radius mean %.4f, std %.4f\n", mean, std)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(grid))
	ranges := make([][]float64, 0, len(grid))
	for _, arg := range grid {
		name, values, err := parseGrid(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	params, best, err := optim.NewGridSearch(names, ranges).Search(context.Background(), *cfg, metricName, slog.Default())
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6g\n", metricName, best)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, params[name])
	}
	return nil
}

// parseGrid reads "name=v1,v2,...".
func parseGrid(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad grid %q, want name=v1,v2", arg)
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad grid value in %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
