package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/san-kum/phaseportrait/internal/analysis"
	"github.com/san-kum/phaseportrait/internal/config"
	"github.com/san-kum/phaseportrait/internal/experiment"
	"github.com/san-kum/phaseportrait/internal/storage"
	"github.com/san-kum/phaseportrait/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	outDir     string
	dpi        int
	integrator string
	show       bool
	exportDir  string
	dataDir    string
)

const defaultDataDir = ".phaseportrait"

// main exits 1 when the selected command fails.
func main() {
	log.SetFlags(0)
	log.SetPrefix("phaseportrait: ")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "phaseportrait",
		Short:        "phase portrait of a 2D linear system",
		SilenceUsage: true,
		RunE:         runPortrait,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&integrator, "integrator", "rk45", "integrator (euler, rk4, rk45)")

	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", ".", "directory for the png files")
	rootCmd.PersistentFlags().IntVar(&dpi, "dpi", config.DefaultDPI, "output resolution")
	rootCmd.Flags().BoolVar(&show, "show", false, "open the terminal viewer after writing")
	rootCmd.Flags().StringVar(&exportDir, "export", "", "also write grid and trajectory data under this directory")

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "show the portrait in the terminal without writing files",
		RunE:  runPreview,
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "print fixed point analysis and trajectory metrics",
		RunE:  runInfo,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list runs stored with --export",
		RunE:  listRuns,
	}
	runsCmd.Flags().StringVar(&dataDir, "dir", defaultDataDir, "export directory to read")

	replotCmd := &cobra.Command{
		Use:   "replot [run_id]",
		Short: "render the images of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  replotRun,
	}
	replotCmd.Flags().StringVar(&dataDir, "dir", defaultDataDir, "export directory to read")

	rootCmd.AddCommand(previewCmd, infoCmd, configCmd, presetsCmd, runsCmd, replotCmd)
	return rootCmd
}

// loadConfig layers defaults or the config file, then the preset, then
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" && !config.Apply(cfg, preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	// Flags only override the file when given on the command line.
	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator.Method = integrator
	}
	if flags.Changed("out-dir") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("dpi") {
		cfg.Render.DPI = dpi
	}
	if flags.Changed("export") {
		cfg.Output.ExportDir = exportDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func compute(cmd *cobra.Command) (*experiment.Portrait, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return experiment.New(cfg).Run(cmd.Context())
}

func runPortrait(cmd *cobra.Command, args []string) error {
	start := time.Now()
	p, err := compute(cmd)
	if err != nil {
		return err
	}
	cfg := p.Config

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return err
	}

	fmt.Printf("rendering %dx%d grid at %d dpi...\n", cfg.Grid.X0.N, cfg.Grid.X1.N, cfg.Render.DPI)
	paths, err := p.WriteImages(cfg.Output.Dir)
	for _, path := range paths {
		fmt.Printf("wrote %s\n", path)
	}
	if err != nil {
		return err
	}

	if cfg.Output.ExportDir != "" {
		if err := export(p, cfg.Output.ExportDir); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))

	if show {
		return preview(p)
	}
	return nil
}

func export(p *experiment.Portrait, dir string) error {
	runID, err := p.Save(storage.New(dir))
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("no runs in %s\n", dataDir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tINTEGRATOR\tSAMPLES\tGRID\tFIXED POINT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dx%d\t%s\n",
			r.ID, r.Timestamp.Format(time.RFC3339), r.Integrator, r.Samples, r.GridRows, r.GridCols, r.FixedPoint)
	}
	return w.Flush()
}

func replotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := experiment.New(cfg).Load(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return err
	}
	paths, err := p.WriteImages(cfg.Output.Dir)
	for _, path := range paths {
		fmt.Printf("wrote %s\n", path)
	}
	if err != nil {
		return err
	}

	fmt.Println(viz.TimeSeries(p.Main(), 60, 12))
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	p, err := compute(cmd)
	if err != nil {
		return err
	}
	return preview(p)
}

func preview(p *experiment.Portrait) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		log.Print("stdout is not a terminal, skipping viewer")
		return nil
	}

	rc := p.Config.Render
	scene := viz.Scene{
		Grid:         p.Grid,
		Trajectories: p.Trajectories,
		XMin:         rc.XLim[0],
		XMax:         rc.XLim[1],
		YMin:         rc.YLim[0],
		YMax:         rc.YLim[1],
	}
	return viz.RunViewer(viz.NewViewer(scene, rc.Title, summary(p)...))
}

func summary(p *experiment.Portrait) []string {
	kind := viz.WarnStyle.Render(p.FixedPoint.String())
	if p.FixedPoint.Stable() {
		kind = viz.OKStyle.Render(p.FixedPoint.String())
	}
	lines := []string{
		viz.Fieldf("matrix A", "[[%g, %g], [%g, %g]]", p.Params["a00"], p.Params["a01"], p.Params["a10"], p.Params["a11"]),
		viz.Field("fixed point", kind),
	}
	for i, ev := range p.Eigenvalues {
		lines = append(lines, viz.Fieldf(fmt.Sprintf("eigenvalue %d", i+1), "%.4g%+.4gi", real(ev), imag(ev)))
	}
	return append(lines,
		viz.Fieldf("decay rate", "%.4g", analysis.DecayRate(p.Eigenvalues)),
		viz.Fieldf("angular freq", "%.4g rad/s", analysis.AngularFrequency(p.Eigenvalues)),
	)
}

func runInfo(cmd *cobra.Command, args []string) error {
	p, err := compute(cmd)
	if err != nil {
		return err
	}
	traj := p.Main()

	fmt.Print(viz.Section("System", summary(p)...))
	fmt.Println()

	lines := []string{
		viz.Fieldf("integrator", "%s", p.Config.Integrator.Method),
		viz.Fieldf("samples", "%d", len(traj.States)),
		viz.Fieldf("steps", "%d (%d rejected)", traj.StepsTaken, traj.Rejected),
		viz.Fieldf("final state", "(%.6f, %.6f)", traj.Final()[0], traj.Final()[1]),
		viz.Fieldf("lyapunov", "%.4f", p.Lyapunov),
		viz.Fieldf("dominant freq", "%.3f hz", p.Frequency),
	}
	for _, name := range []string{"contraction", "stability", "path_length"} {
		if v, ok := traj.Metrics[name]; ok {
			lines = append(lines, viz.Fieldf(name, "%.6f", v))
		}
	}
	fmt.Print(viz.Section("Trajectory", lines...))
	fmt.Println()
	fmt.Println(viz.TimeSeries(traj, 60, 12))
	return nil
}
