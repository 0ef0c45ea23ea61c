// Package experiment wires the phase portrait pipeline together: grid
// sampling, trajectory integration, analysis and image output.
package experiment

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/san-kum/phaseportrait/internal/analysis"
	"github.com/san-kum/phaseportrait/internal/config"
	"github.com/san-kum/phaseportrait/internal/dynamo"
	"github.com/san-kum/phaseportrait/internal/field"
	"github.com/san-kum/phaseportrait/internal/integrators"
	"github.com/san-kum/phaseportrait/internal/physics"
	"github.com/san-kum/phaseportrait/internal/render"
	"github.com/san-kum/phaseportrait/internal/sim"
	"github.com/san-kum/phaseportrait/internal/storage"
	"gonum.org/v1/plot/vg"
)

// resultFile is the JSON trajectory dump written next to each stored run.
const resultFile = "result.json"

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	dyn      *physics.Linear
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		dyn:      physics.NewSpiralSink(),
	}
}

// Portrait is the output of one run.
type Portrait struct {
	Config       *config.Config
	Grid         *field.Grid
	Trajectories []*dynamo.Result
	Params       map[string]float64
	Eigenvalues  []complex128
	FixedPoint   analysis.FixedPointKind
	Lyapunov     float64
	Frequency    float64
}

// Main returns the trajectory from the configured initial state.
func (p *Portrait) Main() *dynamo.Result {
	if len(p.Trajectories) == 0 {
		return nil
	}
	return p.Trajectories[0]
}

func (e *Experiment) simConfig() dynamo.Config {
	ic := e.cfg.Integrator
	cfg := dynamo.DefaultConfig()
	cfg.Tolerance = dynamo.Tolerance{Abs: ic.Atol, Rel: ic.Rtol}
	if ic.Dt > 0 {
		cfg.Dt = ic.Dt
	}
	if ic.Substeps > 0 {
		cfg.Substeps = ic.Substeps
	}
	if ic.MaxSteps > 0 {
		cfg.MaxSteps = ic.MaxSteps
	}
	return cfg
}

func (e *Experiment) Run(ctx context.Context) (*Portrait, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	grid, err := field.Sample(e.dyn, e.cfg.Grid.X0, e.cfg.Grid.X1)
	if err != nil {
		return nil, err
	}

	factory, err := e.registry.IntegratorFactory(e.cfg.Integrator.Method)
	if err != nil {
		return nil, err
	}

	times := e.cfg.Times()
	simCfg := e.simConfig()

	x0s := make([]dynamo.State, 0, 1+len(e.cfg.Trajectory.Extra))
	for _, x := range e.cfg.InitialStates() {
		x0s = append(x0s, dynamo.State(x))
	}

	s := sim.New(e.dyn, factory())
	for _, m := range e.registry.DefaultMetrics(e.cfg.Render.XLim, e.cfg.Render.YLim) {
		s.AddMetric(m)
	}

	primary, err := s.Run(ctx, x0s[0], times, simCfg)
	if err != nil {
		return nil, fmt.Errorf("trajectory from %v: %w", x0s[0], err)
	}

	trajectories := []*dynamo.Result{primary}
	if len(x0s) > 1 {
		extra, err := sim.NewEnsemble(e.dyn, factory).Run(ctx, x0s[1:], times, simCfg)
		if err != nil {
			return nil, fmt.Errorf("extra trajectories: %w", err)
		}
		trajectories = append(trajectories, extra...)
	}

	eigs, err := e.dyn.Eigenvalues()
	if err != nil {
		return nil, err
	}

	p := &Portrait{
		Config:       e.cfg,
		Grid:         grid,
		Trajectories: trajectories,
		Params:       e.dyn.GetParams(),
		Eigenvalues:  eigs,
		FixedPoint:   analysis.ClassifyFixedPoint(eigs),
	}

	if len(times) > 1 {
		dt := times[1] - times[0]
		xs := make([]float64, len(primary.States))
		for i, x := range primary.States {
			xs[i] = x[0]
		}
		p.Frequency = analysis.DominantFrequency(xs, dt)

		p.Lyapunov = analysis.LyapunovExponent(e.dyn, integrators.NewRK4(), primary.States[0], dt, times[len(times)-1]-times[0], 1e-8)
	}

	return p, nil
}

// RenderOptions converts the render section of the config.
func RenderOptions(rc config.RenderConfig) (render.Options, error) {
	arrow, err := render.ParseColor(rc.ArrowColor)
	if err != nil {
		return render.Options{}, err
	}
	line, err := render.ParseColor(rc.LineColor)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Width:      vg.Length(rc.WidthIn) * vg.Inch,
		Height:     vg.Length(rc.HeightIn) * vg.Inch,
		DPI:        rc.DPI,
		XMin:       rc.XLim[0],
		XMax:       rc.XLim[1],
		YMin:       rc.YLim[0],
		YMax:       rc.YLim[1],
		Title:      rc.Title,
		XLabel:     rc.XLabel,
		YLabel:     rc.YLabel,
		FontSize:   vg.Points(rc.FontSize),
		ArrowColor: arrow,
		LineColor:  line,
		LineWidth:  vg.Points(rc.LineWidth),
	}, nil
}

// WriteImages renders the field-only and the field-plus-trajectory images
// into dir and returns their paths.
func (p *Portrait) WriteImages(dir string) ([]string, error) {
	opts, err := RenderOptions(p.Config.Render)
	if err != nil {
		return nil, err
	}

	fieldPath := filepath.Join(dir, p.Config.Output.FieldFile)
	if err := render.SavePNG(fieldPath, p.Grid, nil, opts); err != nil {
		return nil, err
	}

	trajPath := filepath.Join(dir, p.Config.Output.TrajectoryFile)
	if err := render.SavePNG(trajPath, p.Grid, p.Trajectories, opts); err != nil {
		return []string{fieldPath}, err
	}

	return []string{fieldPath, trajPath}, nil
}

// Save stores the grid and the main trajectory as a new run in st.
func (p *Portrait) Save(st *storage.Store) (string, error) {
	if err := st.Init(); err != nil {
		return "", err
	}
	runID, err := st.Save(storage.Run{
		Integrator: p.Config.Integrator.Method,
		Grid:       p.Grid,
		Trajectory: p.Main(),
		FixedPoint: p.FixedPoint.String(),
	})
	if err != nil {
		return "", err
	}
	path := st.Path(runID, resultFile)
	if err := storage.ExportJSON(path, p.Config.Integrator.Method, p.Main()); err != nil {
		return "", err
	}
	return runID, nil
}

// Load rebuilds a portrait from a stored run. Rendering follows cfg; the
// grid and trajectory come from disk.
func (e *Experiment) Load(st *storage.Store, runID string) (*Portrait, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	grid, err := st.LoadField(runID)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	traj := &dynamo.Result{
		Times:   times,
		States:  make([]dynamo.State, len(states)),
		Metrics: meta.Metrics,
	}
	for i, x := range states {
		traj.States[i] = dynamo.State(x)
	}

	eigs, err := e.dyn.Eigenvalues()
	if err != nil {
		return nil, err
	}

	cfg := *e.cfg
	cfg.Integrator.Method = meta.Integrator
	return &Portrait{
		Config:       &cfg,
		Grid:         grid,
		Trajectories: []*dynamo.Result{traj},
		Params:       e.dyn.GetParams(),
		Eigenvalues:  eigs,
		FixedPoint:   analysis.ClassifyFixedPoint(eigs),
	}, nil
}
