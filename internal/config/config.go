package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/phaseportrait/internal/field"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSamplesPerAxis = 20
	DefaultTimeSamples    = 200
	DefaultTEnd           = 2.0
	DefaultDPI            = 600
	DefaultFigureInches   = 8.0
	DefaultFontSize       = 14.0
	DefaultLineWidth      = 3.0
	DefaultSubsteps       = 10
	DefaultMaxSteps       = 100000

	FieldFile      = "phasePortrait.png"
	TrajectoryFile = "phasePortraitStateTrajectory.png"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Trajectory TrajectoryConfig `yaml:"trajectory"`
	Integrator IntegratorConfig `yaml:"integrator"`
	Render     RenderConfig     `yaml:"render"`
	Output     OutputConfig     `yaml:"output"`
}

type GridConfig struct {
	X0 field.Axis `yaml:"x0"`
	X1 field.Axis `yaml:"x1"`
}

type TrajectoryConfig struct {
	InitialState []float64   `yaml:"initial_state"`
	Extra        [][]float64 `yaml:"extra_initial_states,omitempty"`
	TStart       float64     `yaml:"t_start"`
	TEnd         float64     `yaml:"t_end"`
	Samples      int         `yaml:"samples"`
}

type IntegratorConfig struct {
	Method   string  `yaml:"method"`
	Rtol     float64 `yaml:"rtol"`
	Atol     float64 `yaml:"atol"`
	Dt       float64 `yaml:"dt"`
	Substeps int     `yaml:"substeps"`
	MaxSteps int     `yaml:"max_steps"`
}

type RenderConfig struct {
	WidthIn    float64    `yaml:"width_in"`
	HeightIn   float64    `yaml:"height_in"`
	DPI        int        `yaml:"dpi"`
	XLim       [2]float64 `yaml:"xlim"`
	YLim       [2]float64 `yaml:"ylim"`
	Title      string     `yaml:"title"`
	XLabel     string     `yaml:"x_label"`
	YLabel     string     `yaml:"y_label"`
	FontSize   float64    `yaml:"font_size"`
	ArrowColor string     `yaml:"arrow_color"`
	LineColor  string     `yaml:"line_color"`
	LineWidth  float64    `yaml:"line_width"`
}

type OutputConfig struct {
	Dir            string `yaml:"dir"`
	FieldFile      string `yaml:"field_file"`
	TrajectoryFile string `yaml:"trajectory_file"`
	ExportDir      string `yaml:"export_dir,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			X0: field.Axis{Min: -2, Max: 2, N: DefaultSamplesPerAxis},
			X1: field.Axis{Min: -2, Max: 3, N: DefaultSamplesPerAxis},
		},
		Trajectory: TrajectoryConfig{
			InitialState: []float64{-1, -1},
			TStart:       0,
			TEnd:         DefaultTEnd,
			Samples:      DefaultTimeSamples,
		},
		Integrator: IntegratorConfig{
			Method:   "rk45",
			Rtol:     1e-8,
			Atol:     1e-10,
			Dt:       1e-3,
			Substeps: DefaultSubsteps,
			MaxSteps: DefaultMaxSteps,
		},
		Render: RenderConfig{
			WidthIn:    DefaultFigureInches,
			HeightIn:   DefaultFigureInches,
			DPI:        DefaultDPI,
			XLim:       [2]float64{-2, 2},
			YLim:       [2]float64{-2, 2},
			Title:      "Phase Portrait",
			XLabel:     "x1",
			YLabel:     "x2",
			FontSize:   DefaultFontSize,
			ArrowColor: "#0000ff",
			LineColor:  "#ff0000",
			LineWidth:  DefaultLineWidth,
		},
		Output: OutputConfig{
			Dir:            ".",
			FieldFile:      FieldFile,
			TrajectoryFile: TrajectoryFile,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal renders cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) Validate() error {
	if err := c.Grid.X0.Validate(); err != nil {
		return fmt.Errorf("%w: grid.x0: %v", ErrInvalidConfig, err)
	}
	if err := c.Grid.X1.Validate(); err != nil {
		return fmt.Errorf("%w: grid.x1: %v", ErrInvalidConfig, err)
	}
	if len(c.Trajectory.InitialState) != 2 {
		return fmt.Errorf("%w: trajectory.initial_state needs 2 values, got %d", ErrInvalidConfig, len(c.Trajectory.InitialState))
	}
	for i, x := range c.Trajectory.Extra {
		if len(x) != 2 {
			return fmt.Errorf("%w: trajectory.extra_initial_states[%d] needs 2 values, got %d", ErrInvalidConfig, i, len(x))
		}
	}
	if c.Trajectory.Samples < 1 {
		return fmt.Errorf("%w: trajectory.samples must be positive, got %d", ErrInvalidConfig, c.Trajectory.Samples)
	}
	if c.Trajectory.Samples > 1 && c.Trajectory.TEnd <= c.Trajectory.TStart {
		return fmt.Errorf("%w: trajectory.t_end %g must exceed t_start %g", ErrInvalidConfig, c.Trajectory.TEnd, c.Trajectory.TStart)
	}
	if c.Render.DPI <= 0 || c.Render.WidthIn <= 0 || c.Render.HeightIn <= 0 {
		return fmt.Errorf("%w: render size %gx%g in at %d dpi", ErrInvalidConfig, c.Render.WidthIn, c.Render.HeightIn, c.Render.DPI)
	}
	if c.Render.XLim[1] <= c.Render.XLim[0] || c.Render.YLim[1] <= c.Render.YLim[0] {
		return fmt.Errorf("%w: render limits must be increasing", ErrInvalidConfig)
	}
	return nil
}

// Times returns the trajectory sample times.
func (c *Config) Times() []float64 {
	return field.Linspace(c.Trajectory.TStart, c.Trajectory.TEnd, c.Trajectory.Samples)
}

// InitialStates returns the main initial state followed by any extras.
func (c *Config) InitialStates() [][]float64 {
	out := make([][]float64, 0, 1+len(c.Trajectory.Extra))
	out = append(out, c.Trajectory.InitialState)
	return append(out, c.Trajectory.Extra...)
}
