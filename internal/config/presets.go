package config

import "sort"

// Presets tweak the default configuration for common viewing needs.
var Presets = map[string]func(*Config){
	// draft renders at screen resolution for quick iteration.
	"draft": func(c *Config) {
		c.Render.DPI = 96
	},
	// full widens the y limits to the whole sampled x1 range.
	"full": func(c *Config) {
		c.Render.YLim = [2]float64{c.Grid.X1.Min, c.Grid.X1.Max}
	},
	// zoom inspects the neighbourhood of the fixed point.
	"zoom": func(c *Config) {
		c.Grid.X0 = c.Grid.X0.Scaled(0.25)
		c.Grid.X1 = c.Grid.X1.Scaled(0.25)
		c.Render.XLim = [2]float64{-0.5, 0.5}
		c.Render.YLim = [2]float64{-0.5, 0.5}
		c.Trajectory.InitialState = []float64{-0.25, -0.25}
		c.Trajectory.TEnd = 4
		c.Trajectory.Samples = 400
	},
	// fan adds trajectories from the four corners of the view.
	"fan": func(c *Config) {
		c.Trajectory.Extra = [][]float64{{2, 2}, {-2, 2}, {2, -2}, {-2, -2}}
		c.Trajectory.TEnd = 4
		c.Trajectory.Samples = 400
	},
}

// Apply applies the named preset to cfg in place.
func Apply(cfg *Config, name string) bool {
	apply, ok := Presets[name]
	if ok {
		apply(cfg)
	}
	return ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
