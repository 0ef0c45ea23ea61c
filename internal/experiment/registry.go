package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/phaseportrait/internal/dynamo"
	"github.com/san-kum/phaseportrait/internal/integrators"
	"github.com/san-kum/phaseportrait/internal/metrics"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return fn(), nil
}

// IntegratorFactory returns the constructor for name, for callers that
// need one integrator per goroutine.
func (r *Registry) IntegratorFactory(name string) (func() dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return fn, nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are observed on the main trajectory. xlim and ylim are
// the plotted view.
func (r *Registry) DefaultMetrics(xlim, ylim [2]float64) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewContraction(),
		metrics.NewStability(xlim, ylim),
		metrics.NewPathLength(),
	}
}
