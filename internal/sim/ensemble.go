package sim

import (
	"context"
	"sync"

	"github.com/san-kum/phaseportrait/internal/dynamo"
)

// Ensemble integrates several initial states concurrently with the same
// system, integrator factory and sample times.
type Ensemble struct {
	dyn           dynamo.System
	newIntegrator func() dynamo.Integrator
}

// NewEnsemble takes an integrator factory because fixed-step integrators
// keep scratch buffers and must not be shared between goroutines.
func NewEnsemble(dyn dynamo.System, newIntegrator func() dynamo.Integrator) *Ensemble {
	return &Ensemble{dyn: dyn, newIntegrator: newIntegrator}
}

func (e *Ensemble) Run(ctx context.Context, x0s []dynamo.State, times []float64, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(x0s))
	errs := make([]error, len(x0s))

	var wg sync.WaitGroup
	for i := range x0s {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			s := New(e.dyn, e.newIntegrator())
			results[idx], errs[idx] = s.Run(ctx, x0s[idx], times, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
