package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phaseportrait/internal/dynamo"
	"github.com/san-kum/phaseportrait/internal/field"
	"github.com/san-kum/phaseportrait/internal/integrators"
	"github.com/san-kum/phaseportrait/internal/physics"
	"github.com/san-kum/phaseportrait/internal/sim"
)

// blowUp is dx/dt = x², which escapes to infinity at t = 1/x0.
type blowUp struct{}

func (blowUp) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}
func (blowUp) StateDim() int   { return 1 }
func (blowUp) ControlDim() int { return 0 }

type countingObserver struct{ n int }

func (c *countingObserver) OnStep(dynamo.State, dynamo.Control, float64) { c.n++ }

func closedForm(x0 dynamo.State, t float64) dynamo.State {
	d := math.Exp(-t)
	c, s := math.Cos(3*t), math.Sin(3*t)
	return dynamo.State{d * (c*x0[0] - s*x0[1]), d * (s*x0[0] + c*x0[1])}
}

var _ = Describe("Simulator", func() {
	var (
		ctx   context.Context
		times []float64
		x0    dynamo.State
		cfg   dynamo.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		times = field.Linspace(0, 2, 200)
		x0 = dynamo.State{-1, -1}
		cfg = dynamo.DefaultConfig()
	})

	Context("spiral sink with RK45", func() {
		var result *dynamo.Result

		BeforeEach(func() {
			var err error
			result, err = sim.New(physics.NewSpiralSink(), integrators.NewRK45()).Run(ctx, x0, times, cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns one state per sample", func() {
			Expect(result.States).To(HaveLen(200))
			Expect(result.Times).To(Equal(times))
		})

		It("starts at the initial state", func() {
			Expect(result.States[0][0]).To(BeNumerically("~", -1, 1e-12))
			Expect(result.States[0][1]).To(BeNumerically("~", -1, 1e-12))
		})

		It("spirals toward the origin", func() {
			Expect(result.Final().Norm()).To(BeNumerically("<", x0.Norm()))
		})

		It("follows the closed-form solution", func() {
			for i, t := range result.Times {
				want := closedForm(x0, t)
				Expect(result.States[i][0]).To(BeNumerically("~", want[0], 1e-6), "x0 at t=%g", t)
				Expect(result.States[i][1]).To(BeNumerically("~", want[1], 1e-6), "x1 at t=%g", t)
			}
		})

		It("is deterministic", func() {
			again, err := sim.New(physics.NewSpiralSink(), integrators.NewRK45()).Run(ctx, x0, times, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.States).To(Equal(result.States))
		})

		It("does not alias the caller's initial state", func() {
			result.States[0][0] = 99
			Expect(x0[0]).To(Equal(-1.0))
		})
	})

	Context("fixed-step integrators", func() {
		It("tracks the closed form with RK4 substeps", func() {
			result, err := sim.New(physics.NewSpiralSink(), integrators.NewRK4()).Run(ctx, x0, times, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.States).To(HaveLen(200))
			want := closedForm(x0, 2)
			Expect(result.Final()[0]).To(BeNumerically("~", want[0], 1e-8))
			Expect(result.Final()[1]).To(BeNumerically("~", want[1], 1e-8))
			Expect(result.StepsTaken).To(Equal(199 * cfg.Substeps))
		})

		It("still contracts with Euler", func() {
			result, err := sim.New(physics.NewSpiralSink(), integrators.NewEuler()).Run(ctx, x0, times, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Final().Norm()).To(BeNumerically("<", x0.Norm()))
		})
	})

	Context("observers and metrics", func() {
		It("sees every recorded sample", func() {
			obs := &countingObserver{}
			s := sim.New(physics.NewSpiralSink(), integrators.NewRK45())
			s.AddObserver(obs)
			_, err := s.Run(ctx, x0, times, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.n).To(Equal(200))
		})
	})

	Context("failure reporting", func() {
		It("reports a finite-time blow-up instead of returning NaN", func() {
			result, err := sim.New(blowUp{}, integrators.NewRK45()).Run(ctx, dynamo.State{1}, field.Linspace(0, 2, 50), cfg)
			Expect(err).To(MatchError(dynamo.ErrIntegrationFailed))
			Expect(result).To(BeNil())

			var simErr *dynamo.SimulationError
			Expect(err).To(BeAssignableToTypeOf(simErr))
			simErr = err.(*dynamo.SimulationError)
			Expect(simErr.State.IsValid()).To(BeTrue())
			Expect(simErr.Time).To(BeNumerically("<", 1.0))
		})

		It("reports an exhausted step budget on stiff dynamics", func() {
			stiff, err := physics.NewLinear(1, []float64{-1e6})
			Expect(err).NotTo(HaveOccurred())
			cfg.MaxSteps = 50
			_, err = sim.New(stiff, integrators.NewRK45()).Run(ctx, dynamo.State{1}, times, cfg)
			Expect(err).To(MatchError(dynamo.ErrTooManySteps))
			Expect(err).To(MatchError(dynamo.ErrIntegrationFailed))
		})

		It("reports NaN from a fixed-step integrator", func() {
			_, err := sim.New(blowUp{}, integrators.NewEuler()).Run(ctx, dynamo.State{1}, field.Linspace(0, 5, 3), cfg)
			Expect(err).To(MatchError(dynamo.ErrIntegrationFailed))
		})
	})

	Context("input validation", func() {
		It("rejects empty and non-increasing times", func() {
			s := sim.New(physics.NewSpiralSink(), integrators.NewRK45())
			_, err := s.Run(ctx, x0, nil, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidTimes))
			_, err = s.Run(ctx, x0, []float64{0, 1, 1}, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidTimes))
		})

		It("rejects a state of the wrong dimension", func() {
			_, err := sim.New(physics.NewSpiralSink(), integrators.NewRK45()).Run(ctx, dynamo.State{1, 2, 3}, times, cfg)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("returns just the initial state for a single sample", func() {
			result, err := sim.New(physics.NewSpiralSink(), integrators.NewRK45()).Run(ctx, x0, []float64{0}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.States).To(Equal([]dynamo.State{{-1, -1}}))
		})

		It("stops on a canceled context", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := sim.New(physics.NewSpiralSink(), integrators.NewRK45()).Run(canceled, x0, times, cfg)
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("integrates each initial state independently", func() {
		times := field.Linspace(0, 2, 200)
		x0s := []dynamo.State{{-1, -1}, {2, 0}, {0, 1.5}}
		ens := sim.NewEnsemble(physics.NewSpiralSink(), func() dynamo.Integrator { return integrators.NewRK45() })

		results, err := ens.Run(context.Background(), x0s, times, dynamo.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for i, r := range results {
			Expect(r.States[0]).To(Equal(x0s[i]))
			want := closedForm(x0s[i], 2)
			Expect(r.Final()[0]).To(BeNumerically("~", want[0], 1e-6))
			Expect(r.Final()[1]).To(BeNumerically("~", want[1], 1e-6))
		}
	})
})
