package metrics

import "github.com/san-kum/phaseportrait/internal/dynamo"

// Stability is the fraction of samples whose (x0, x1) lies inside the
// plotted view. A trajectory that leaves the picture scores below 1.
type Stability struct {
	xlim, ylim [2]float64
	inside     int
	samples    int
}

func NewStability(xlim, ylim [2]float64) *Stability {
	return &Stability{xlim: xlim, ylim: ylim}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if len(x) < 2 {
		return
	}
	if within(x[0], s.xlim) && within(x[1], s.ylim) {
		s.inside++
	}
}

func within(v float64, lim [2]float64) bool {
	return v >= lim[0] && v <= lim[1]
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return float64(s.inside) / float64(s.samples)
}

func (s *Stability) Reset() {
	s.inside = 0
	s.samples = 0
}
