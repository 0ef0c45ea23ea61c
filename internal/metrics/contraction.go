package metrics

import (
	"math"

	"github.com/san-kum/phaseportrait/internal/dynamo"
)

// Contraction is |x_last| / |x_first| over the observed samples. Values
// below 1 mean the trajectory moved toward the origin.
type Contraction struct {
	first, last float64
	samples     int
}

func NewContraction() *Contraction {
	return &Contraction{}
}

func (c *Contraction) Name() string { return "contraction" }

func (c *Contraction) Observe(x dynamo.State, u dynamo.Control, t float64) {
	n := x.Norm()
	if c.samples == 0 {
		c.first = n
	}
	c.last = n
	c.samples++
}

func (c *Contraction) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	if c.first == 0 {
		if c.last == 0 {
			return 1.0
		}
		return math.Inf(1)
	}
	return c.last / c.first
}

func (c *Contraction) Reset() {
	c.first, c.last, c.samples = 0, 0, 0
}

// PathLength is the arc length of the sampled polyline in state space.
type PathLength struct {
	prev   dynamo.State
	length float64
}

func NewPathLength() *PathLength {
	return &PathLength{}
}

func (p *PathLength) Name() string { return "path_length" }

func (p *PathLength) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if p.prev != nil {
		p.length += x.Sub(p.prev).Norm()
	}
	p.prev = x.Clone()
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	p.prev = nil
	p.length = 0
}
