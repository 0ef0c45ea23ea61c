package analysis

import (
	"math"
	"math/cmplx"
)

// FixedPointKind classifies the equilibrium of a planar linear system.
type FixedPointKind int

const (
	Degenerate FixedPointKind = iota
	SpiralSink
	SpiralSource
	Center
	StableNode
	UnstableNode
	Saddle
)

func (k FixedPointKind) String() string {
	switch k {
	case SpiralSink:
		return "spiral sink"
	case SpiralSource:
		return "spiral source"
	case Center:
		return "center"
	case StableNode:
		return "stable node"
	case UnstableNode:
		return "unstable node"
	case Saddle:
		return "saddle"
	default:
		return "degenerate"
	}
}

// Stable reports whether every trajectory converges to the fixed point.
func (k FixedPointKind) Stable() bool {
	return k == SpiralSink || k == StableNode
}

const eigTol = 1e-12

// ClassifyFixedPoint names the origin's type from the two eigenvalues of A.
func ClassifyFixedPoint(eigs []complex128) FixedPointKind {
	if len(eigs) != 2 {
		return Degenerate
	}
	l1, l2 := eigs[0], eigs[1]
	if cmplx.Abs(l1) < eigTol || cmplx.Abs(l2) < eigTol {
		return Degenerate
	}

	if math.Abs(imag(l1)) > eigTol {
		switch re := real(l1); {
		case re < -eigTol:
			return SpiralSink
		case re > eigTol:
			return SpiralSource
		default:
			return Center
		}
	}

	r1, r2 := real(l1), real(l2)
	switch {
	case r1 < 0 && r2 < 0:
		return StableNode
	case r1 > 0 && r2 > 0:
		return UnstableNode
	default:
		return Saddle
	}
}

// DecayRate is the largest real part of the spectrum; trajectories shrink
// at least as fast as exp(DecayRate·t) when it is negative.
func DecayRate(eigs []complex128) float64 {
	max := math.Inf(-1)
	for _, e := range eigs {
		if real(e) > max {
			max = real(e)
		}
	}
	return max
}

// AngularFrequency is the rotation rate |Im λ| in rad per time unit.
func AngularFrequency(eigs []complex128) float64 {
	max := 0.0
	for _, e := range eigs {
		if w := math.Abs(imag(e)); w > max {
			max = w
		}
	}
	return max
}
