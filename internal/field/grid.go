// Package field samples a system's derivative over a rectangular mesh.
package field

import (
	"errors"
	"fmt"

	"github.com/san-kum/phaseportrait/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

var ErrInvalidAxis = errors.New("field: invalid axis")

// Axis is a closed interval sampled at N evenly spaced points.
type Axis struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
	N   int     `yaml:"n"`
}

func (a Axis) Validate() error {
	if a.N < 0 {
		return fmt.Errorf("%w: negative sample count %d", ErrInvalidAxis, a.N)
	}
	if a.Max < a.Min {
		return fmt.Errorf("%w: max %g below min %g", ErrInvalidAxis, a.Max, a.Min)
	}
	return nil
}

// Points returns the N samples of the axis, endpoints included.
func (a Axis) Points() []float64 {
	return Linspace(a.Min, a.Max, a.N)
}

// Linspace returns n evenly spaced values over [start, end].
// n == 1 yields [start]; n <= 0 yields an empty slice.
func Linspace(start, end float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{start}
	}
	pts := floats.Span(make([]float64, n), start, end)
	pts[n-1] = end
	return pts
}

// Grid holds a mesh and the derivative at each node. All four arrays have
// shape (rows, cols): row i follows the x1 axis, column j follows x0.
type Grid struct {
	X0, X1   [][]float64
	DX0, DX1 [][]float64
}

// Dims returns (rows, cols).
func (g *Grid) Dims() (int, int) {
	if g == nil || len(g.X0) == 0 {
		return 0, 0
	}
	return len(g.X0), len(g.X0[0])
}

func (g *Grid) Empty() bool {
	r, c := g.Dims()
	return r == 0 || c == 0
}

// MaxMagnitude returns the largest derivative norm on the grid.
func (g *Grid) MaxMagnitude() float64 {
	max := 0.0
	for i := range g.DX0 {
		for j := range g.DX0[i] {
			if m := (dynamo.State{g.DX0[i][j], g.DX1[i][j]}).Norm(); m > max {
				max = m
			}
		}
	}
	return max
}

// Meshgrid expands two coordinate vectors into coordinate matrices.
func Meshgrid(xs, ys []float64) (X, Y [][]float64) {
	X = make([][]float64, len(ys))
	Y = make([][]float64, len(ys))
	for i, y := range ys {
		X[i] = append([]float64(nil), xs...)
		Y[i] = make([]float64, len(xs))
		for j := range xs {
			Y[i][j] = y
		}
	}
	return X, Y
}

// Sample evaluates dyn at every node of the ax0 × ax1 mesh at t = 0.
func Sample(dyn dynamo.System, ax0, ax1 Axis) (*Grid, error) {
	if err := ax0.Validate(); err != nil {
		return nil, fmt.Errorf("x0 axis: %w", err)
	}
	if err := ax1.Validate(); err != nil {
		return nil, fmt.Errorf("x1 axis: %w", err)
	}
	if dyn.StateDim() != 2 {
		return nil, fmt.Errorf("field: %w: need a 2-D system, got %d", dynamo.ErrDimensionMismatch, dyn.StateDim())
	}

	X0, X1 := Meshgrid(ax0.Points(), ax1.Points())
	g := &Grid{
		X0:  X0,
		X1:  X1,
		DX0: zeros(len(X0), ax0.N),
		DX1: zeros(len(X0), ax0.N),
	}

	rows, cols := len(X0), ax0.N
	if cols == 0 {
		return g, nil
	}
	dynamo.ParallelFor(rows, 4, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				d := dyn.Derive(dynamo.State{X0[i][j], X1[i][j]}, nil, 0)
				g.DX0[i][j] = d[0]
				g.DX1[i][j] = d[1]
			}
		}
	})

	return g, nil
}

func zeros(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// Scaled returns the axis with both bounds multiplied by f.
func (a Axis) Scaled(f float64) Axis {
	return Axis{Min: a.Min * f, Max: a.Max * f, N: a.N}
}
