package field

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/phaseportrait/internal/dynamo"
	"github.com/san-kum/phaseportrait/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace(t *testing.T) {
	assert.Empty(t, Linspace(0, 1, 0))
	assert.Equal(t, []float64{-2}, Linspace(-2, 2, 1))
	assert.Equal(t, []float64{-2, 0, 2}, Linspace(-2, 2, 3))

	pts := Linspace(-2, 3, 20)
	require.Len(t, pts, 20)
	assert.Equal(t, -2.0, pts[0])
	assert.InDelta(t, 3.0, pts[19], 1e-12)
	for i := 1; i < len(pts); i++ {
		assert.InDelta(t, 5.0/19.0, pts[i]-pts[i-1], 1e-12)
	}
}

func TestSampleDefaultShape(t *testing.T) {
	dyn := physics.NewSpiralSink()
	g, err := Sample(dyn, Axis{Min: -2, Max: 2, N: 20}, Axis{Min: -2, Max: 3, N: 20})
	require.NoError(t, err)

	rows, cols := g.Dims()
	assert.Equal(t, 20, rows)
	assert.Equal(t, 20, cols)
	for _, arr := range [][][]float64{g.X0, g.X1, g.DX0, g.DX1} {
		require.Len(t, arr, 20)
		for _, row := range arr {
			require.Len(t, row, 20)
		}
	}
}

func TestSampleMatchesEvaluator(t *testing.T) {
	dyn := physics.NewSpiralSink()
	g, err := Sample(dyn, Axis{Min: -2, Max: 2, N: 20}, Axis{Min: -2, Max: 3, N: 20})
	require.NoError(t, err)

	rows, cols := g.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d := dyn.Derive(dynamo.State{g.X0[i][j], g.X1[i][j]}, nil, 0)
			assert.Equal(t, d[0], g.DX0[i][j], "dX0[%d][%d]", i, j)
			assert.Equal(t, d[1], g.DX1[i][j], "dX1[%d][%d]", i, j)
		}
	}
}

func TestSampleMeshgridLayout(t *testing.T) {
	g, err := Sample(physics.NewSpiralSink(), Axis{Min: 0, Max: 1, N: 2}, Axis{Min: 10, Max: 12, N: 3})
	require.NoError(t, err)

	rows, cols := g.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 2, cols)
	assert.Equal(t, [][]float64{{0, 1}, {0, 1}, {0, 1}}, g.X0)
	assert.Equal(t, [][]float64{{10, 10}, {11, 11}, {12, 12}}, g.X1)
}

func TestSampleEmptyAxis(t *testing.T) {
	g, err := Sample(physics.NewSpiralSink(), Axis{Min: -2, Max: 2, N: 0}, Axis{Min: -2, Max: 3, N: 20})
	require.NoError(t, err)
	assert.True(t, g.Empty())

	g, err = Sample(physics.NewSpiralSink(), Axis{Min: -2, Max: 2, N: 20}, Axis{Min: -2, Max: 3, N: 0})
	require.NoError(t, err)
	assert.True(t, g.Empty())
}

func TestSampleInvalidAxis(t *testing.T) {
	_, err := Sample(physics.NewSpiralSink(), Axis{Min: 2, Max: -2, N: 5}, Axis{Min: 0, Max: 1, N: 5})
	assert.True(t, errors.Is(err, ErrInvalidAxis))

	_, err = Sample(physics.NewSpiralSink(), Axis{Min: 0, Max: 1, N: 5}, Axis{Min: 0, Max: 1, N: -1})
	assert.True(t, errors.Is(err, ErrInvalidAxis))
}

func TestSampleRejectsWrongDimension(t *testing.T) {
	dyn, err := physics.NewLinear(1, []float64{-1})
	require.NoError(t, err)
	_, err = Sample(dyn, Axis{Min: 0, Max: 1, N: 2}, Axis{Min: 0, Max: 1, N: 2})
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestMaxMagnitude(t *testing.T) {
	g, err := Sample(physics.NewSpiralSink(), Axis{Min: -1, Max: 1, N: 3}, Axis{Min: -1, Max: 1, N: 3})
	require.NoError(t, err)
	// |A·x| = sqrt(10)·|x| for this A, largest at the corners.
	assert.InDelta(t, math.Sqrt(20), g.MaxMagnitude(), 1e-9)
}
