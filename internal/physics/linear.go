package physics

import (
	"fmt"

	"github.com/san-kum/phaseportrait/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Linear implements an autonomous linear system dX/dt = A·X.
// Control input and time are accepted for interface compatibility only.
type Linear struct {
	a *mat.Dense
}

// NewLinear builds a system from a square row-major matrix.
func NewLinear(n int, data []float64) (*Linear, error) {
	if n <= 0 || len(data) != n*n {
		return nil, fmt.Errorf("physics: need %d entries for a %dx%d matrix, got %d", n*n, n, n, len(data))
	}
	return &Linear{a: mat.NewDense(n, n, append([]float64(nil), data...))}, nil
}

// NewSpiralSink returns the system with A = [[-1, -3], [3, -1]].
func NewSpiralSink() *Linear {
	l, _ := NewLinear(2, []float64{
		-1, -3,
		3, -1,
	})
	return l
}

func (l *Linear) StateDim() int {
	r, _ := l.a.Dims()
	return r
}

func (l *Linear) ControlDim() int { return 0 }

func (l *Linear) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	var dx mat.VecDense
	dx.MulVec(l.a, mat.NewVecDense(len(x), x))
	return dynamo.State(dx.RawVector().Data)
}

// Eigenvalues returns the spectrum of A.
func (l *Linear) Eigenvalues() ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(l.a, mat.EigenNone); !ok {
		return nil, fmt.Errorf("physics: eigen decomposition did not converge")
	}
	return eig.Values(nil), nil
}

// GetParams exposes the matrix entries as a00, a01, a10, a11...
func (l *Linear) GetParams() map[string]float64 {
	r, c := l.a.Dims()
	params := make(map[string]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			params[fmt.Sprintf("a%d%d", i, j)] = l.a.At(i, j)
		}
	}
	return params
}
