package mdp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Stationary solves π P = π with Σπ = 1 by replacing the last balance equation
// with the normalization constraint.
func Stationary(p mat.Matrix) ([]float64, error) {
	r, c := p.Dims()
	if r != c || r == 0 {
		return nil, fmt.Errorf("%w: transition matrix is %dx%d", ErrConfiguration, r, c)
	}
	n := r
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			// row i of (P - I)^T
			v := p.At(j, i)
			if i == j {
				v--
			}
			a.Set(i, j, v)
		}
	}
	for j := 0; j < n; j++ {
		a.Set(n-1, j, 1)
	}
	b := mat.NewVecDense(n, nil)
	b.SetVec(n-1, 1)

	var pi mat.VecDense
	if err := pi.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = pi.AtVec(i)
	}
	return out, nil
}
