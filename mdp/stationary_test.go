package mdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStationaryTwoState(t *testing.T) {
	pi, err := Stationary(mat.NewDense(2, 2, []float64{0.9, 0.1, 0.5, 0.5}))
	require.NoError(t, err)
	assert.InDelta(t, 5.0/6, pi[0], 1e-12)
	assert.InDelta(t, 1.0/6, pi[1], 1e-12)
}

func TestStationaryIsInvariant(t *testing.T) {
	p := mat.NewDense(3, 3, []float64{
		0.5, 0.3, 0.2,
		0.2, 0.6, 0.2,
		0.1, 0.2, 0.7,
	})
	pi, err := Stationary(p)
	require.NoError(t, err)

	row := mat.NewDense(1, 3, pi)
	var next mat.Dense
	next.Mul(row, p)
	sum := 0.0
	for j := 0; j < 3; j++ {
		assert.InDelta(t, pi[j], next.At(0, j), 1e-12)
		sum += pi[j]
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestStationaryOfInducedChain(t *testing.T) {
	m := corridor(0.9)
	chain, err := InducedChain(m, PolicyTable{right, right, right, NoAction})
	require.NoError(t, err)
	pi, err := Stationary(chain)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pi[3], 1e-12, "all mass ends in the absorbing exit")
}

func TestStationaryRejectsNonSquare(t *testing.T) {
	_, err := Stationary(mat.NewDense(2, 3, nil))
	assert.ErrorIs(t, err, ErrConfiguration)
}
