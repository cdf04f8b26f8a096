// Package lqr solves the finite-horizon discrete linear quadratic regulator
//
//	x_{k+1} = A x_k + B u_k,  cost = Σ_k (x_kᵀQx_k + u_kᵀRu_k) + x_NᵀQ_N x_N
//
// by the backward Riccati recursion.
package lqr

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

type Problem struct {
	A, B *mat.Dense
	Q, R *mat.Dense
	// QN is the terminal weight; Q is used when nil.
	QN      *mat.Dense
	Horizon int
}

func (p Problem) dims() (n, m int, err error) {
	if p.A == nil || p.B == nil || p.Q == nil || p.R == nil {
		return 0, 0, fmt.Errorf("%w: lqr problem is missing a matrix", mdp.ErrConfiguration)
	}
	if p.Horizon <= 0 {
		return 0, 0, fmt.Errorf("%w: horizon %d", mdp.ErrConfiguration, p.Horizon)
	}
	n, c := p.A.Dims()
	if n != c {
		return 0, 0, fmt.Errorf("%w: A is %dx%d", mdp.ErrConfiguration, n, c)
	}
	br, m := p.B.Dims()
	if br != n {
		return 0, 0, fmt.Errorf("%w: B has %d rows, want %d", mdp.ErrConfiguration, br, n)
	}
	if r, c := p.Q.Dims(); r != n || c != n {
		return 0, 0, fmt.Errorf("%w: Q is %dx%d, want %dx%d", mdp.ErrConfiguration, r, c, n, n)
	}
	if r, c := p.R.Dims(); r != m || c != m {
		return 0, 0, fmt.Errorf("%w: R is %dx%d, want %dx%d", mdp.ErrConfiguration, r, c, m, m)
	}
	if p.QN != nil {
		if r, c := p.QN.Dims(); r != n || c != n {
			return 0, 0, fmt.Errorf("%w: QN is %dx%d, want %dx%d", mdp.ErrConfiguration, r, c, n, n)
		}
	}
	return n, m, nil
}

// Solution holds the cost-to-go matrices P_0..P_N and the feedback gains
// K_0..K_{N-1}; the optimal control is u_k = -K_k x_k.
type Solution struct {
	problem Problem
	P       []*mat.Dense
	K       []*mat.Dense
}

// Solve runs K_k = (R + BᵀP_{k+1}B)⁻¹ BᵀP_{k+1}A and
// P_k = Q + K_kᵀRK_k + (A − BK_k)ᵀP_{k+1}(A − BK_k) from P_N = Q_N.
func Solve(p Problem) (*Solution, error) {
	n, _, err := p.dims()
	if err != nil {
		return nil, err
	}
	N := p.Horizon
	sol := &Solution{
		problem: p,
		P:       make([]*mat.Dense, N+1),
		K:       make([]*mat.Dense, N),
	}
	terminal := p.QN
	if terminal == nil {
		terminal = p.Q
	}
	sol.P[N] = mat.DenseCopyOf(terminal)

	for k := N - 1; k >= 0; k-- {
		next := sol.P[k+1]

		var btp, btpb, lhs, rhs mat.Dense
		btp.Mul(p.B.T(), next)
		btpb.Mul(&btp, p.B)
		lhs.Add(p.R, &btpb)
		rhs.Mul(&btp, p.A)

		gain := new(mat.Dense)
		if err := gain.Solve(&lhs, &rhs); err != nil {
			return nil, fmt.Errorf("%w: stage %d: %v", mdp.ErrSingularSystem, k, err)
		}

		var bk, closed mat.Dense
		bk.Mul(p.B, gain)
		closed.Sub(p.A, &bk)

		var ktr, krk, ctp, cpc mat.Dense
		ktr.Mul(gain.T(), p.R)
		krk.Mul(&ktr, gain)
		ctp.Mul(closed.T(), next)
		cpc.Mul(&ctp, &closed)

		cost := mat.NewDense(n, n, nil)
		cost.Add(p.Q, &krk)
		cost.Add(cost, &cpc)

		sol.K[k] = gain
		sol.P[k] = cost
	}
	return sol, nil
}

type Trajectory struct {
	States   []*mat.VecDense
	Controls []*mat.VecDense
	// StageCosts[k] is x_kᵀQx_k + u_kᵀRu_k; the last entry is the terminal cost.
	StageCosts []float64
	// CostToGo[k] is the cost accumulated from stage k to the end.
	CostToGo []float64
}

func (t *Trajectory) Total() float64 {
	if len(t.CostToGo) == 0 {
		return 0
	}
	return t.CostToGo[0]
}

// Rollout applies the optimal feedback from x0.
func (s *Solution) Rollout(x0 []float64) (*Trajectory, error) {
	p := s.problem
	n, _ := p.A.Dims()
	if err := checkInitial(x0, n); err != nil {
		return nil, err
	}
	N := p.Horizon
	t := &Trajectory{
		States:     make([]*mat.VecDense, N+1),
		Controls:   make([]*mat.VecDense, N),
		StageCosts: make([]float64, N+1),
		CostToGo:   make([]float64, N+1),
	}
	t.States[0] = mat.NewVecDense(n, append([]float64(nil), x0...))

	for k := 0; k < N; k++ {
		x := t.States[k]
		u := new(mat.VecDense)
		u.MulVec(s.K[k], x)
		u.ScaleVec(-1, u)

		var ax, bu mat.VecDense
		ax.MulVec(p.A, x)
		bu.MulVec(p.B, u)
		next := new(mat.VecDense)
		next.AddVec(&ax, &bu)

		t.Controls[k] = u
		t.States[k+1] = next
		t.StageCosts[k] = mat.Inner(x, p.Q, x) + mat.Inner(u, p.R, u)
	}
	terminal := p.QN
	if terminal == nil {
		terminal = p.Q
	}
	t.StageCosts[N] = mat.Inner(t.States[N], terminal, t.States[N])

	t.CostToGo[N] = t.StageCosts[N]
	for k := N - 1; k >= 0; k-- {
		t.CostToGo[k] = t.StageCosts[k] + t.CostToGo[k+1]
	}
	return t, nil
}

// Cost is the optimal cost-to-go x0ᵀP_0x0.
func (s *Solution) Cost(x0 []float64) (float64, error) {
	n, _ := s.P[0].Dims()
	if err := checkInitial(x0, n); err != nil {
		return 0, err
	}
	x := mat.NewVecDense(n, append([]float64(nil), x0...))
	return mat.Inner(x, s.P[0], x), nil
}

func checkInitial(x0 []float64, n int) error {
	if len(x0) != n {
		return fmt.Errorf("%w: initial state has %d entries, want %d", mdp.ErrConfiguration, len(x0), n)
	}
	return nil
}
