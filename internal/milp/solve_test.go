package milp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveNow(t *testing.T, m *Model, opts Options) Solution {
	t.Helper()
	return m.Solve(context.Background(), opts)
}

func TestSolve_ContinuousLP(t *testing.T) {
	m := NewModel()
	x := m.NewContinuous("x")
	y := m.NewContinuous("y")
	m.AddObjective(x, -1)
	m.AddObjective(y, -1)
	m.AddConstraint("cap", Expr().Add(x, 1).Add(y, 1), LessEq, 1)

	sol := solveNow(t, m, Options{})

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, -1.0, sol.Objective, 1e-6)
	assert.InDelta(t, 1.0, sol.X[x]+sol.X[y], 1e-6)
}

func TestSolve_BinaryKnapsack(t *testing.T) {
	m := NewModel()
	a := m.NewBinary("a")
	b := m.NewBinary("b")
	c := m.NewBinary("c")
	// Values 3, 4, 5; weights 2, 3, 4; capacity 5. Best pick is {a, b}.
	m.AddObjective(a, -3)
	m.AddObjective(b, -4)
	m.AddObjective(c, -5)
	m.AddConstraint("weight", Expr().Add(a, 2).Add(b, 3).Add(c, 4), LessEq, 5)

	sol := solveNow(t, m, Options{})

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, -7.0, sol.Objective, 1e-6)
	assert.InDelta(t, 1.0, sol.X[a], 1e-6)
	assert.InDelta(t, 1.0, sol.X[b], 1e-6)
	assert.InDelta(t, 0.0, sol.X[c], 1e-6)
}

func TestSolve_IntegerRoundsUp(t *testing.T) {
	m := NewModel()
	x := m.NewInteger("x")
	m.AddObjective(x, 1)
	m.AddConstraint("floor", Expr().Add(x, 1), GreaterEq, 2.5)

	sol := solveNow(t, m, Options{})

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 3.0, sol.X[x], 1e-6)
	assert.InDelta(t, 3.0, sol.Objective, 1e-6)
}

func TestSolve_EqualityOverBinaries(t *testing.T) {
	m := NewModel()
	x := m.NewBinary("x")
	y := m.NewBinary("y")
	m.AddObjective(x, 2)
	m.AddObjective(y, 1)
	m.AddConstraint("both", Expr().Add(x, 1).Add(y, 1), Equal, 2)

	sol := solveNow(t, m, Options{})

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 1.0, sol.X[x], 1e-6)
	assert.InDelta(t, 1.0, sol.X[y], 1e-6)
}

func TestSolve_Infeasible(t *testing.T) {
	m := NewModel()
	x := m.NewContinuous("x")
	m.AddConstraint("low", Expr().Add(x, 1), LessEq, 1)
	m.AddConstraint("high", Expr().Add(x, 1), GreaterEq, 2)

	sol := solveNow(t, m, Options{})

	require.Equal(t, StatusInfeasible, sol.Status)
	assert.Nil(t, sol.X)

	iis := m.ComputeIIS(context.Background())
	assert.ElementsMatch(t, []string{"low", "high"}, iis)
}

func TestSolve_TrivialViolationIsInfeasible(t *testing.T) {
	m := NewModel()
	m.NewBinary("unused")
	// A required count with no candidate terms: 0 >= 2.
	m.AddConstraint("required_count[t1]", Expr(), GreaterEq, 2)

	sol := solveNow(t, m, Options{})

	require.Equal(t, StatusInfeasible, sol.Status)
	assert.Equal(t, []string{"required_count[t1]"}, m.ComputeIIS(context.Background()))
}

func TestSolve_Unbounded(t *testing.T) {
	m := NewModel()
	x := m.NewContinuous("x")
	m.AddObjective(x, -1)

	sol := solveNow(t, m, Options{})

	assert.Equal(t, StatusUnbounded, sol.Status)
}

func TestSolve_CanceledContextIsTimeLimit(t *testing.T) {
	m := NewModel()
	x := m.NewBinary("x")
	m.AddObjective(x, -1)
	m.AddConstraint("c", Expr().Add(x, 1), LessEq, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sol := m.Solve(ctx, Options{})

	assert.Equal(t, StatusTimeLimit, sol.Status)
}

func TestSolve_ThreadsAgree(t *testing.T) {
	build := func() (*Model, []Var) {
		m := NewModel()
		vars := make([]Var, 6)
		weights := []float64{3, 5, 7, 2, 4, 6}
		values := []float64{4, 6, 9, 2, 5, 7}
		cap := Expr()
		for i := range vars {
			vars[i] = m.NewBinary("item")
			m.AddObjective(vars[i], -values[i])
			cap.Add(vars[i], weights[i])
		}
		m.AddConstraint("cap", cap, LessEq, 11)
		return m, vars
	}

	m1, _ := build()
	m2, _ := build()
	s1 := solveNow(t, m1, Options{Threads: 1})
	s4 := solveNow(t, m2, Options{Threads: 4})

	require.Equal(t, StatusOptimal, s1.Status)
	require.Equal(t, StatusOptimal, s4.Status)
	assert.InDelta(t, s1.Objective, s4.Objective, 1e-6, "thread count must not change the optimum")
}

func TestComputeIIS_FeasibleModelHasNone(t *testing.T) {
	m := NewModel()
	x := m.NewBinary("x")
	m.AddConstraint("c", Expr().Add(x, 1), LessEq, 1)

	assert.Nil(t, m.ComputeIIS(context.Background()))
}

func TestLinExpr_DuplicateTermsSum(t *testing.T) {
	m := NewModel()
	x := m.NewContinuous("x")
	m.AddObjective(x, 1)
	// x + x >= 3  =>  x >= 1.5
	m.AddConstraint("dup", Expr().Add(x, 1).Add(x, 1), GreaterEq, 3)

	sol := solveNow(t, m, Options{})

	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 1.5, sol.X[x], 1e-6)
}
