package solver_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/f1optimiser/internal/adapters/solver"
	"github.com/alejandrodnm/f1optimiser/internal/mip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSolver() *solver.BranchAndBound {
	return solver.NewBranchAndBound(solver.DefaultConfig())
}

// knapsack: max 10a + 13b + 7c + 8d, 5a + 7b + 4c + 3d <= 10. Óptimo único b+d = 21.
func knapsack() (*mip.Problem, []mip.Var) {
	p := mip.NewProblem("knapsack", true)
	values := []float64{10, 13, 7, 8}
	weights := []float64{5, 7, 4, 3}
	vars := make([]mip.Var, len(values))
	var obj, w mip.Expr
	for i, name := range []string{"a", "b", "c", "d"} {
		vars[i] = p.AddBinary(name)
		obj = obj.Add(vars[i], values[i])
		w = w.Add(vars[i], weights[i])
	}
	p.AddConstraint("capacity", w, mip.LessEq, 10)
	p.SetObjective(obj)
	return p, vars
}

func TestBranchAndBound_Knapsack(t *testing.T) {
	p, vars := knapsack()

	sol, err := newSolver().Solve(context.Background(), p)
	require.NoError(t, err)

	assert.InDelta(t, 21.0, sol.Objective, 1e-9)
	assert.False(t, sol.Bool(vars[0]))
	assert.True(t, sol.Bool(vars[1]))
	assert.False(t, sol.Bool(vars[2]))
	assert.True(t, sol.Bool(vars[3]))
	assert.NoError(t, p.Feasible(sol.Values, 1e-6))
	assert.Greater(t, sol.Nodes, 0)
}

func TestBranchAndBound_Deterministic(t *testing.T) {
	p, _ := knapsack()
	s := newSolver()

	first, err := s.Solve(context.Background(), p)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := s.Solve(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, first.Values, again.Values)
		assert.Equal(t, first.Nodes, again.Nodes)
	}
}

func TestBranchAndBound_Minimize(t *testing.T) {
	p := mip.NewProblem("min", false)
	x := p.AddBinary("x")
	y := p.AddBinary("y")
	z := p.AddBinary("z")
	p.AddConstraint("cover", mip.Expr{}.Add(x, 1).Add(y, 1).Add(z, 1), mip.GreaterEq, 1.5)
	p.SetObjective(mip.Expr{}.Add(x, 3).Add(y, 1).Add(z, 2))

	sol, err := newSolver().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, sol.Objective, 1e-9)
	assert.True(t, sol.Bool(y))
	assert.True(t, sol.Bool(z))
	assert.False(t, sol.Bool(x))
}

func TestBranchAndBound_RelaxationInfeasible(t *testing.T) {
	p := mip.NewProblem("infeasible", true)
	x := p.AddBinary("x")
	y := p.AddBinary("y")
	p.AddConstraint("sum", mip.Expr{}.Add(x, 1).Add(y, 1), mip.Equal, 3)
	p.SetObjective(mip.Expr{}.Add(x, 1))

	_, err := newSolver().Solve(context.Background(), p)
	assert.ErrorIs(t, err, mip.ErrInfeasible)
}

func TestBranchAndBound_IntegerInfeasible(t *testing.T) {
	// La relajación es factible (x = 1, y = 0.5) pero ninguna asignación entera lo es.
	p := mip.NewProblem("parity", true)
	x := p.AddBinary("x")
	y := p.AddBinary("y")
	p.AddConstraint("odd", mip.Expr{}.Add(x, 2).Add(y, 2), mip.Equal, 3)
	p.SetObjective(mip.Expr{}.Add(x, 1).Add(y, 1))

	_, err := newSolver().Solve(context.Background(), p)
	assert.ErrorIs(t, err, mip.ErrInfeasible)
}

func TestBranchAndBound_Continuous(t *testing.T) {
	// max 3x + 2y, x + y <= 4, x + 3y <= 6, 0 <= x <= 3, y >= 0 → (3, 1) = 11
	p := mip.NewProblem("lp", true)
	x := p.AddContinuous("x", 0, 3)
	y := p.AddContinuous("y", 0, math.Inf(1))
	p.AddConstraint("c1", mip.Expr{}.Add(x, 1).Add(y, 1), mip.LessEq, 4)
	p.AddConstraint("c2", mip.Expr{}.Add(x, 1).Add(y, 3), mip.LessEq, 6)
	p.SetObjective(mip.Expr{}.Add(x, 3).Add(y, 2))

	sol, err := newSolver().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, sol.Objective, 1e-7)
	assert.InDelta(t, 3.0, sol.Value(x), 1e-7)
	assert.InDelta(t, 1.0, sol.Value(y), 1e-7)
}

func TestBranchAndBound_FreeVariable(t *testing.T) {
	// min z con z >= |x - 2|, x en [0, 10] → z = 0 en x = 2.
	p := mip.NewProblem("abs", false)
	x := p.AddContinuous("x", 0, 10)
	z := p.AddContinuous("z", math.Inf(-1), math.Inf(1))
	p.AddConstraint("above", mip.Expr{}.Add(z, 1).Add(x, -1), mip.GreaterEq, -2)
	p.AddConstraint("below", mip.Expr{}.Add(z, 1).Add(x, 1), mip.GreaterEq, 2)
	p.AddConstraint("x_ge", mip.Expr{}.Add(x, 1), mip.GreaterEq, 2)
	p.SetObjective(mip.Expr{}.Add(z, 1))

	sol, err := newSolver().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sol.Objective, 1e-7)
	assert.InDelta(t, 2.0, sol.Value(x), 1e-7)
}

func TestBranchAndBound_ConstantObjectiveOffset(t *testing.T) {
	p, _ := knapsack()
	p.SetObjective(p.Objective.Plus(100))

	sol, err := newSolver().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.InDelta(t, 121.0, sol.Objective, 1e-9)
}

func TestBranchAndBound_Unbounded(t *testing.T) {
	p := mip.NewProblem("unbounded", true)
	x := p.AddBinary("x")
	y := p.AddContinuous("y", 0, math.Inf(1))
	p.AddConstraint("c", mip.Expr{}.Add(x, 1), mip.LessEq, 1)
	p.SetObjective(mip.Expr{}.Add(x, 1).Add(y, 1))

	_, err := newSolver().Solve(context.Background(), p)
	assert.ErrorIs(t, err, mip.ErrUnbounded)
}

func TestBranchAndBound_FixedVariable(t *testing.T) {
	p, vars := knapsack()
	p.Vars[vars[0]].Lower = 1 // a forzada a 1

	sol, err := newSolver().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, sol.Bool(vars[0]))
	assert.InDelta(t, 18.0, sol.Objective, 1e-9) // a + d
}

func TestBranchAndBound_DeadlineExceeded(t *testing.T) {
	p, _ := knapsack()
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := newSolver().Solve(ctx, p)
	assert.ErrorIs(t, err, mip.ErrTimeout)
}

func TestBranchAndBound_Canceled(t *testing.T) {
	p, _ := knapsack()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSolver().Solve(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, mip.ErrTimeout)
}

func TestBranchAndBound_NodeLimit(t *testing.T) {
	p := mip.NewProblem("parity", true)
	x := p.AddBinary("x")
	y := p.AddBinary("y")
	p.AddConstraint("odd", mip.Expr{}.Add(x, 2).Add(y, 2), mip.Equal, 3)
	p.SetObjective(mip.Expr{}.Add(x, 1).Add(y, 1))

	s := solver.NewBranchAndBound(solver.Config{MaxNodes: 1})
	_, err := s.Solve(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node limit")
}

func TestBranchAndBound_InvalidProblem(t *testing.T) {
	p := mip.NewProblem("invalid", true)
	p.AddContinuous("x", 2, 1)

	_, err := newSolver().Solve(context.Background(), p)
	require.Error(t, err)
}
