// Package solver implementa ports.Solver con branch-and-bound sobre las
// relajaciones lineales resueltas por el simplex de gonum.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alejandrodnm/f1optimiser/internal/mip"
)

const (
	defaultMaxNodes = 200_000
	simplexTol      = 1e-10
)

// Config controla los límites del solver.
type Config struct {
	Timeout        time.Duration // 0 = sin timeout propio (solo el del contexto)
	IntegralityTol float64       // tolerancia para considerar entera una binaria
	MaxNodes       int           // 0 = defaultMaxNodes
}

// DefaultConfig devuelve la configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		IntegralityTol: mip.DefaultTolerance,
		MaxNodes:       defaultMaxNodes,
	}
}

// BranchAndBound implementa ports.Solver.
// Búsqueda en profundidad, rama "arriba" primero, ramificando sobre la
// binaria más fraccionaria (índice menor en empate). Determinista.
type BranchAndBound struct {
	cfg   Config
	relax relaxFunc
}

// relaxFunc resuelve la relajación lineal de un nodo.
type relaxFunc func(p *mip.Problem, nd node, tol float64) (float64, []float64, error)

// NewBranchAndBound crea el solver aplicando defaults a los campos vacíos.
func NewBranchAndBound(cfg Config) *BranchAndBound {
	if cfg.IntegralityTol <= 0 {
		cfg.IntegralityTol = mip.DefaultTolerance
	}
	if cfg.MaxNodes <= 0 {
		cfg.MaxNodes = defaultMaxNodes
	}
	return &BranchAndBound{cfg: cfg, relax: relax}
}

type node struct {
	lower []float64
	upper []float64
	depth int
}

// Solve resuelve el problema. Errores: mip.ErrInfeasible, mip.ErrUnbounded,
// mip.ErrTimeout, o un error del simplex envuelto.
func (s *BranchAndBound) Solve(ctx context.Context, p *mip.Problem) (mip.Solution, error) {
	if err := p.Validate(); err != nil {
		return mip.Solution{}, fmt.Errorf("solver.Solve: %w", err)
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	tol := s.cfg.IntegralityTol
	n := len(p.Vars)

	root := node{lower: make([]float64, n), upper: make([]float64, n)}
	for j, v := range p.Vars {
		root.lower[j], root.upper[j] = v.Lower, v.Upper
	}

	var (
		incumbent []float64
		bestScore = math.Inf(-1) // objetivo en sentido "mayor es mejor"
		nodes     int
		stack     = []node{root}
	)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return mip.Solution{}, fmt.Errorf("solver.Solve: %w after %d nodes", mip.ErrTimeout, nodes)
			}
			return mip.Solution{}, fmt.Errorf("solver.Solve: %w", err)
		}
		if nodes >= s.cfg.MaxNodes {
			return mip.Solution{}, fmt.Errorf("solver.Solve: node limit %d reached", s.cfg.MaxNodes)
		}
		nodes++

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		obj, values, err := s.relaxNode(ctx, p, nd, tol)
		if errors.Is(err, errNodeInfeasible) {
			continue
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return mip.Solution{}, fmt.Errorf("solver.Solve: %w at node %d", mip.ErrTimeout, nodes)
		}
		if err != nil {
			return mip.Solution{}, fmt.Errorf("solver.Solve: node %d: %w", nodes, err)
		}

		score := obj
		if !p.Maximize {
			score = -obj
		}
		if incumbent != nil && score <= bestScore+tol {
			continue // la cota del nodo no mejora la incumbente
		}

		j := mostFractional(p, values, tol)
		if j < 0 {
			incumbent, bestScore = values, score
			continue
		}

		down := nd.child()
		down.upper[j] = math.Floor(values[j])
		up := nd.child()
		up.lower[j] = math.Ceil(values[j])
		stack = append(stack, down, up) // up se explora primero
	}

	if incumbent == nil {
		return mip.Solution{}, mip.ErrInfeasible
	}

	rounded, ok := mip.RoundBinaries(p, incumbent, tol)
	if !ok {
		return mip.Solution{}, fmt.Errorf("solver.Solve: incumbent not integral within %g", tol)
	}

	sol := mip.Solution{
		Objective: p.Objective.Eval(rounded),
		Values:    rounded,
		Nodes:     nodes,
	}
	slog.Debug("branch-and-bound finished",
		"problem", p.Name,
		"nodes", nodes,
		"objective", sol.Objective,
		"elapsed", time.Since(start),
	)
	return sol, nil
}

func (nd node) child() node {
	c := node{
		lower: make([]float64, len(nd.lower)),
		upper: make([]float64, len(nd.upper)),
		depth: nd.depth + 1,
	}
	copy(c.lower, nd.lower)
	copy(c.upper, nd.upper)
	return c
}

type relaxResult struct {
	obj    float64
	values []float64
	err    error
}

// relaxNode corre la relajación en su propia goroutine: lp.Simplex no se puede
// interrumpir, así que al vencer el contexto se abandona y su resultado se descarta.
func (s *BranchAndBound) relaxNode(ctx context.Context, p *mip.Problem, nd node, tol float64) (float64, []float64, error) {
	done := make(chan relaxResult, 1)
	go func() {
		obj, values, err := s.relax(p, nd, tol)
		done <- relaxResult{obj: obj, values: values, err: err}
	}()

	select {
	case r := <-done:
		return r.obj, r.values, r.err
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

// relax resuelve la relajación lineal de un nodo.
func relax(p *mip.Problem, nd node, tol float64) (float64, []float64, error) {
	for j := range nd.lower {
		if nd.lower[j] > nd.upper[j]+tol {
			return 0, nil, errNodeInfeasible
		}
	}
	sf, err := buildStandard(p, nd.lower, nd.upper, tol)
	if err != nil {
		return 0, nil, err
	}
	return sf.solve(len(p.Vars), simplexTol)
}

// mostFractional devuelve la binaria más alejada de un entero, o -1 si todas son enteras.
func mostFractional(p *mip.Problem, values []float64, tol float64) int {
	best, bestDist := -1, tol
	for j, v := range p.Vars {
		if v.Kind != mip.Binary {
			continue
		}
		frac := values[j] - math.Floor(values[j])
		dist := math.Min(frac, 1-frac)
		if dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}
