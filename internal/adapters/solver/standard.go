package solver

// standard.go: convierte la relajación lineal de un nodo a forma estándar
// (min cᵀx, Ax = b, x >= 0), que es lo que acepta lp.Simplex de gonum.
//
// Cada variable original x_j se expresa como offset_j + Σ sign·x'_k:
//   - fijada (lo == up):     x = lo, sin columna
//   - cota inferior finita:  x = lo + x'        (+ fila x' + s = up - lo si up finita)
//   - solo cota superior:    x = up - x'
//   - libre:                 x = x'⁺ - x'⁻
// Las desigualdades llevan una holgura propia, así las filas son independientes.

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/alejandrodnm/f1optimiser/internal/mip"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

var errNodeInfeasible = errors.New("node infeasible")

// feasTol es el negativo máximo que se redondea a 0 en un sistema cuadrado.
const feasTol = 1e-9

type colRef struct {
	col  int
	sign float64
}

// standardForm es la relajación de un nodo lista para Simplex.
type standardForm struct {
	c        []float64
	a        *mat.Dense
	b        []float64
	offset   []float64
	cols     [][]colRef
	objConst float64
	sign     float64 // -1 si el problema original maximiza

	structural int // columnas antes de las holguras
}

type row struct {
	coefs map[int]float64
	slack float64 // +1 (<=), -1 (>=), 0 (=)
	rhs   float64
}

// buildStandard arma la forma estándar para las cotas del nodo.
// Devuelve errNodeInfeasible si alguna fila trivial no se puede cumplir y
// mip.ErrUnbounded si una variable sin restricciones mejora el objetivo sin límite.
func buildStandard(p *mip.Problem, lower, upper []float64, tol float64) (*standardForm, error) {
	n := len(p.Vars)
	sf := &standardForm{
		offset: make([]float64, n),
		cols:   make([][]colRef, n),
		sign:   1,
	}
	if p.Maximize {
		sf.sign = -1
	}

	objCoef := make([]float64, n)
	for _, t := range p.Objective.Terms {
		objCoef[t.Var] += t.Coef
	}
	sf.objConst = p.Objective.Const

	used := make([]bool, n)
	for _, c := range p.Constraints {
		for _, t := range c.Expr.Terms {
			if t.Coef != 0 {
				used[t.Var] = true
			}
		}
	}

	// 1. Columnas estructurales y filas de cota superior.
	nextCol := 0
	var bounds []row
	for j := 0; j < n; j++ {
		lo, up := lower[j], upper[j]
		loFinite, upFinite := !math.IsInf(lo, -1), !math.IsInf(up, 1)

		if loFinite && upFinite && up-lo <= tol {
			// Fijada por la rama: constante, sin columna ni fila de cota.
			sf.offset[j] = lo
			sf.objConst += objCoef[j] * lo
			continue
		}

		if !used[j] && !(loFinite && upFinite) {
			// Variable fuera de toda restricción y con una cota abierta: se
			// fija en la cota que favorece al objetivo, o el problema es no acotado.
			v, err := fixUnused(sf.sign*objCoef[j], lo, up, loFinite, upFinite)
			if err != nil {
				return nil, err
			}
			sf.offset[j] = v
			sf.objConst += objCoef[j] * v
			continue
		}

		switch {
		case loFinite:
			sf.offset[j] = lo
			sf.cols[j] = []colRef{{col: nextCol, sign: 1}}
			if upFinite {
				bounds = append(bounds, row{coefs: map[int]float64{nextCol: 1}, slack: 1, rhs: up - lo})
			}
			nextCol++
		case upFinite:
			sf.offset[j] = up
			sf.cols[j] = []colRef{{col: nextCol, sign: -1}}
			nextCol++
		default:
			sf.cols[j] = []colRef{{col: nextCol, sign: 1}, {col: nextCol + 1, sign: -1}}
			nextCol += 2
		}
		sf.objConst += objCoef[j] * sf.offset[j]
	}
	structural := nextCol
	sf.structural = structural

	// 2. Restricciones del modelo.
	var rows []row
	for _, c := range p.Constraints {
		r := row{coefs: make(map[int]float64), rhs: c.RHS - c.Expr.Const}
		for _, t := range c.Expr.Terms {
			r.rhs -= t.Coef * sf.offset[t.Var]
			for _, ref := range sf.cols[t.Var] {
				r.coefs[ref.col] += t.Coef * ref.sign
			}
		}
		switch c.Sense {
		case mip.LessEq:
			r.slack = 1
		case mip.GreaterEq:
			r.slack = -1
		}

		if allZero(r.coefs, tol) {
			if !trivialHolds(c.Sense, r.rhs, tol) {
				return nil, fmt.Errorf("%w: constraint %s", errNodeInfeasible, c.Name)
			}
			continue
		}
		rows = append(rows, r)
	}
	rows = append(rows, bounds...)

	// 3. Matriz densa con una columna de holgura por desigualdad.
	slacks := 0
	for _, r := range rows {
		if r.slack != 0 {
			slacks++
		}
	}
	m := len(rows)
	total := structural + slacks
	sf.b = make([]float64, m)
	sf.c = make([]float64, total)
	if m == 0 || total == 0 {
		return sf, nil
	}
	sf.a = mat.NewDense(m, total, nil)

	slackCol := structural
	for i, r := range rows {
		for k, v := range r.coefs {
			sf.a.Set(i, k, v)
		}
		if r.slack != 0 {
			sf.a.Set(i, slackCol, r.slack)
			slackCol++
		}
		sf.b[i] = r.rhs
	}

	for j := 0; j < n; j++ {
		for _, ref := range sf.cols[j] {
			sf.c[ref.col] += sf.sign * objCoef[j] * ref.sign
		}
	}
	return sf, nil
}

// solve resuelve la relajación y devuelve el objetivo original y los valores.
func (sf *standardForm) solve(nVars int, tol float64) (obj float64, values []float64, err error) {
	x := make([]float64, len(sf.c))
	if sf.a != nil {
		var optF float64
		optF, x, err = simplex(sf.c, sf.a, sf.b, tol)
		if errors.Is(err, errNumerical) {
			// Otro orden de columnas da otra base inicial y otro camino de pivoteo.
			optF, x, err = sf.solveReordered(tol)
		}
		if err != nil {
			return 0, nil, err
		}
		obj = sf.objConst + sf.sign*optF
	} else {
		obj = sf.objConst
	}

	values = make([]float64, nVars)
	for j := 0; j < nVars; j++ {
		v := sf.offset[j]
		for _, ref := range sf.cols[j] {
			v += ref.sign * x[ref.col]
		}
		values[j] = v
	}
	return obj, values, nil
}

// solveReordered repite el simplex con las columnas estructurales en orden
// inverso. Las holguras siguen al final, donde gonum busca la base inicial.
func (sf *standardForm) solveReordered(tol float64) (float64, []float64, error) {
	m, total := sf.a.Dims()
	perm := make([]int, total)
	for k := range perm {
		perm[k] = k
	}
	slices.Reverse(perm[:sf.structural])

	a := mat.NewDense(m, total, nil)
	c := make([]float64, total)
	for k, src := range perm {
		for i := 0; i < m; i++ {
			a.Set(i, k, sf.a.At(i, src))
		}
		c[k] = sf.c[src]
	}

	optF, xp, err := simplex(c, a, sf.b, tol)
	if err != nil {
		return 0, nil, err
	}
	x := make([]float64, total)
	for k, src := range perm {
		x[src] = xp[k]
	}
	return optF, x, nil
}

// errNumerical marca los fallos de gonum que no dicen nada del problema:
// base singular, Bland sin candidato, phase I fallida o panic.
var errNumerical = errors.New("simplex numerical failure")

// simplex envuelve lp.Simplex mapeando sus errores al contrato del paquete.
func simplex(c []float64, a *mat.Dense, b []float64, tol float64) (optF float64, x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", errNumerical, r)
		}
	}()

	if m, n := a.Dims(); m == n {
		return square(c, a, b)
	}

	optF, x, err = lp.Simplex(c, a, b, tol, nil)
	switch {
	case err == nil:
		return optF, x, nil
	case errors.Is(err, lp.ErrInfeasible):
		return 0, nil, errNodeInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return 0, nil, mip.ErrUnbounded
	default:
		return 0, nil, fmt.Errorf("%w: %w", errNumerical, err)
	}
}

// square resuelve un sistema cuadrado: el único punto es óptimo si es >= 0.
// Tolera negativos de redondeo, que lp.Simplex rechazaría como infactibles.
func square(c []float64, a *mat.Dense, b []float64) (float64, []float64, error) {
	var xv mat.VecDense
	if err := xv.SolveVec(a, mat.NewVecDense(len(b), b)); err != nil {
		return 0, nil, fmt.Errorf("%w: %w", errNumerical, err)
	}
	x := make([]float64, len(c))
	optF := 0.0
	for i := range x {
		v := xv.AtVec(i)
		if v < -feasTol {
			return 0, nil, errNodeInfeasible
		}
		x[i] = math.Max(v, 0)
		optF += c[i] * x[i]
	}
	return optF, x, nil
}

// fixUnused elige el valor de una variable que no aparece en ninguna restricción.
// cost es el coeficiente en forma de minimización.
func fixUnused(cost, lo, up float64, loFinite, upFinite bool) (float64, error) {
	switch {
	case cost > 0 && loFinite:
		return lo, nil
	case cost < 0 && upFinite:
		return up, nil
	case cost == 0 && loFinite:
		return lo, nil
	case cost == 0 && upFinite:
		return up, nil
	case cost == 0:
		return 0, nil
	default:
		return 0, mip.ErrUnbounded
	}
}

func allZero(coefs map[int]float64, tol float64) bool {
	for _, v := range coefs {
		if math.Abs(v) > tol {
			return false
		}
	}
	return true
}

func trivialHolds(sense mip.Sense, rhs, tol float64) bool {
	switch sense {
	case mip.LessEq:
		return 0 <= rhs+tol
	case mip.GreaterEq:
		return 0 >= rhs-tol
	default:
		return math.Abs(rhs) <= tol
	}
}
