// Package mip describe un programa lineal entero-mixto de forma independiente
// del solver: variables con cotas, restricciones lineales y un objetivo.
// El formulador construye un Problem; un ports.Solver lo resuelve.
package mip

import (
	"errors"
	"fmt"
	"math"
)

// Errores que un solver devuelve a través del contrato.
var (
	ErrInfeasible = errors.New("mip: problem is infeasible")
	ErrUnbounded  = errors.New("mip: problem is unbounded")
	ErrTimeout    = errors.New("mip: solve timed out")
)

// DefaultTolerance es la tolerancia de integralidad y de comparación de objetivos.
const DefaultTolerance = 1e-6

// VarKind distingue variables binarias de continuas.
type VarKind int

const (
	Binary VarKind = iota + 1
	Continuous
)

// Var es el índice de una variable dentro de su Problem.
type Var int

// Variable describe una variable de decisión. Lower/Upper pueden ser ±Inf.
type Variable struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
}

// Term es coef × var.
type Term struct {
	Var  Var
	Coef float64
}

// Expr es una expresión lineal Σ coef·var + Const.
type Expr struct {
	Terms []Term
	Const float64
}

// Add añade coef·v a la expresión. Devuelve la expresión para encadenar.
func (e Expr) Add(v Var, coef float64) Expr {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
	return e
}

// Plus suma una constante.
func (e Expr) Plus(c float64) Expr {
	e.Const += c
	return e
}

// Eval evalúa la expresión con los valores dados.
func (e Expr) Eval(values []float64) float64 {
	total := e.Const
	for _, t := range e.Terms {
		total += t.Coef * values[t.Var]
	}
	return total
}

// Sense es el sentido de una restricción.
type Sense int

const (
	LessEq Sense = iota + 1
	Equal
	GreaterEq
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case Equal:
		return "="
	case GreaterEq:
		return ">="
	default:
		return "?"
	}
}

// Constraint es Expr (sense) RHS. La constante de Expr se pasa al lado derecho.
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Satisfied comprueba la restricción con tolerancia tol.
func (c Constraint) Satisfied(values []float64, tol float64) bool {
	lhs := c.Expr.Eval(values)
	switch c.Sense {
	case LessEq:
		return lhs <= c.RHS+tol
	case GreaterEq:
		return lhs >= c.RHS-tol
	default:
		return math.Abs(lhs-c.RHS) <= tol
	}
}

// Problem es el modelo completo.
type Problem struct {
	Name        string
	Maximize    bool
	Vars        []Variable
	Constraints []Constraint
	Objective   Expr

	names map[string]Var
}

// NewProblem crea un problema vacío.
func NewProblem(name string, maximize bool) *Problem {
	return &Problem{Name: name, Maximize: maximize, names: make(map[string]Var)}
}

// AddBinary añade una variable binaria.
func (p *Problem) AddBinary(name string) Var {
	return p.addVar(Variable{Name: name, Kind: Binary, Lower: 0, Upper: 1})
}

// AddContinuous añade una variable continua con cotas [lower, upper].
func (p *Problem) AddContinuous(name string, lower, upper float64) Var {
	return p.addVar(Variable{Name: name, Kind: Continuous, Lower: lower, Upper: upper})
}

func (p *Problem) addVar(v Variable) Var {
	if _, dup := p.names[v.Name]; dup {
		panic(fmt.Sprintf("mip: duplicate variable %q", v.Name))
	}
	id := Var(len(p.Vars))
	p.Vars = append(p.Vars, v)
	p.names[v.Name] = id
	return id
}

// Lookup busca una variable por nombre.
func (p *Problem) Lookup(name string) (Var, bool) {
	v, ok := p.names[name]
	return v, ok
}

// AddConstraint añade expr (sense) rhs.
func (p *Problem) AddConstraint(name string, expr Expr, sense Sense, rhs float64) {
	p.Constraints = append(p.Constraints, Constraint{Name: name, Expr: expr, Sense: sense, RHS: rhs})
}

// SetObjective fija el objetivo.
func (p *Problem) SetObjective(expr Expr) {
	p.Objective = expr
}

// Validate comprueba que las referencias a variables y las cotas tienen sentido.
func (p *Problem) Validate() error {
	for i, v := range p.Vars {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || v.Lower > v.Upper {
			return fmt.Errorf("mip: variable %q has invalid bounds [%g, %g]", v.Name, v.Lower, v.Upper)
		}
		if v.Kind == Binary && (v.Lower < 0 || v.Upper > 1) {
			return fmt.Errorf("mip: binary variable %q (#%d) has bounds outside [0, 1]", v.Name, i)
		}
	}
	check := func(where string, e Expr) error {
		for _, t := range e.Terms {
			if int(t.Var) < 0 || int(t.Var) >= len(p.Vars) {
				return fmt.Errorf("mip: %s references unknown variable #%d", where, t.Var)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("mip: %s has non-finite coefficient", where)
			}
		}
		return nil
	}
	for _, c := range p.Constraints {
		if len(c.Expr.Terms) == 0 {
			return fmt.Errorf("mip: constraint %q has no terms", c.Name)
		}
		if err := check("constraint "+c.Name, c.Expr); err != nil {
			return err
		}
	}
	return check("objective", p.Objective)
}

// Feasible comprueba cotas, integralidad y restricciones de una asignación.
func (p *Problem) Feasible(values []float64, tol float64) error {
	if len(values) != len(p.Vars) {
		return fmt.Errorf("mip: got %d values for %d variables", len(values), len(p.Vars))
	}
	for i, v := range p.Vars {
		x := values[i]
		if x < v.Lower-tol || x > v.Upper+tol {
			return fmt.Errorf("mip: %s=%g out of bounds", v.Name, x)
		}
		if v.Kind == Binary && math.Abs(x-math.Round(x)) > tol {
			return fmt.Errorf("mip: %s=%g not integral", v.Name, x)
		}
	}
	for _, c := range p.Constraints {
		if !c.Satisfied(values, tol) {
			return fmt.Errorf("mip: constraint %s violated", c.Name)
		}
	}
	return nil
}
