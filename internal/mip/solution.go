package mip

import "math"

// Solution es la asignación óptima devuelta por un solver.
// Los valores de las variables binarias ya vienen redondeados a 0/1 exactos.
type Solution struct {
	Objective float64
	Values    []float64
	Nodes     int // nodos de branch-and-bound explorados, informativo
}

// Value devuelve el valor de v.
func (s Solution) Value(v Var) float64 { return s.Values[v] }

// Bool devuelve true si la variable binaria v vale 1.
func (s Solution) Bool(v Var) bool { return s.Values[v] == 1 }

// RoundBinaries redondea las variables binarias a 0/1 exactos.
// Devuelve false si algún valor se aleja de un entero más que tol.
func RoundBinaries(p *Problem, values []float64, tol float64) ([]float64, bool) {
	out := make([]float64, len(values))
	copy(out, values)
	for i, v := range p.Vars {
		if v.Kind != Binary {
			continue
		}
		r := math.Round(out[i])
		if math.Abs(out[i]-r) > tol {
			return nil, false
		}
		out[i] = r
	}
	return out, true
}
