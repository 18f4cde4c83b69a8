package ports

import (
	"context"

	"github.com/alejandrodnm/f1optimiser/internal/mip"
)

// Solver resuelve un programa entero-mixto. Es una caja negra: el núcleo no
// asume nada sobre el algoritmo interno.
type Solver interface {
	// Solve devuelve la solución óptima con las binarias redondeadas, o
	// mip.ErrInfeasible, mip.ErrUnbounded, mip.ErrTimeout u otro error.
	Solve(ctx context.Context, p *mip.Problem) (mip.Solution, error)
}
