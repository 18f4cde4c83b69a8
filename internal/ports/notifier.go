package ports

import (
	"context"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
)

// Reporter presenta la recomendación al usuario.
type Reporter interface {
	// Report muestra el equipo, las transferencias y los totales de un solve.
	Report(ctx context.Context, result domain.OptimizationResult) error
}
