package ports

import (
	"context"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
)

// CatalogProvider obtiene las proyecciones de pilotos y constructores para la carrera.
type CatalogProvider interface {
	// FetchCatalog devuelve el catálogo validado, en el orden de la fuente.
	FetchCatalog(ctx context.Context) (*domain.Catalog, error)
}
