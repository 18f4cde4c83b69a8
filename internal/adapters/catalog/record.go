package catalog

import (
	"fmt"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
)

// record es una fila de proyecciones tal como llega de la fuente.
// Acepta el rol explícito (`role`) o las columnas booleanas `is_driver`/`is_constructor`,
// y los puntos como `expected_points` o `xPts`.
type record struct {
	Name           string   `json:"name" yaml:"name"`
	Role           string   `json:"role" yaml:"role"`
	IsDriver       bool     `json:"is_driver" yaml:"is_driver"`
	IsConstructor  bool     `json:"is_constructor" yaml:"is_constructor"`
	Price          float64  `json:"price" yaml:"price"`
	ExpectedPoints *float64 `json:"expected_points" yaml:"expected_points"`
	XPts           *float64 `json:"xPts" yaml:"xPts"`
	PriceChange    float64  `json:"price_change" yaml:"price_change"`
}

func (r record) toEntity() (domain.Entity, error) {
	role, err := r.role()
	if err != nil {
		return domain.Entity{}, err
	}

	var pts float64
	switch {
	case r.ExpectedPoints != nil:
		pts = *r.ExpectedPoints
	case r.XPts != nil:
		pts = *r.XPts
	default:
		return domain.Entity{}, fmt.Errorf("%w: %q has no expected points", domain.ErrInvalidCatalog, r.Name)
	}

	return domain.Entity{
		Name:           r.Name,
		Role:           role,
		Price:          r.Price,
		ExpectedPoints: pts,
		PriceChange:    r.PriceChange,
	}, nil
}

func (r record) role() (domain.Role, error) {
	if r.Role != "" {
		return domain.ParseRole(r.Role)
	}
	switch {
	case r.IsDriver && !r.IsConstructor:
		return domain.RoleDriver, nil
	case r.IsConstructor && !r.IsDriver:
		return domain.RoleConstructor, nil
	default:
		return 0, fmt.Errorf("%w: %q must be exactly one of driver/constructor", domain.ErrInvalidCatalog, r.Name)
	}
}

// toCatalog convierte y valida todas las filas.
func toCatalog(records []record) (*domain.Catalog, error) {
	entities := make([]domain.Entity, 0, len(records))
	for _, r := range records {
		e, err := r.toEntity()
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return domain.NewCatalog(entities)
}
