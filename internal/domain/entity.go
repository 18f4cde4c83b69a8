package domain

import (
	"fmt"
	"math"
	"strings"
)

// Tamaño fijo del equipo: siempre 5 pilotos y 2 constructores.
const (
	DriversPerTeam      = 5
	ConstructorsPerTeam = 2
	TeamSize            = DriversPerTeam + ConstructorsPerTeam
)

// Role distingue pilotos de constructores.
type Role int

const (
	RoleDriver Role = iota + 1
	RoleConstructor
)

// String devuelve el nombre del rol tal como aparece en los catálogos.
func (r Role) String() string {
	switch r {
	case RoleDriver:
		return "driver"
	case RoleConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

// ParseRole acepta "driver"/"constructor" (y sus abreviaturas d/c).
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "driver", "d":
		return RoleDriver, nil
	case "constructor", "c", "team":
		return RoleConstructor, nil
	default:
		return 0, fmt.Errorf("%w: unknown role %q", ErrInvalidCatalog, s)
	}
}

// Entity es un piloto o constructor seleccionable para la carrera.
// Inmutable durante un solve.
type Entity struct {
	Name           string
	Role           Role
	Price          float64
	ExpectedPoints float64
	PriceChange    float64 // cambio de precio proyectado, solo informativo
}

// IsDriver devuelve true si la entidad es un piloto.
func (e Entity) IsDriver() bool { return e.Role == RoleDriver }

// Catalog es la lista ordenada de entidades candidatas para una carrera.
// El orden del input se conserva: formulación y reporte lo respetan.
type Catalog struct {
	entities []Entity
	byName   map[string]int
}

// NewCatalog valida y construye un catálogo.
// Los nombres deben ser únicos y los roles conocidos.
func NewCatalog(entities []Entity) (*Catalog, error) {
	c := &Catalog{
		entities: make([]Entity, 0, len(entities)),
		byName:   make(map[string]int, len(entities)),
	}
	for i, e := range entities {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entity #%d has empty name", ErrInvalidCatalog, i)
		}
		if e.Role != RoleDriver && e.Role != RoleConstructor {
			return nil, fmt.Errorf("%w: entity %q has unknown role", ErrInvalidCatalog, e.Name)
		}
		if !isFinite(e.Price) || !isFinite(e.ExpectedPoints) || !isFinite(e.PriceChange) {
			return nil, fmt.Errorf("%w: entity %q has non-finite numbers", ErrInvalidCatalog, e.Name)
		}
		if e.Price < 0 {
			return nil, fmt.Errorf("%w: entity %q has negative price %.2f", ErrInvalidCatalog, e.Name, e.Price)
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate entity %q", ErrInvalidCatalog, e.Name)
		}
		c.byName[e.Name] = len(c.entities)
		c.entities = append(c.entities, e)
	}
	return c, nil
}

// Entities devuelve una copia de todas las entidades en orden de catálogo.
func (c *Catalog) Entities() []Entity {
	out := make([]Entity, len(c.entities))
	copy(out, c.entities)
	return out
}

// Drivers devuelve los pilotos en orden de catálogo.
func (c *Catalog) Drivers() []Entity { return c.byRole(RoleDriver) }

// Constructors devuelve los constructores en orden de catálogo.
func (c *Catalog) Constructors() []Entity { return c.byRole(RoleConstructor) }

// Lookup busca una entidad por nombre.
func (c *Catalog) Lookup(name string) (Entity, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Entity{}, false
	}
	return c.entities[i], true
}

// Len devuelve el número de entidades.
func (c *Catalog) Len() int { return len(c.entities) }

// Missing devuelve los nombres que no existen en el catálogo, en el orden dado.
func (c *Catalog) Missing(names []string) []string {
	var missing []string
	for _, n := range names {
		if _, ok := c.byName[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// TeamValue suma los precios actuales de las entidades dadas.
// Los nombres desconocidos se ignoran; el llamador valida antes con Missing.
func (c *Catalog) TeamValue(names []string) float64 {
	total := 0.0
	for _, n := range names {
		if e, ok := c.Lookup(n); ok {
			total += e.Price
		}
	}
	return total
}

func (c *Catalog) byRole(r Role) []Entity {
	var out []Entity
	for _, e := range c.entities {
		if e.Role == r {
			out = append(out, e)
		}
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
