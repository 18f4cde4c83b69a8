package domain

import "slices"

// UnlimitedTransfers es el centinela de "transferencias ilimitadas" (primera carrera).
const UnlimitedTransfers = -1

// Asignación de transferencias para la carrera siguiente.
const (
	FirstRaceNextTransfers = 2
	BaseNextTransfers      = 2
	RolledNextTransfers    = 3
)

// DefaultBudget es el presupuesto de la primera carrera si la config no dice otra cosa.
const DefaultBudget = 100.0

// SeasonState es el estado persistido del equipo entre carreras.
// El núcleo lo trata como input inmutable y devuelve un candidato nuevo.
type SeasonState struct {
	SelectedEntities   []string
	AvailableTransfers int
	UsedChips          []Chip
	RemainingBudget    float64
}

// NewSeasonState devuelve el estado de primera carrera: sin equipo,
// transferencias ilimitadas, sin chips usados.
func NewSeasonState() SeasonState {
	return SeasonState{AvailableTransfers: UnlimitedTransfers}
}

// IsFirstRace devuelve true si todavía no hay equipo guardado.
func (s SeasonState) IsFirstRace() bool {
	return len(s.SelectedEntities) == 0
}

// HasUsed devuelve true si el chip ya se jugó esta temporada.
func (s SeasonState) HasUsed(c Chip) bool {
	return slices.Contains(s.UsedChips, c)
}

// Holds devuelve true si la entidad está en el equipo actual.
func (s SeasonState) Holds(name string) bool {
	return slices.Contains(s.SelectedEntities, name)
}

// Clone devuelve una copia profunda, para que los candidatos no compartan slices.
func (s SeasonState) Clone() SeasonState {
	return SeasonState{
		SelectedEntities:   slices.Clone(s.SelectedEntities),
		AvailableTransfers: s.AvailableTransfers,
		UsedChips:          slices.Clone(s.UsedChips),
		RemainingBudget:    s.RemainingBudget,
	}
}

// NextAvailableTransfers calcula la asignación de la carrera siguiente.
//   - primera carrera: siempre 2
//   - equipo guardado con transferencias ilimitadas: 2, no hay cupo que acumular
//   - si se usaron menos transferencias de las disponibles, se acumula una: 3
//   - en otro caso: 2
func NextAvailableTransfers(prior SeasonState, transfersUsed int) int {
	switch {
	case prior.IsFirstRace():
		return FirstRaceNextTransfers
	case prior.AvailableTransfers == UnlimitedTransfers:
		return BaseNextTransfers
	case transfersUsed < prior.AvailableTransfers:
		return RolledNextTransfers
	default:
		return BaseNextTransfers
	}
}
