package domain

import (
	"fmt"
	"slices"
)

// TransferPenaltyWeight son los puntos que cuesta cada transferencia por encima del límite.
const TransferPenaltyWeight = 10.0

// Transfer es un cambio "sale > entra" dentro del mismo rol.
type Transfer struct {
	Role Role
	Out  string
	In   string
}

func (t Transfer) String() string {
	return fmt.Sprintf("%s > %s", t.Out, t.In)
}

// OptimizationResult es la recomendación de equipo para una carrera.
// Se deriva de la asignación del solver y del estado previo; el núcleo no la persiste.
type OptimizationResult struct {
	RunID  string
	Params ScenarioParameters

	Drivers          []string // orden de catálogo
	Constructors     []string // orden de catálogo
	SelectedEntities []string // ordenado por nombre
	Entities         []Entity // pilotos y luego constructores, orden de catálogo
	BoostedDriver    string
	BoostBonus       float64 // (mult-1)×pts o max(pts) en Autopilot

	TransfersUsed    int
	Transfers        []Transfer
	PenaltyTransfers int     // max(0, usadas - límite), 0 si exento
	Penalty          float64 // TransferPenaltyWeight × PenaltyTransfers

	BasePoints          float64 // suma de puntos esperados sin boost
	TotalExpectedPoints float64 // base + boost - penalización
	SolverObjective     float64
	PriceChange         float64 // suma del cambio de precio proyectado

	TeamCost        float64
	CostCap         float64
	RemainingBudget float64

	NextAvailableTransfers int
	// RestorePriorState indica que el estado previo debe restaurarse aunque
	// el usuario confirme guardar (Limitless).
	RestorePriorState bool

	prior SeasonState
}

// WithPrior adjunta el snapshot del estado previo usado en el solve.
func (r OptimizationResult) WithPrior(prior SeasonState) OptimizationResult {
	r.prior = prior.Clone()
	return r
}

// Prior devuelve el snapshot del estado previo.
func (r OptimizationResult) Prior() SeasonState { return r.prior.Clone() }

// Candidate devuelve el estado de temporada que se escribiría si el usuario guarda.
// En Limitless es el estado previo (con el chip marcado como usado).
func (r OptimizationResult) Candidate() SeasonState {
	next := r.prior.Clone()
	if r.Params.Chip != ChipNone && !next.HasUsed(r.Params.Chip) {
		next.UsedChips = append(next.UsedChips, r.Params.Chip)
	}
	if r.RestorePriorState {
		return next
	}
	next.SelectedEntities = slices.Clone(r.SelectedEntities)
	next.AvailableTransfers = r.NextAvailableTransfers
	next.RemainingBudget = r.RemainingBudget
	return next
}
