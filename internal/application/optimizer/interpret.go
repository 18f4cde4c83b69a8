package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
	"github.com/alejandrodnm/f1optimiser/internal/mip"
)

// Interpret convierte la asignación redondeada del solver en un resultado de dominio.
// Los puntos totales se recalculan en términos de dominio y se contrastan
// con el objetivo del solver.
func Interpret(f *Formulation, sol mip.Solution) (domain.OptimizationResult, error) {
	params := f.Params
	tol := f.Config.Tolerance
	if tol <= 0 {
		tol = mip.DefaultTolerance
	}
	fail := func(detail string) (domain.OptimizationResult, error) {
		return domain.OptimizationResult{}, domain.NewScenarioError(params.Kind, params.Chip, domain.ErrSolver, detail)
	}

	if len(sol.Values) != len(f.Problem.Vars) {
		return fail(fmt.Sprintf("solution has %d values, model has %d variables", len(sol.Values), len(f.Problem.Vars)))
	}

	res := domain.OptimizationResult{
		Params:  params,
		CostCap: params.CostCap,
	}

	var selectedDrivers []domain.Entity
	for _, d := range f.Drivers {
		if sol.Bool(f.Pick[d.Name]) {
			selectedDrivers = append(selectedDrivers, d)
			res.Drivers = append(res.Drivers, d.Name)
			accumulate(&res, d)
		}
	}
	for _, c := range f.Constructors {
		if sol.Bool(f.Pick[c.Name]) {
			res.Constructors = append(res.Constructors, c.Name)
			accumulate(&res, c)
		}
	}
	if len(res.Drivers) != domain.DriversPerTeam || len(res.Constructors) != domain.ConstructorsPerTeam {
		return fail(fmt.Sprintf("roster has %d drivers and %d constructors", len(res.Drivers), len(res.Constructors)))
	}

	res.SelectedEntities = append(append([]string{}, res.Drivers...), res.Constructors...)
	sort.Strings(res.SelectedEntities)

	// Boost.
	boosted, err := f.boostedDriver(sol, selectedDrivers, tol)
	if err != nil {
		return fail(err.Error())
	}
	res.BoostedDriver = boosted.Name
	if params.BoostMode == domain.BoostMaxOfSelected {
		res.BoostBonus = boosted.ExpectedPoints
	} else {
		res.BoostBonus = (params.BoostMultiplier - 1) * boosted.ExpectedPoints
	}

	// Transferencias.
	res.Transfers = pairTransfers(f, res)
	res.TransfersUsed = 0
	for _, name := range res.SelectedEntities {
		if !f.Prior.Holds(name) {
			res.TransfersUsed++
		}
	}
	if params.HasTransferCeiling() {
		res.PenaltyTransfers = max(0, res.TransfersUsed-params.TransferCeiling)
	}
	res.Penalty = f.Config.PenaltyWeight * float64(res.PenaltyTransfers)

	res.TotalExpectedPoints = res.BasePoints + res.BoostBonus - res.Penalty
	res.SolverObjective = sol.Objective
	// El objetivo incluye el cambio de precio ponderado; el total no.
	want := res.TotalExpectedPoints + f.Config.PriceChangeWeight*res.PriceChange
	if math.Abs(want-sol.Objective) > 1e-4*math.Max(1, math.Abs(sol.Objective)) {
		return fail(fmt.Sprintf("domain total %.6f (+%.6f price change) differs from solver objective %.6f",
			res.TotalExpectedPoints, want-res.TotalExpectedPoints, sol.Objective))
	}

	// Presupuesto y estado siguiente.
	if params.HasCostCap() {
		res.RemainingBudget = params.CostCap - res.TeamCost
	} else {
		res.RemainingBudget = f.Prior.RemainingBudget
	}
	res.NextAvailableTransfers = domain.NextAvailableTransfers(f.Prior, res.TransfersUsed)
	res.RestorePriorState = !params.PersistsState

	return res.WithPrior(f.Prior), nil
}

// boostedDriver devuelve el piloto con boost. En max-of-selected es el elegido
// cuyos puntos igualan max_boost. En ambos modos, entre pilotos elegidos con
// los mismos puntos gana el primero en orden lexicográfico.
func (f *Formulation) boostedDriver(sol mip.Solution, selected []domain.Entity, tol float64) (domain.Entity, error) {
	var target float64
	switch f.Params.BoostMode {
	case domain.BoostMaxOfSelected:
		target = sol.Value(f.MaxBoost)
	default:
		var winners []domain.Entity
		for _, d := range f.Drivers {
			if sol.Bool(f.Boost[d.Name]) {
				winners = append(winners, d)
			}
		}
		if len(winners) != 1 {
			return domain.Entity{}, fmt.Errorf("expected one boosted driver, got %d", len(winners))
		}
		if !sol.Bool(f.Pick[winners[0].Name]) {
			return domain.Entity{}, fmt.Errorf("boosted driver %q is not selected", winners[0].Name)
		}
		target = winners[0].ExpectedPoints
	}

	var best *domain.Entity
	for i := range selected {
		d := &selected[i]
		if math.Abs(d.ExpectedPoints-target) > tol*math.Max(1, math.Abs(target)) {
			continue
		}
		if best == nil || d.Name < best.Name {
			best = d
		}
	}
	if best == nil {
		return domain.Entity{}, fmt.Errorf("no selected driver scores %.6f", target)
	}
	return *best, nil
}

// pairTransfers empareja salidas con entradas por rol, en orden de catálogo.
func pairTransfers(f *Formulation, res domain.OptimizationResult) []domain.Transfer {
	selected := make(map[string]bool, len(res.SelectedEntities))
	for _, n := range res.SelectedEntities {
		selected[n] = true
	}

	var out []domain.Transfer
	for _, group := range [][]domain.Entity{f.Drivers, f.Constructors} {
		var removed, added []string
		for _, e := range group {
			switch {
			case f.Prior.Holds(e.Name) && !selected[e.Name]:
				removed = append(removed, e.Name)
			case !f.Prior.Holds(e.Name) && selected[e.Name]:
				added = append(added, e.Name)
			}
		}
		for i := 0; i < min(len(removed), len(added)); i++ {
			out = append(out, domain.Transfer{Role: group[0].Role, Out: removed[i], In: added[i]})
		}
	}
	return out
}

// accumulate suma puntos, coste y cambio de precio de una entidad elegida.
func accumulate(res *domain.OptimizationResult, e domain.Entity) {
	res.Entities = append(res.Entities, e)
	res.BasePoints += e.ExpectedPoints
	res.TeamCost += e.Price
	res.PriceChange += e.PriceChange
}
