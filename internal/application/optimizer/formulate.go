package optimizer

// formulate.go: traduce ScenarioParameters + catálogo a un programa entero-mixto.
//
// Variables:
//   - pick_<name>      binaria por piloto y por constructor
//   - boost_<driver>   binaria por piloto (explicit-single)
//   - max_boost        continua >= min(pts) + argmax_<driver> pesos continuos (max-of-selected)
//   - penalty_transfers continua >= 0, transferencias por encima del límite
//
// El formulador no conoce escenarios: solo lee ScenarioParameters.

import (
	"fmt"
	"math"
	"strings"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
	"github.com/alejandrodnm/f1optimiser/internal/mip"
)

// bigMMargin separa la cota de Max_Covers de un piloto no elegido del mínimo
// de puntos del catálogo.
const bigMMargin = 1.0

// FormulationConfig contiene las constantes numéricas del modelo.
type FormulationConfig struct {
	// BigM es el tope del big-M de Autopilot. El modelo usa el menor entre
	// BigM y spread+bigMMargin, así que debe superar max(pts) - min(pts).
	BigM          float64
	PenaltyWeight float64
	// PriceChangeWeight premia en el objetivo el cambio de precio proyectado.
	// No entra en TotalExpectedPoints. 0 lo desactiva.
	PriceChangeWeight float64
	Tolerance         float64
}

// DefaultFormulationConfig devuelve los valores por defecto.
func DefaultFormulationConfig() FormulationConfig {
	return FormulationConfig{
		BigM:          1000,
		PenaltyWeight: domain.TransferPenaltyWeight,
		Tolerance:     mip.DefaultTolerance,
	}
}

// Formulation es el problema construido más el mapeo variable ↔ entidad
// que necesita el intérprete.
type Formulation struct {
	Problem *mip.Problem
	Params  domain.ScenarioParameters
	Catalog *domain.Catalog
	Prior   domain.SeasonState
	Config  FormulationConfig

	Drivers      []domain.Entity
	Constructors []domain.Entity

	Pick     map[string]mip.Var // selección, por nombre de entidad
	Boost    map[string]mip.Var // explicit-single
	ArgMax   map[string]mip.Var // max-of-selected
	MaxBoost mip.Var            // max-of-selected
	BigM     float64            // max-of-selected, constante efectiva
	Penalty  mip.Var
}

// Formulate construye el problema para un escenario ya resuelto.
func Formulate(catalog *domain.Catalog, params domain.ScenarioParameters, prior domain.SeasonState, cfg FormulationConfig) (*Formulation, error) {
	if missing := catalog.Missing(prior.SelectedEntities); len(missing) > 0 {
		return nil, domain.NewScenarioError(params.Kind, params.Chip, domain.ErrUnknownEntity,
			strings.Join(missing, ", "))
	}

	drivers := catalog.Drivers()
	constructors := catalog.Constructors()
	if len(drivers) < domain.DriversPerTeam {
		return nil, domain.NewScenarioError(params.Kind, params.Chip, domain.ErrInfeasible,
			fmt.Sprintf("catalog has %d drivers, need %d", len(drivers), domain.DriversPerTeam))
	}
	if len(constructors) < domain.ConstructorsPerTeam {
		return nil, domain.NewScenarioError(params.Kind, params.Chip, domain.ErrInfeasible,
			fmt.Sprintf("catalog has %d constructors, need %d", len(constructors), domain.ConstructorsPerTeam))
	}
	if params.BoostMode == domain.BoostMaxOfSelected {
		if lo, hi := pointsRange(drivers); cfg.BigM <= hi-lo {
			return nil, domain.NewScenarioError(params.Kind, params.Chip, domain.ErrBigMTooSmall,
				fmt.Sprintf("big_m=%g, driver points spread=%g", cfg.BigM, hi-lo))
		}
	}

	f := &Formulation{
		Problem:      mip.NewProblem("Fantasy_F1_"+strings.ReplaceAll(params.Kind.String(), " ", "_"), true),
		Params:       params,
		Catalog:      catalog,
		Prior:        prior.Clone(),
		Config:       cfg,
		Drivers:      drivers,
		Constructors: constructors,
		Pick:         make(map[string]mip.Var, catalog.Len()),
		MaxBoost:     -1,
	}
	p := f.Problem

	var objective mip.Expr

	// 1. Selección y forma del equipo.
	var driverCount, constructorCount, cost mip.Expr
	for _, d := range drivers {
		x := p.AddBinary("pick_" + d.Name)
		f.Pick[d.Name] = x
		driverCount = driverCount.Add(x, 1)
		cost = cost.Add(x, d.Price)
		objective = objective.Add(x, f.pickCoef(d))
	}
	for _, c := range constructors {
		y := p.AddBinary("pick_" + c.Name)
		f.Pick[c.Name] = y
		constructorCount = constructorCount.Add(y, 1)
		cost = cost.Add(y, c.Price)
		objective = objective.Add(y, f.pickCoef(c))
	}
	p.AddConstraint("Exactly_5_Drivers", driverCount, mip.Equal, domain.DriversPerTeam)
	p.AddConstraint("Exactly_2_Constructors", constructorCount, mip.Equal, domain.ConstructorsPerTeam)

	// 2. Presupuesto: se omite si el tope es infinito (Limitless).
	if params.HasCostCap() {
		p.AddConstraint("Cost_Cap", cost, mip.LessEq, params.CostCap)
	}

	// 3. Boost.
	switch params.BoostMode {
	case domain.BoostMaxOfSelected:
		objective = f.addMaxOfSelected(objective)
	default:
		objective = f.addExplicitBoost(objective)
	}

	// 4. Transferencias y penalización.
	objective = f.addTransferPenalty(objective)

	p.SetObjective(objective)
	if err := p.Validate(); err != nil {
		return nil, domain.NewScenarioError(params.Kind, params.Chip, domain.ErrSolver, err.Error())
	}
	return f, nil
}

// addExplicitBoost: una binaria por piloto, exactamente una activa y solo
// sobre un piloto seleccionado. Aporta (mult-1)×pts.
func (f *Formulation) addExplicitBoost(objective mip.Expr) mip.Expr {
	p := f.Problem
	f.Boost = make(map[string]mip.Var, len(f.Drivers))
	extra := f.Params.BoostMultiplier - 1

	var one mip.Expr
	for _, d := range f.Drivers {
		b := p.AddBinary("boost_" + d.Name)
		f.Boost[d.Name] = b
		one = one.Add(b, 1)
		p.AddConstraint("Boost_Only_If_Selected_"+d.Name,
			mip.Expr{}.Add(b, 1).Add(f.Pick[d.Name], -1), mip.LessEq, 0)
		objective = objective.Add(b, extra*d.ExpectedPoints)
	}
	p.AddConstraint("One_Boost", one, mip.Equal, 1)
	return objective
}

// pickCoef es el coeficiente de una entidad en el objetivo: puntos más el
// cambio de precio ponderado.
func (f *Formulation) pickCoef(e domain.Entity) float64 {
	return e.ExpectedPoints + f.Config.PriceChangeWeight*e.PriceChange
}

// addMaxOfSelected codifica max_boost = max(pts) sobre los pilotos elegidos.
//
// Cota inferior (big-M): max_boost >= pts_d - M(1 - x_d) para cada piloto,
// con M = min(BigM, spread + bigMMargin).
// Cota superior: max_boost <= Σ pts_d·argmax_d, con argmax_d <= x_d y
// Σ argmax_d = 1. Con x entera el máximo de Σ pts_d·argmax_d es el mayor
// puntaje elegido, así que los pesos no necesitan ser binarios.
func (f *Formulation) addMaxOfSelected(objective mip.Expr) mip.Expr {
	p := f.Problem
	lo, hi := pointsRange(f.Drivers)
	f.BigM = math.Min(f.Config.BigM, hi-lo+bigMMargin)
	f.ArgMax = make(map[string]mip.Var, len(f.Drivers))
	f.MaxBoost = p.AddContinuous("max_boost", lo, math.Inf(1))

	var one mip.Expr
	attained := mip.Expr{}.Add(f.MaxBoost, 1)
	for _, d := range f.Drivers {
		x := f.Pick[d.Name]
		// max_boost - M·x_d >= pts_d - M
		p.AddConstraint("Max_Covers_"+d.Name,
			mip.Expr{}.Add(f.MaxBoost, 1).Add(x, -f.BigM), mip.GreaterEq, d.ExpectedPoints-f.BigM)

		w := p.AddContinuous("argmax_"+d.Name, 0, math.Inf(1))
		f.ArgMax[d.Name] = w
		one = one.Add(w, 1)
		p.AddConstraint("ArgMax_Only_If_Selected_"+d.Name,
			mip.Expr{}.Add(w, 1).Add(x, -1), mip.LessEq, 0)
		attained = attained.Add(w, -d.ExpectedPoints)
	}
	p.AddConstraint("One_ArgMax", one, mip.Equal, 1)
	// max_boost - Σ pts_d·argmax_d <= 0
	p.AddConstraint("Max_Attained", attained, mip.LessEq, 0)
	return objective.Add(f.MaxBoost, 1)
}

// addTransferPenalty: transfers = Σ x_e con e fuera del equipo previo.
// penalty >= transfers - límite; fijada a 0 si exento o sin límite.
func (f *Formulation) addTransferPenalty(objective mip.Expr) mip.Expr {
	p := f.Problem
	if !f.Params.HasTransferCeiling() {
		f.Penalty = p.AddContinuous("penalty_transfers", 0, 0)
		return objective
	}

	f.Penalty = p.AddContinuous("penalty_transfers", 0, math.Inf(1))
	// transfers - penalty <= ceiling
	row := mip.Expr{}.Add(f.Penalty, -1)
	for _, e := range f.Catalog.Entities() {
		if !f.Prior.Holds(e.Name) {
			row = row.Add(f.Pick[e.Name], 1)
		}
	}
	p.AddConstraint("Penalty_Transfers", row, mip.LessEq, float64(f.Params.TransferCeiling))
	return objective.Add(f.Penalty, -f.Config.PenaltyWeight)
}

// pointsRange devuelve min(pts) y max(pts) entre pilotos.
func pointsRange(drivers []domain.Entity) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, d := range drivers {
		lo = math.Min(lo, d.ExpectedPoints)
		hi = math.Max(hi, d.ExpectedPoints)
	}
	return lo, hi
}
