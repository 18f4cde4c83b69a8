// Package optimizer orquesta un solve: catálogo + estado de temporada +
// escenario → parámetros → modelo → solver → resultado de dominio.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
	"github.com/alejandrodnm/f1optimiser/internal/mip"
	"github.com/alejandrodnm/f1optimiser/internal/ports"
)

// Config contiene la configuración del optimizador.
type Config struct {
	Formulation   FormulationConfig
	DefaultBudget float64 // presupuesto de la primera carrera
	Workers       int     // goroutines para Compare (0 = una por escenario)
}

// DefaultConfig devuelve la configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Formulation:   DefaultFormulationConfig(),
		DefaultBudget: domain.DefaultBudget,
	}
}

// Optimizer es el orquestador principal. Nunca escribe el estado de
// temporada por su cuenta: Optimize propone, Commit persiste.
type Optimizer struct {
	cfg     Config
	catalog ports.CatalogProvider
	season  ports.SeasonStore
	solver  ports.Solver
}

// New crea un Optimizer con todas las dependencias inyectadas.
func New(cfg Config, catalog ports.CatalogProvider, season ports.SeasonStore, solver ports.Solver) *Optimizer {
	if cfg.DefaultBudget <= 0 {
		cfg.DefaultBudget = domain.DefaultBudget
	}
	if cfg.Formulation.PenaltyWeight == 0 {
		cfg.Formulation.PenaltyWeight = domain.TransferPenaltyWeight
	}
	if cfg.Formulation.BigM <= 0 {
		cfg.Formulation.BigM = DefaultFormulationConfig().BigM
	}
	return &Optimizer{cfg: cfg, catalog: catalog, season: season, solver: solver}
}

// Snapshot es el input inmutable de uno o varios solves.
type Snapshot struct {
	Catalog *domain.Catalog
	Prior   domain.SeasonState
}

// Snapshot carga catálogo y estado de temporada. Sin estado guardado se usa
// el de primera carrera.
func (o *Optimizer) Snapshot(ctx context.Context) (Snapshot, error) {
	catalog, err := o.catalog.FetchCatalog(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("optimizer.Snapshot: fetch catalog: %w", err)
	}

	prior := domain.NewSeasonState()
	if o.season != nil {
		state, found, err := o.season.LoadSeason(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("optimizer.Snapshot: load season: %w", err)
		}
		if found {
			prior = state
		}
	}
	return Snapshot{Catalog: catalog, Prior: prior}, nil
}

// Optimize ejecuta un solve completo para el escenario pedido.
func (o *Optimizer) Optimize(ctx context.Context, req domain.ScenarioRequest) (domain.OptimizationResult, error) {
	snap, err := o.Snapshot(ctx)
	if err != nil {
		return domain.OptimizationResult{}, err
	}
	return o.Solve(ctx, snap, req)
}

// Solve resuelve un escenario sobre un snapshot dado. Función pura respecto al
// snapshot: se puede llamar en paralelo.
func (o *Optimizer) Solve(ctx context.Context, snap Snapshot, req domain.ScenarioRequest) (domain.OptimizationResult, error) {
	start := time.Now()

	if req.Chip != domain.ChipLimitless && req.CostCap <= 0 {
		req.CostCap = o.deriveCostCap(snap)
	}

	params, err := domain.Resolve(req, snap.Prior)
	if err != nil {
		return domain.OptimizationResult{}, err
	}

	f, err := Formulate(snap.Catalog, params, snap.Prior, o.cfg.Formulation)
	if err != nil {
		return domain.OptimizationResult{}, err
	}

	sol, err := o.solver.Solve(ctx, f.Problem)
	if err != nil {
		return domain.OptimizationResult{}, solverError(params, err)
	}

	res, err := Interpret(f, sol)
	if err != nil {
		return domain.OptimizationResult{}, err
	}
	res.RunID = uuid.NewString()

	slog.Info("solve complete",
		"run_id", res.RunID,
		"scenario", params.Kind.String(),
		"chip", params.Chip.String(),
		"cost_cap", params.CostCap,
		"transfers_used", res.TransfersUsed,
		"penalty", res.Penalty,
		"total_xpts", res.TotalExpectedPoints,
		"nodes", sol.Nodes,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// Commit persiste el candidato de estado del resultado.
//
// En Limitless el equipo, las transferencias y el presupuesto guardados no
// cambian, pero SaveSeason se llama igual para añadir limitless a used_chips:
// es la única escritura y evita que el chip se vuelva a jugar.
func (o *Optimizer) Commit(ctx context.Context, res domain.OptimizationResult) error {
	if o.season == nil {
		return errors.New("optimizer.Commit: no season store configured")
	}
	if err := o.season.SaveSeason(ctx, res.Candidate()); err != nil {
		return fmt.Errorf("optimizer.Commit: %w", err)
	}
	if err := o.season.RecordSolve(ctx, res, true); err != nil {
		slog.Warn("failed to record solve history", "run_id", res.RunID, "err", err)
	}
	slog.Info("season state saved",
		"run_id", res.RunID,
		"restored_prior", res.RestorePriorState,
		"next_transfers", res.Candidate().AvailableTransfers,
	)
	return nil
}

// Discard registra en el histórico un resultado que el usuario no guardó.
func (o *Optimizer) Discard(ctx context.Context, res domain.OptimizationResult) error {
	if o.season == nil {
		return nil
	}
	if err := o.season.RecordSolve(ctx, res, false); err != nil {
		return fmt.Errorf("optimizer.Discard: %w", err)
	}
	return nil
}

// deriveCostCap: valor actual del equipo previo + presupuesto restante,
// o el presupuesto por defecto en la primera carrera.
func (o *Optimizer) deriveCostCap(snap Snapshot) float64 {
	if snap.Prior.IsFirstRace() {
		return o.cfg.DefaultBudget
	}
	return snap.Catalog.TeamValue(snap.Prior.SelectedEntities) + snap.Prior.RemainingBudget
}

// solverError mapea un fallo del solver a los errores de dominio.
func solverError(params domain.ScenarioParameters, err error) error {
	switch {
	case errors.Is(err, mip.ErrInfeasible):
		detail := "roster shape and transfer constraints cannot be met"
		if params.HasCostCap() {
			detail = fmt.Sprintf("no 5+2 roster fits cost cap %.2f", params.CostCap)
		}
		return domain.NewScenarioError(params.Kind, params.Chip, domain.ErrInfeasible, detail)
	case errors.Is(err, mip.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.NewScenarioError(params.Kind, params.Chip, domain.ErrSolverTimeout, err.Error())
	default:
		return domain.NewScenarioError(params.Kind, params.Chip, domain.ErrSolver, err.Error())
	}
}
