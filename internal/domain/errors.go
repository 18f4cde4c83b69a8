package domain

import (
	"errors"
	"fmt"
)

// Errores del núcleo. Todos llegan al llamador envueltos en ScenarioError,
// ninguno se recupera cambiando el escenario pedido.
var (
	ErrChipNotYetUnlocked = errors.New("chip not yet unlocked")
	ErrChipAlreadyUsed    = errors.New("chip already used this season")
	ErrUnknownChip        = errors.New("unknown chip")
	ErrInfeasible         = errors.New("no feasible team")
	ErrUnknownEntity      = errors.New("unknown entity in previous team")
	ErrInvalidCatalog     = errors.New("invalid catalog")
	ErrBigMTooSmall       = errors.New("big-M constant too small for catalog")
	ErrSolverTimeout      = errors.New("solver timed out")
	ErrSolver             = errors.New("solver error")
)

// ScenarioError adjunta el contexto del escenario a un fallo del solve.
type ScenarioError struct {
	Kind   ScenarioKind
	Chip   Chip
	Detail string // restricción o nombre que causó el fallo
	Err    error
}

func (e *ScenarioError) Error() string {
	label := e.Kind.String()
	if e.Chip != ChipNone {
		label = fmt.Sprintf("%s (chip %s)", label, e.Chip)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", label, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", label, e.Err, e.Detail)
}

func (e *ScenarioError) Unwrap() error { return e.Err }

// NewScenarioError construye un ScenarioError; detail es opcional.
func NewScenarioError(kind ScenarioKind, chip Chip, err error, detail string) *ScenarioError {
	return &ScenarioError{Kind: kind, Chip: chip, Detail: detail, Err: err}
}
