package domain

import (
	"fmt"
	"math"
	"strings"
)

// Chip es un modificador de reglas de uso único por temporada.
type Chip string

const (
	ChipNone       Chip = ""
	ChipWildcard   Chip = "wildcard"
	ChipLimitless  Chip = "limitless"
	ChipExtraDRS   Chip = "extra-drs"
	ChipAutopilot  Chip = "autopilot"
	ChipNoNegative Chip = "no-negative"
	ChipFinalFix   Chip = "final-fix"
)

// Chips lista todos los chips conocidos en orden de menú.
var Chips = []Chip{ChipWildcard, ChipLimitless, ChipExtraDRS, ChipAutopilot, ChipNoNegative, ChipFinalFix}

func (c Chip) String() string {
	if c == ChipNone {
		return "none"
	}
	return string(c)
}

// ParseChip acepta el identificador del chip; "", "none" y "normal" significan sin chip.
func ParseChip(s string) (Chip, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "none", "normal":
		return ChipNone, nil
	case "extra-drs-boost", "drs":
		return ChipExtraDRS, nil
	}
	for _, c := range Chips {
		if string(c) == v {
			return c, nil
		}
	}
	return ChipNone, fmt.Errorf("%w: %q", ErrUnknownChip, s)
}

// requiresPriorTeam: chips que no se pueden jugar en la primera carrera.
func (c Chip) requiresPriorTeam() bool {
	switch c {
	case ChipWildcard, ChipLimitless, ChipFinalFix:
		return true
	default:
		return false
	}
}

// ScenarioKind es el conjunto cerrado de variantes de solve.
type ScenarioKind int

const (
	ScenarioNormal ScenarioKind = iota + 1
	ScenarioWildcard
	ScenarioLimitless
	ScenarioExtraDRS
	ScenarioAutopilot
	ScenarioNoNegativeFinalFix
)

func (k ScenarioKind) String() string {
	switch k {
	case ScenarioNormal:
		return "Normal"
	case ScenarioWildcard:
		return "Wildcard"
	case ScenarioLimitless:
		return "Limitless"
	case ScenarioExtraDRS:
		return "Extra DRS Boost"
	case ScenarioAutopilot:
		return "Autopilot"
	case ScenarioNoNegativeFinalFix:
		return "No Negative / Final Fix"
	default:
		return "Unknown"
	}
}

// KindOf mapea un chip a su variante de solve. No Negative y Final Fix
// comparten variante: formulan exactamente el mismo problema.
func KindOf(c Chip) (ScenarioKind, error) {
	switch c {
	case ChipNone:
		return ScenarioNormal, nil
	case ChipWildcard:
		return ScenarioWildcard, nil
	case ChipLimitless:
		return ScenarioLimitless, nil
	case ChipExtraDRS:
		return ScenarioExtraDRS, nil
	case ChipAutopilot:
		return ScenarioAutopilot, nil
	case ChipNoNegative, ChipFinalFix:
		return ScenarioNoNegativeFinalFix, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownChip, string(c))
	}
}

// BoostMode selecciona la codificación del DRS boost.
type BoostMode int

const (
	// BoostExplicitSingle: una variable binaria de boost por piloto, exactamente una activa.
	BoostExplicitSingle BoostMode = iota + 1
	// BoostMaxOfSelected: el boost va al piloto seleccionado con más puntos (Autopilot).
	BoostMaxOfSelected
)

func (m BoostMode) String() string {
	switch m {
	case BoostExplicitSingle:
		return "explicit-single"
	case BoostMaxOfSelected:
		return "max-of-selected"
	default:
		return "unknown"
	}
}

// NoTransferCeiling indica que no hay límite de transferencias.
const NoTransferCeiling = -1

// ScenarioRequest es lo que pide el usuario.
// CostCap <= 0 significa "derivar del equipo previo" (lo resuelve el optimizador).
type ScenarioRequest struct {
	Chip    Chip
	CostCap float64
}

// ScenarioParameters es el conjunto normalizado de parámetros que consume el formulador.
// El formulador no conoce los escenarios, solo estos parámetros.
type ScenarioParameters struct {
	Kind                  ScenarioKind
	Chip                  Chip
	CostCap               float64 // math.Inf(1) = sin límite
	TransferCeiling       int     // NoTransferCeiling = sin límite
	BoostMultiplier       float64
	BoostMode             BoostMode
	TransferPenaltyExempt bool
	PersistsState         bool // false para Limitless: el equipo vuelve al previo
}

// HasCostCap devuelve true si la restricción de presupuesto aplica.
func (p ScenarioParameters) HasCostCap() bool { return !math.IsInf(p.CostCap, 1) }

// HasTransferCeiling devuelve true si el exceso de transferencias se penaliza.
func (p ScenarioParameters) HasTransferCeiling() bool {
	return p.TransferCeiling != NoTransferCeiling && !p.TransferPenaltyExempt
}

// Resolve mapea un pedido y el estado previo a parámetros concretos.
// Función pura: solo falla por elegibilidad del chip.
func Resolve(req ScenarioRequest, prior SeasonState) (ScenarioParameters, error) {
	kind, err := KindOf(req.Chip)
	if err != nil {
		return ScenarioParameters{}, err
	}

	if req.Chip != ChipNone {
		if req.Chip.requiresPriorTeam() && prior.IsFirstRace() {
			return ScenarioParameters{}, NewScenarioError(kind, req.Chip, ErrChipNotYetUnlocked,
				"requires a team saved from a previous race")
		}
		if prior.HasUsed(req.Chip) {
			return ScenarioParameters{}, NewScenarioError(kind, req.Chip, ErrChipAlreadyUsed, "")
		}
	}

	ceiling := prior.AvailableTransfers
	if prior.IsFirstRace() || ceiling < 0 {
		ceiling = NoTransferCeiling
	}

	p := ScenarioParameters{
		Kind:            kind,
		Chip:            req.Chip,
		CostCap:         req.CostCap,
		TransferCeiling: ceiling,
		BoostMultiplier: 2,
		BoostMode:       BoostExplicitSingle,
		PersistsState:   true,
	}

	switch kind {
	case ScenarioWildcard:
		p.TransferCeiling = NoTransferCeiling
		p.TransferPenaltyExempt = true
	case ScenarioLimitless:
		p.CostCap = math.Inf(1)
		p.TransferCeiling = NoTransferCeiling
		p.TransferPenaltyExempt = true
		p.PersistsState = false
	case ScenarioExtraDRS:
		p.BoostMultiplier = 3
	case ScenarioAutopilot:
		p.BoostMode = BoostMaxOfSelected
	}

	return p, nil
}
