package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidate_PersistsNewTeam(t *testing.T) {
	prior := savedState(2)
	res := OptimizationResult{
		Params:                 ScenarioParameters{Kind: ScenarioExtraDRS, Chip: ChipExtraDRS, PersistsState: true},
		SelectedEntities:       []string{"A", "B", "C", "D", "F", "X", "Y"},
		NextAvailableTransfers: 3,
		RemainingBudget:        0.5,
	}.WithPrior(prior)

	next := res.Candidate()
	assert.Equal(t, []string{"A", "B", "C", "D", "F", "X", "Y"}, next.SelectedEntities)
	assert.Equal(t, 3, next.AvailableTransfers)
	assert.Equal(t, 0.5, next.RemainingBudget)
	assert.Equal(t, []Chip{ChipExtraDRS}, next.UsedChips)

	// El estado previo no se toca.
	assert.Equal(t, savedState(2), prior)
	assert.Equal(t, savedState(2), res.Prior())
}

func TestCandidate_LimitlessRestoresPrior(t *testing.T) {
	prior := savedState(2, ChipWildcard)
	res := OptimizationResult{
		Params:                 ScenarioParameters{Kind: ScenarioLimitless, Chip: ChipLimitless},
		SelectedEntities:       []string{"P", "Q", "R", "S", "T", "U", "V"},
		NextAvailableTransfers: 2,
		RemainingBudget:        -80,
		RestorePriorState:      true,
	}.WithPrior(prior)

	next := res.Candidate()
	assert.Equal(t, prior.SelectedEntities, next.SelectedEntities)
	assert.Equal(t, 2, next.AvailableTransfers)
	assert.Equal(t, 1.5, next.RemainingBudget)
	assert.Equal(t, []Chip{ChipWildcard, ChipLimitless}, next.UsedChips)
}

func TestCandidate_NoChipAddsNothing(t *testing.T) {
	res := OptimizationResult{
		Params:           ScenarioParameters{Kind: ScenarioNormal, PersistsState: true},
		SelectedEntities: []string{"A"},
	}.WithPrior(NewSeasonState())

	assert.Empty(t, res.Candidate().UsedChips)
}

func TestTransfer_String(t *testing.T) {
	assert.Equal(t, "HAM > ALO", Transfer{Role: RoleDriver, Out: "HAM", In: "ALO"}.String())
}
