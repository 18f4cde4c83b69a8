package notify_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/f1optimiser/internal/adapters/notify"
	"github.com/alejandrodnm/f1optimiser/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResult(prior domain.SeasonState, params domain.ScenarioParameters) domain.OptimizationResult {
	res := domain.OptimizationResult{
		RunID:        "run-1",
		Params:       params,
		Drivers:      []string{"VER", "NOR", "LEC", "PIA", "HAM"},
		Constructors: []string{"McLaren", "Ferrari"},
		Entities: []domain.Entity{
			{Name: "VER", Role: domain.RoleDriver, Price: 30, ExpectedPoints: 25, PriceChange: 0.2},
			{Name: "NOR", Role: domain.RoleDriver, Price: 28, ExpectedPoints: 24},
			{Name: "LEC", Role: domain.RoleDriver, Price: 25, ExpectedPoints: 20},
			{Name: "PIA", Role: domain.RoleDriver, Price: 22, ExpectedPoints: 19},
			{Name: "HAM", Role: domain.RoleDriver, Price: 20, ExpectedPoints: 15, PriceChange: -0.1},
			{Name: "McLaren", Role: domain.RoleConstructor, Price: 30, ExpectedPoints: 40},
			{Name: "Ferrari", Role: domain.RoleConstructor, Price: 28, ExpectedPoints: 35},
		},
		BoostedDriver:          "VER",
		BoostBonus:             25,
		TransfersUsed:          1,
		Transfers:              []domain.Transfer{{Role: domain.RoleDriver, Out: "SAI", In: "HAM"}},
		BasePoints:             178,
		TotalExpectedPoints:    203,
		TeamCost:               183,
		CostCap:                params.CostCap,
		RemainingBudget:        2,
		PriceChange:            0.1,
		NextAvailableTransfers: 3,
		RestorePriorState:      !params.PersistsState,
	}
	return res.WithPrior(prior)
}

func normalParams() domain.ScenarioParameters {
	return domain.ScenarioParameters{
		Kind:            domain.ScenarioNormal,
		CostCap:         185,
		TransferCeiling: 2,
		BoostMultiplier: 2,
		BoostMode:       domain.BoostExplicitSingle,
		PersistsState:   true,
	}
}

func priorTeam() domain.SeasonState {
	return domain.SeasonState{
		SelectedEntities:   []string{"VER", "NOR", "LEC", "PIA", "SAI", "McLaren", "Ferrari"},
		AvailableTransfers: 2,
	}
}

func TestConsole_Report_Compact(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	err := c.Report(context.Background(), makeResult(priorTeam(), normalParams()))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Transfers to Make:")
	assert.Contains(t, out, "SAI > HAM")
	assert.Contains(t, out, "VER, NOR, LEC, PIA, HAM")
	assert.Contains(t, out, "McLaren, Ferrari")
	assert.Contains(t, out, "203.00")
	assert.Contains(t, out, "Next Race Transfers:    3")
	assert.NotContains(t, out, "Limitless")
}

func TestConsole_Report_Table(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	err := c.Report(context.Background(), makeResult(priorTeam(), normalParams()))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "DRS 2x")
	assert.Contains(t, out, "NEW")
	assert.Contains(t, out, "McLaren")
	assert.Contains(t, out, "+0.20")
}

func TestConsole_Report_FirstRace(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	res := makeResult(domain.NewSeasonState(), normalParams())
	res.Transfers = nil
	require.NoError(t, c.Report(context.Background(), res))

	out := buf.String()
	assert.Contains(t, out, "First race")
	assert.NotContains(t, out, "Transfers to Make:")
}

func TestConsole_Report_Limitless(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	params := normalParams()
	params.Kind = domain.ScenarioLimitless
	params.Chip = domain.ChipLimitless
	params.CostCap = math.Inf(1)
	params.PersistsState = false

	require.NoError(t, c.Report(context.Background(), makeResult(priorTeam(), params)))

	out := buf.String()
	assert.Contains(t, out, "chip: limitless")
	assert.Contains(t, out, "Cost Cap:               none")
	assert.Contains(t, out, "previous team will be restored")
	assert.NotContains(t, out, "Next Race Transfers")
}

func TestConsole_PrintComparison(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	c.PrintComparison([]notify.ComparisonRow{
		{Chip: domain.ChipNone, Result: makeResult(priorTeam(), normalParams())},
		{Chip: domain.ChipWildcard, Err: errors.New("chip already used this season")},
	})

	out := buf.String()
	assert.Contains(t, out, "Normal")
	assert.Contains(t, out, "203.00")
	assert.Contains(t, out, "wildcard")
	assert.Contains(t, out, "chip already used")
}

func TestConsole_PrintComparison_Empty(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PrintComparison(nil)
	assert.Contains(t, buf.String(), "No scenarios to compare")
}

func TestConsole_PrintHistory(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	c.PrintHistory([]domain.SolveRecord{
		{RunID: "a", SolvedAt: time.Now(), Scenario: "Autopilot", TotalXPts: 150.5, BoostedDriver: "VER", Committed: true},
		{RunID: "b", SolvedAt: time.Now(), Scenario: "Normal", TotalXPts: 140},
	})

	out := buf.String()
	assert.Contains(t, out, "Autopilot")
	assert.Contains(t, out, "150.50")
	assert.Contains(t, out, "yes")
}

func TestConsole_PrintHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PrintHistory(nil)
	assert.Contains(t, buf.String(), "No solves recorded yet")
}
