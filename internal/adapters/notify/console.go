package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Reporter.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un reporter que escribe a stdout.
// Con table=true imprime además la tabla completa del equipo.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Report imprime la recomendación: transferencias, equipo y totales.
func (c *Console) Report(_ context.Context, res domain.OptimizationResult) error {
	fmt.Fprintf(c.out, "\n=== %s ===\n", scenarioLabel(res.Params))

	c.printTransfers(res)

	if c.table {
		c.printTeamTable(res)
	} else {
		fmt.Fprintf(c.out, "\nDrivers:      %s\n", strings.Join(res.Drivers, ", "))
		fmt.Fprintf(c.out, "Constructors: %s\n", strings.Join(res.Constructors, ", "))
	}

	c.printTotals(res)

	if res.RestorePriorState {
		fmt.Fprintln(c.out, "\nLimitless: this team is for one race only. Your previous team will be restored for the next race.")
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *Console) printTransfers(res domain.OptimizationResult) {
	prior := res.Prior()
	if prior.IsFirstRace() {
		fmt.Fprintln(c.out, "\nFirst race: no previous team, pick the full roster.")
		return
	}

	fmt.Fprintln(c.out, "\nTransfers to Make:")
	fmt.Fprintln(c.out, "---------------------")
	if len(res.Transfers) == 0 {
		fmt.Fprintln(c.out, "  (none, keep your team)")
		return
	}
	for _, t := range res.Transfers {
		fmt.Fprintf(c.out, "  %s\n", t)
	}
}

func (c *Console) printTeamTable(res domain.OptimizationResult) {
	fmt.Fprintln(c.out)
	table := tablewriter.NewWriter(c.out)
	table.Header("Role", "Name", "Price", "xPts", "Price Δ", "")

	prior := res.Prior()
	for _, e := range res.Entities {
		mark := ""
		switch {
		case e.Name == res.BoostedDriver:
			mark = boostMark(res.Params)
		case !prior.IsFirstRace() && !prior.Holds(e.Name):
			mark = "NEW"
		}
		table.Append(
			e.Role.String(),
			e.Name,
			fmt.Sprintf("%.1f", e.Price),
			fmt.Sprintf("%.2f", e.ExpectedPoints),
			fmt.Sprintf("%+.2f", e.PriceChange),
			mark,
		)
	}
	table.Render()
}

func (c *Console) printTotals(res domain.OptimizationResult) {
	fmt.Fprintf(c.out, "\nDRS Boost:              %s (+%.2f)\n", res.BoostedDriver, res.BoostBonus)
	fmt.Fprintf(c.out, "Total Expected Points:  %.2f\n", res.TotalExpectedPoints)
	if res.Penalty > 0 {
		fmt.Fprintf(c.out, "Transfer Penalty:       -%.0f (%d over the limit)\n", res.Penalty, res.PenaltyTransfers)
	}
	fmt.Fprintf(c.out, "Transfers Used:         %d\n", res.TransfersUsed)
	if res.Params.PersistsState {
		fmt.Fprintf(c.out, "Next Race Transfers:    %d\n", res.NextAvailableTransfers)
	}
	if res.Params.HasCostCap() {
		fmt.Fprintf(c.out, "Cost Cap:               %.1f\n", res.CostCap)
	} else {
		fmt.Fprintln(c.out, "Cost Cap:               none")
	}
	fmt.Fprintf(c.out, "Team Cost:              %.1f\n", res.TeamCost)
	fmt.Fprintf(c.out, "Remaining Budget:       %.1f\n", res.RemainingBudget)
	fmt.Fprintf(c.out, "Projected Price Change: %+.2f\n", res.PriceChange)
}

// ComparisonRow es una fila del resumen de PrintComparison.
type ComparisonRow struct {
	Chip   domain.Chip
	Result domain.OptimizationResult
	Err    error
}

// PrintComparison imprime un escenario por fila. Los que fallaron muestran el motivo.
func (c *Console) PrintComparison(rows []ComparisonRow) {
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "\n  No scenarios to compare.")
		return
	}

	fmt.Fprintln(c.out)
	table := tablewriter.NewWriter(c.out)
	table.Header("Chip", "Scenario", "xPts", "Penalty", "Transfers", "Cost", "Boost")

	for _, r := range rows {
		if r.Err != nil {
			table.Append(r.Chip.String(), "-", "-", "-", "-", "-", truncate(r.Err.Error(), 40))
			continue
		}
		res := r.Result
		table.Append(
			r.Chip.String(),
			res.Params.Kind.String(),
			fmt.Sprintf("%.2f", res.TotalExpectedPoints),
			fmt.Sprintf("%.0f", res.Penalty),
			fmt.Sprintf("%d", res.TransfersUsed),
			fmt.Sprintf("%.1f", res.TeamCost),
			res.BoostedDriver,
		)
	}
	table.Render()
	fmt.Fprintln(c.out)
}

// PrintHistory imprime los últimos solves, más recientes primero.
func (c *Console) PrintHistory(records []domain.SolveRecord) {
	if len(records) == 0 {
		fmt.Fprintln(c.out, "\n  No solves recorded yet.")
		return
	}

	fmt.Fprintln(c.out)
	table := tablewriter.NewWriter(c.out)
	table.Header("When", "Scenario", "xPts", "Transfers", "Cost", "Boost", "Saved")

	for _, r := range records {
		saved := ""
		if r.Committed {
			saved = "yes"
		}
		table.Append(
			r.SolvedAt.Local().Format(time.DateTime),
			r.Scenario,
			fmt.Sprintf("%.2f", r.TotalXPts),
			fmt.Sprintf("%d", r.TransfersUsed),
			fmt.Sprintf("%.1f", r.TeamCost),
			r.BoostedDriver,
			saved,
		)
	}
	table.Render()
	fmt.Fprintln(c.out)
}

// --- helpers ---

func scenarioLabel(p domain.ScenarioParameters) string {
	if p.Chip == domain.ChipNone {
		return p.Kind.String()
	}
	return fmt.Sprintf("%s (chip: %s)", p.Kind.String(), p.Chip)
}

func boostMark(p domain.ScenarioParameters) string {
	if p.BoostMode == domain.BoostMaxOfSelected {
		return "DRS (auto)"
	}
	return fmt.Sprintf("DRS %.0fx", p.BoostMultiplier)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
