package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
)

// RecordSolve guarda un resultado en el histórico. Un run_id repetido
// actualiza solo el flag committed (guardar después de registrar).
func (s *SQLiteStorage) RecordSolve(ctx context.Context, res domain.OptimizationResult, committed bool) error {
	if res.RunID == "" {
		return fmt.Errorf("storage.RecordSolve: empty run id")
	}

	var costCap *float64
	if res.Params.HasCostCap() {
		v := res.Params.CostCap
		costCap = &v
	}
	flag := 0
	if committed {
		flag = 1
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO solves
			(run_id, solved_at, scenario, chip, cost_cap, drivers, constructors,
			 boosted_driver, transfers_used, penalty, total_xpts, team_cost, committed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			committed = MAX(committed, excluded.committed)
	`,
		res.RunID,
		time.Now().UTC(),
		res.Params.Kind.String(),
		string(res.Params.Chip),
		costCap,
		strings.Join(res.Drivers, ","),
		strings.Join(res.Constructors, ","),
		res.BoostedDriver,
		res.TransfersUsed,
		res.Penalty,
		res.TotalExpectedPoints,
		res.TeamCost,
		flag,
	); err != nil {
		return fmt.Errorf("storage.RecordSolve: insert %s: %w", res.RunID, err)
	}
	return nil
}

// History devuelve los últimos limit solves, más recientes primero.
func (s *SQLiteStorage) History(ctx context.Context, limit int) ([]domain.SolveRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, solved_at, scenario, chip, cost_cap, drivers, constructors,
		       boosted_driver, transfers_used, penalty, total_xpts, team_cost, committed
		FROM solves
		ORDER BY solved_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.History: query: %w", err)
	}
	defer rows.Close()

	var out []domain.SolveRecord
	for rows.Next() {
		var (
			r             domain.SolveRecord
			costCap       sql.NullFloat64
			drivers, cons string
			solvedAt      string
			committed     int
		)
		if err := rows.Scan(
			&r.RunID,
			&solvedAt,
			&r.Scenario,
			&r.Chip,
			&costCap,
			&drivers,
			&cons,
			&r.BoostedDriver,
			&r.TransfersUsed,
			&r.Penalty,
			&r.TotalXPts,
			&r.TeamCost,
			&committed,
		); err != nil {
			return nil, fmt.Errorf("storage.History: scan row: %w", err)
		}
		r.SolvedAt = parseTime(solvedAt)
		if costCap.Valid {
			v := costCap.Float64
			r.CostCap = &v
		}
		r.Drivers = splitList(drivers)
		r.Constructors = splitList(cons)
		r.Committed = committed == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// parseTime acepta los formatos con que el driver devuelve DATETIME.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
