package storage

// sqlite.go: estado de temporada de un único equipo.
//
// Estrategia:
//   - `season`: una sola fila (id = 1) con transferencias y presupuesto.
//   - `season_entities`: el equipo guardado, en el orden en que se guardó.
//   - `used_chips`: un chip por fila; la PK impide registrar dos veces el mismo.
//   - `solves`: histórico de resultados (ver history.go), con prune al arrancar.
//
// Ausencia de fila en `season` = primera carrera.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS season (
    id                  INTEGER PRIMARY KEY CHECK (id = 1),
    available_transfers INTEGER  NOT NULL,
    remaining_budget    REAL     NOT NULL DEFAULT 0,
    updated_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS season_entities (
    position INTEGER PRIMARY KEY,
    name     TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS used_chips (
    chip    TEXT PRIMARY KEY,
    used_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS solves (
    run_id         TEXT PRIMARY KEY,
    solved_at      DATETIME NOT NULL,
    scenario       TEXT     NOT NULL,
    chip           TEXT     NOT NULL DEFAULT '',
    cost_cap       REAL,
    drivers        TEXT     NOT NULL,
    constructors   TEXT     NOT NULL,
    boosted_driver TEXT     NOT NULL,
    transfers_used INTEGER  NOT NULL DEFAULT 0,
    penalty        REAL     NOT NULL DEFAULT 0,
    total_xpts     REAL     NOT NULL DEFAULT 0,
    team_cost      REAL     NOT NULL DEFAULT 0,
    committed      INTEGER  NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_solves_at ON solves(solved_at DESC);
`

// retentionSolves: el histórico de una temporada sobra pasado un año.
const retentionSolves = 365 * 24 * time.Hour

// SQLiteStorage implementa ports.SeasonStore usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
	mu sync.Mutex // serializa read-modify-write del estado
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y limpia el histórico antiguo.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// LoadSeason devuelve el estado guardado; found=false si no hay ninguno.
func (s *SQLiteStorage) LoadSeason(ctx context.Context) (domain.SeasonState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := domain.NewSeasonState()
	err := s.db.QueryRowContext(ctx,
		`SELECT available_transfers, remaining_budget FROM season WHERE id = 1`,
	).Scan(&state.AvailableTransfers, &state.RemainingBudget)
	found := true
	if errors.Is(err, sql.ErrNoRows) {
		found = false
	} else if err != nil {
		return domain.SeasonState{}, false, fmt.Errorf("storage.LoadSeason: query season: %w", err)
	}

	if found {
		names, err := s.queryStrings(ctx, `SELECT name FROM season_entities ORDER BY position`)
		if err != nil {
			return domain.SeasonState{}, false, fmt.Errorf("storage.LoadSeason: query entities: %w", err)
		}
		state.SelectedEntities = names
	}

	// Los chips se guardan aunque no haya equipo: la fila puede no existir.
	chips, err := s.queryStrings(ctx, `SELECT chip FROM used_chips ORDER BY used_at, chip`)
	if err != nil {
		return domain.SeasonState{}, false, fmt.Errorf("storage.LoadSeason: query chips: %w", err)
	}
	for _, c := range chips {
		state.UsedChips = append(state.UsedChips, domain.Chip(c))
	}

	return state, found, nil
}

// SaveSeason reemplaza el estado guardado en una sola transacción.
// Los chips se añaden: un chip registrado nunca se borra.
func (s *SQLiteStorage) SaveSeason(ctx context.Context, state domain.SeasonState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSeason: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO season (id, available_transfers, remaining_budget, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			available_transfers = excluded.available_transfers,
			remaining_budget    = excluded.remaining_budget,
			updated_at          = excluded.updated_at
	`, state.AvailableTransfers, state.RemainingBudget, now); err != nil {
		return fmt.Errorf("storage.SaveSeason: upsert season: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM season_entities`); err != nil {
		return fmt.Errorf("storage.SaveSeason: clear entities: %w", err)
	}
	for i, name := range state.SelectedEntities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO season_entities (position, name) VALUES (?, ?)`, i, name,
		); err != nil {
			return fmt.Errorf("storage.SaveSeason: insert entity %q: %w", name, err)
		}
	}

	for _, c := range state.UsedChips {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO used_chips (chip, used_at) VALUES (?, ?) ON CONFLICT(chip) DO NOTHING`,
			string(c), now,
		); err != nil {
			return fmt.Errorf("storage.SaveSeason: insert chip %s: %w", c, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSeason: commit: %w", err)
	}
	return nil
}

// Reset borra el estado de temporada (nueva temporada). El histórico se conserva.
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []string{
		`DELETE FROM season`,
		`DELETE FROM season_entities`,
		`DELETE FROM used_chips`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("storage.Reset: %w", err)
		}
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func (s *SQLiteStorage) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// pruneOld elimina el histórico antiguo para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionSolves)
	s.db.ExecContext(ctx, `DELETE FROM solves WHERE solved_at < ?`, cutoff)
}
