package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/pkg/metrics"
)

const simulatedMatchesTable = "simulated_matches"

var simulatedMatchColumns = []string{
	"run_id", "league_name", "simulated_at", "world", "home_team", "away_team",
	"home_team_goals", "away_team_goals", "match_date",
}

// Connect opens and pings a Postgres pool.
func Connect(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

// Migrate creates the simulated matches table.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS simulated_matches (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL,
			league_name VARCHAR(255) NOT NULL,
			simulated_at TIMESTAMPTZ NOT NULL,
			world INTEGER NOT NULL,
			home_team VARCHAR(255) NOT NULL,
			away_team VARCHAR(255) NOT NULL,
			home_team_goals SMALLINT NOT NULL,
			away_team_goals SMALLINT NOT NULL,
			match_date TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_simulated_matches_run ON simulated_matches(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_simulated_matches_league ON simulated_matches(league_name, simulated_at)`,
	}
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// PostgresSink persists simulated matches with COPY.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink wraps db.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Save writes one batch of simulated matches, indexed [fixture][world], in a
// single transaction.
func (s *PostgresSink) Save(ctx context.Context, _ string, matches [][]model.SimulatedMatch) (err error) {
	defer func() {
		if err != nil {
			metrics.RecordPersistenceError()
		}
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(simulatedMatchesTable, simulatedMatchColumns...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}

	rows := 0
	for _, fixture := range matches {
		for world, m := range fixture {
			if _, err = stmt.ExecContext(ctx,
				m.RunID, m.League, m.SimulatedAt, world, m.Home, m.Away,
				m.HomeGoals, m.AwayGoals, m.MatchDate,
			); err != nil {
				_ = stmt.Close()
				return fmt.Errorf("copy row: %w", err)
			}
			rows++
		}
	}
	if _, err = stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err = stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	metrics.RecordMatchesPersisted(rows)
	return nil
}

// CountRun returns the number of stored matches of a forecast run.
func (s *PostgresSink) CountRun(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM simulated_matches WHERE run_id = $1`, runID).Scan(&n)
	return n, err
}
