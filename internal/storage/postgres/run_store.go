// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagefactor/pagefactor/internal/store"
)

// Querier is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RunStore implements store.RunRepository using Postgres.
type RunStore struct {
	db Querier
}

// NewRunStore connects a pool for the given DSN and wraps it in a RunStore.
func NewRunStore(ctx context.Context, dsn string) (*RunStore, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("create connection pool: %w", err)
	}
	return &RunStore{db: pool}, pool.Close, nil
}

// NewRunStoreWithQuerier wraps an existing querier (used by tests).
func NewRunStoreWithQuerier(db Querier) *RunStore {
	return &RunStore{db: db}
}

// UpsertRunStart inserts or idempotently updates a run's start state.
func (s *RunStore) UpsertRunStart(ctx context.Context, runID uuid.UUID, url string, startedAt time.Time) error {
	query := `
		INSERT INTO analysis_runs (id, url, started_at, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status
		WHERE analysis_runs.status <> EXCLUDED.status;
	`
	if _, err := s.db.Exec(ctx, query, runID, url, startedAt, store.RunRunning); err != nil {
		return fmt.Errorf("upsert run start: %w", err)
	}
	return nil
}

// CompleteRun marks a run finished with a status, score, and optional error.
func (s *RunStore) CompleteRun(
	ctx context.Context,
	runID uuid.UUID,
	finishedAt time.Time,
	status store.RunStatus,
	overallScore *int,
	errMsg *string,
) error {
	query := `
		UPDATE analysis_runs
		SET finished_at = $1, status = $2, overall_score = $3, error_message = $4
		WHERE id = $5;
	`
	if _, err := s.db.Exec(ctx, query, finishedAt, status, overallScore, errMsg, runID); err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// RecordFactor stores one factor result row.
func (s *RunStore) RecordFactor(ctx context.Context, row store.FactorRow) error {
	query := `
		INSERT INTO factor_results
			(run_id, factor_id, factor_name, pillar, phase, score, confidence,
			 weight, evidence, recommendations, processing_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (run_id, factor_id) DO UPDATE
		SET score = EXCLUDED.score,
			confidence = EXCLUDED.confidence,
			evidence = EXCLUDED.evidence,
			recommendations = EXCLUDED.recommendations,
			processing_time_ms = EXCLUDED.processing_time_ms;
	`
	_, err := s.db.Exec(ctx, query,
		row.RunID,
		row.FactorID,
		row.FactorName,
		row.Pillar,
		row.Phase,
		row.Score,
		row.Confidence,
		row.Weight,
		row.Evidence,
		row.Recommendations,
		row.ProcessingTimeMs,
	)
	if err != nil {
		return fmt.Errorf("record factor: %w", err)
	}
	return nil
}

// GetRun retrieves a single run by its ID.
func (s *RunStore) GetRun(ctx context.Context, runID uuid.UUID) (store.Run, error) {
	query := `
		SELECT id, url, started_at, finished_at, status, overall_score, error_message
		FROM analysis_runs
		WHERE id = $1;
	`
	var run store.Run
	err := s.db.QueryRow(ctx, query, runID).Scan(
		&run.ID,
		&run.URL,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Status,
		&run.OverallScore,
		&run.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Run{}, store.ErrNotFound
		}
		return store.Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves runs, newest first, with optional status filtering.
func (s *RunStore) ListRuns(
	ctx context.Context,
	status *store.RunStatus,
	limit, offset int,
) ([]store.Run, error) {
	query := `
		SELECT id, url, started_at, finished_at, status, overall_score, error_message
		FROM analysis_runs
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := s.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		if err := rows.Scan(
			&run.ID,
			&run.URL,
			&run.StartedAt,
			&run.FinishedAt,
			&run.Status,
			&run.OverallScore,
			&run.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRunFactors retrieves persisted factor rows for one run, ordered by
// factor ID for deterministic output.
func (s *RunStore) ListRunFactors(ctx context.Context, runID uuid.UUID) ([]store.FactorRow, error) {
	query := `
		SELECT run_id, factor_id, factor_name, pillar, phase, score, confidence,
			weight, evidence, recommendations, processing_time_ms
		FROM factor_results
		WHERE run_id = $1
		ORDER BY factor_id;
	`
	rows, err := s.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list run factors: %w", err)
	}
	defer rows.Close()

	var out []store.FactorRow
	for rows.Next() {
		var row store.FactorRow
		if err := rows.Scan(
			&row.RunID,
			&row.FactorID,
			&row.FactorName,
			&row.Pillar,
			&row.Phase,
			&row.Score,
			&row.Confidence,
			&row.Weight,
			&row.Evidence,
			&row.Recommendations,
			&row.ProcessingTimeMs,
		); err != nil {
			return nil, fmt.Errorf("scan factor row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
