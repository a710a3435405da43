// Package store declares interfaces for persisting analysis runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound signals that the requested record does not exist.
var ErrNotFound = errors.New("analysis record not found")

// RunStatus mirrors the analysis_runs status column.
type RunStatus string

// Run statuses persisted in analysis_runs.status.
const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// Run models the analysis_runs table for API responses.
type Run struct {
	// ID is the analysis run identifier shared with progress events.
	ID uuid.UUID
	// URL is the analyzed page address.
	URL string
	// StartedAt captures when the run was first marked running.
	StartedAt time.Time
	// FinishedAt is nil until the run is marked success/error.
	FinishedAt *time.Time
	// Status is running/success/error.
	Status RunStatus
	// OverallScore is nil until the run finishes successfully.
	OverallScore *int
	// ErrorMessage optionally stores the final failure reason.
	ErrorMessage *string
}

// FactorRow is one persisted factor result.
type FactorRow struct {
	RunID            uuid.UUID
	FactorID         string
	FactorName       string
	Pillar           string
	Phase            string
	Score            int
	Confidence       int
	Weight           float64
	Evidence         []string
	Recommendations  []string
	ProcessingTimeMs int64
}

// RunRepository persists analysis runs and their factor results.
type RunRepository interface {
	// UpsertRunStart inserts (or idempotently updates) the run start.
	UpsertRunStart(ctx context.Context, runID uuid.UUID, url string, startedAt time.Time) error
	// CompleteRun marks the run finished with its status, score, and error.
	CompleteRun(
		ctx context.Context,
		runID uuid.UUID,
		finishedAt time.Time,
		status RunStatus,
		overallScore *int,
		errMsg *string,
	) error
	// RecordFactor stores one factor result row.
	RecordFactor(ctx context.Context, row FactorRow) error

	// GetRun loads a single run or returns ErrNotFound.
	GetRun(ctx context.Context, runID uuid.UUID) (Run, error)
	// ListRuns returns runs filtered by optional status plus limit/offset.
	ListRuns(ctx context.Context, status *RunStatus, limit, offset int) ([]Run, error)
	// ListRunFactors returns the persisted factor rows for one run.
	ListRunFactors(ctx context.Context, runID uuid.UUID) ([]FactorRow, error)
}
