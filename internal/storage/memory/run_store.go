// Package memory provides in-memory persistence for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pagefactor/pagefactor/internal/store"
)

// RunStore implements store.RunRepository with process-local maps.
type RunStore struct {
	mu      sync.RWMutex
	runs    map[uuid.UUID]store.Run
	factors map[uuid.UUID][]store.FactorRow
}

// NewRunStore constructs an empty RunStore.
func NewRunStore() *RunStore {
	return &RunStore{
		runs:    make(map[uuid.UUID]store.Run),
		factors: make(map[uuid.UUID][]store.FactorRow),
	}
}

// UpsertRunStart records the run as running.
func (s *RunStore) UpsertRunStart(_ context.Context, runID uuid.UUID, url string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		run = store.Run{ID: runID, URL: url, StartedAt: startedAt}
	}
	run.Status = store.RunRunning
	s.runs[runID] = run
	return nil
}

// CompleteRun marks the run finished.
func (s *RunStore) CompleteRun(
	_ context.Context,
	runID uuid.UUID,
	finishedAt time.Time,
	status store.RunStatus,
	overallScore *int,
	errMsg *string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		run = store.Run{ID: runID, StartedAt: finishedAt}
	}
	run.FinishedAt = &finishedAt
	run.Status = status
	run.OverallScore = overallScore
	run.ErrorMessage = errMsg
	s.runs[runID] = run
	return nil
}

// RecordFactor appends (or replaces) one factor row for the run.
func (s *RunStore) RecordFactor(_ context.Context, row store.FactorRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.factors[row.RunID]
	for i, existing := range rows {
		if existing.FactorID == row.FactorID {
			rows[i] = row
			s.factors[row.RunID] = rows
			return nil
		}
	}
	s.factors[row.RunID] = append(rows, row)
	return nil
}

// GetRun loads one run or returns store.ErrNotFound.
func (s *RunStore) GetRun(_ context.Context, runID uuid.UUID) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return store.Run{}, store.ErrNotFound
	}
	return run, nil
}

// ListRuns returns runs newest first with optional status filtering.
func (s *RunStore) ListRuns(_ context.Context, status *store.RunStatus, limit, offset int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var runs []store.Run
	for _, run := range s.runs {
		if status != nil && run.Status != *status {
			continue
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if offset >= len(runs) {
		return nil, nil
	}
	runs = runs[offset:]
	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

// ListRunFactors returns the factor rows recorded for one run.
func (s *RunStore) ListRunFactors(_ context.Context, runID uuid.UUID) ([]store.FactorRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.factors[runID]
	out := make([]store.FactorRow, len(rows))
	copy(out, rows)
	return out, nil
}
