package sinks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pagefactor/pagefactor/internal/progress"
	"github.com/pagefactor/pagefactor/internal/store"
)

// TestStoreSinkRunLifecycle ensures lifecycle events reach the repository
// while factor events are left alone.
func TestStoreSinkRunLifecycle(t *testing.T) {
	t.Parallel()

	repo := &fakeRunRepo{}
	sink := NewStoreSink(repo, nil)
	runUUID := uuid.New()
	runID := progress.UUIDToBytes(runUUID)
	now := time.Now()

	batch := []progress.Event{
		{RunID: runID, Stage: progress.StageRunStart, URL: "https://example.com", TS: now, Percent: 10},
		{RunID: runID, Stage: progress.StageFactorDone, FactorID: "M.1.1", Score: 100, TS: now, Percent: 18},
		{RunID: runID, Stage: progress.StageRunDone, OverallScore: 72, TS: now.Add(time.Second), Percent: 100},
	}

	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Len(t, repo.starts, 1)
	require.Equal(t, runUUID, repo.starts[0].runID)
	require.Equal(t, "https://example.com", repo.starts[0].url)

	require.Len(t, repo.completes, 1)
	complete := repo.completes[0]
	require.Equal(t, store.RunSuccess, complete.status)
	require.NotNil(t, complete.overallScore)
	require.Equal(t, 72, *complete.overallScore)
	require.Nil(t, complete.errMsg)
}

func TestStoreSinkRunError(t *testing.T) {
	t.Parallel()

	repo := &fakeRunRepo{}
	sink := NewStoreSink(repo, nil)
	runID := progress.UUIDToBytes(uuid.New())

	evt := progress.Event{
		RunID:   runID,
		Stage:   progress.StageRunError,
		TS:      time.Now(),
		Percent: 100,
		Note:    "page fetch failed",
	}
	require.NoError(t, sink.Consume(context.Background(), []progress.Event{evt}))

	require.Len(t, repo.completes, 1)
	complete := repo.completes[0]
	require.Equal(t, store.RunError, complete.status)
	require.Nil(t, complete.overallScore)
	require.NotNil(t, complete.errMsg)
	require.Equal(t, "page fetch failed", *complete.errMsg)
}

// TestStoreSinkHandlesErrors surfaces repository failures back to the hub.
func TestStoreSinkHandlesErrors(t *testing.T) {
	t.Parallel()

	repo := &fakeRunRepo{fail: true}
	sink := NewStoreSink(repo, nil)
	runID := progress.UUIDToBytes(uuid.New())
	err := sink.Consume(context.Background(), []progress.Event{
		{RunID: runID, Stage: progress.StageRunStart, TS: time.Now()},
	})
	require.Error(t, err)
}

type startCall struct {
	runID uuid.UUID
	url   string
}

type completeCall struct {
	runID        uuid.UUID
	status       store.RunStatus
	overallScore *int
	errMsg       *string
}

type fakeRunRepo struct {
	fail      bool
	starts    []startCall
	completes []completeCall
}

func (f *fakeRunRepo) UpsertRunStart(_ context.Context, runID uuid.UUID, url string, _ time.Time) error {
	if f.fail {
		return errors.New("start failed")
	}
	f.starts = append(f.starts, startCall{runID: runID, url: url})
	return nil
}

func (f *fakeRunRepo) CompleteRun(
	_ context.Context,
	runID uuid.UUID,
	_ time.Time,
	status store.RunStatus,
	overallScore *int,
	errMsg *string,
) error {
	if f.fail {
		return errors.New("complete failed")
	}
	f.completes = append(f.completes, completeCall{
		runID:        runID,
		status:       status,
		overallScore: overallScore,
		errMsg:       errMsg,
	})
	return nil
}

func (f *fakeRunRepo) RecordFactor(context.Context, store.FactorRow) error {
	return nil
}

func (f *fakeRunRepo) GetRun(context.Context, uuid.UUID) (store.Run, error) {
	return store.Run{}, store.ErrNotFound
}

func (f *fakeRunRepo) ListRuns(context.Context, *store.RunStatus, int, int) ([]store.Run, error) {
	return nil, nil
}

func (f *fakeRunRepo) ListRunFactors(context.Context, uuid.UUID) ([]store.FactorRow, error) {
	return nil, nil
}
