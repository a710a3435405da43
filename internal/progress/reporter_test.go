package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pagefactor/pagefactor/internal/analysis"
)

type captureEmitter struct {
	events []Event
}

func (c *captureEmitter) Emit(evt Event) {
	c.events = append(c.events, evt)
}

func TestHubReporterMapsStages(t *testing.T) {
	t.Parallel()

	emitter := &captureEmitter{}
	reporter := NewHubReporter(emitter, "https://example.com")
	runID := uuid.NewString()
	now := time.Now()

	require.NoError(t, reporter.Report(context.Background(), analysis.ProgressUpdate{
		RunID: runID, StageID: "init", Percent: 10, Message: "Fetching page", TS: now,
	}))
	require.NoError(t, reporter.Report(context.Background(), analysis.ProgressUpdate{
		RunID:   runID,
		StageID: "M.1.1",
		Percent: 18,
		Message: "Analyzed Protocol Security",
		Factor: &analysis.FactorResult{
			FactorID:   "M.1.1",
			FactorName: "Protocol Security",
			Score:      100,
			Confidence: 100,
		},
		TS: now,
	}))

	require.Len(t, emitter.events, 2)
	require.Equal(t, StageRunStart, emitter.events[0].Stage)
	require.Equal(t, "https://example.com", emitter.events[0].URL)

	factorEvt := emitter.events[1]
	require.Equal(t, StageFactorDone, factorEvt.Stage)
	require.Equal(t, "M.1.1", factorEvt.FactorID)
	require.Equal(t, "Protocol Security", factorEvt.FactorName)
	require.Equal(t, 100, factorEvt.Score)
	require.Equal(t, 18, factorEvt.Percent)
}

func TestHubReporterSkipsTerminalStages(t *testing.T) {
	t.Parallel()

	emitter := &captureEmitter{}
	reporter := NewHubReporter(emitter, "https://example.com")
	runID := uuid.NewString()

	require.NoError(t, reporter.Report(context.Background(), analysis.ProgressUpdate{
		RunID: runID, StageID: "complete", Percent: 100, TS: time.Now(),
	}))
	require.NoError(t, reporter.Report(context.Background(), analysis.ProgressUpdate{
		RunID: runID, StageID: "error", Percent: 100, Message: "fetch failed", TS: time.Now(),
	}))
	require.Empty(t, emitter.events)
}

func TestHubReporterRejectsBadRunID(t *testing.T) {
	t.Parallel()

	reporter := NewHubReporter(&captureEmitter{}, "https://example.com")
	err := reporter.Report(context.Background(), analysis.ProgressUpdate{
		RunID: "not-a-uuid", StageID: "init", Percent: 10, TS: time.Now(),
	})
	require.Error(t, err)
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	valid := sampleEvent(StageFactorDone)
	require.NoError(t, valid.Validate())

	missingFactor := sampleEvent(StageFactorDone)
	missingFactor.FactorID = ""
	require.Error(t, missingFactor.Validate())

	badPercent := sampleEvent(StageRunStart)
	badPercent.Percent = 120
	require.Error(t, badPercent.Validate())

	unknownStage := sampleEvent(StageRunStart)
	unknownStage.Stage = "SOMETHING_ELSE"
	require.Error(t, unknownStage.Validate())

	require.Error(t, Event{Stage: StageRunStart, TS: time.Now()}.Validate())
}
