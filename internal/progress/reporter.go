package progress

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pagefactor/pagefactor/internal/analysis"
)

// Engine stage labels that map onto run lifecycle stages rather than
// factor completions.
const (
	stageInit     = "init"
	stageComplete = "complete"
	stageError    = "error"
)

// HubReporter satisfies the engine's awaited Reporter contract by
// translating updates into hub events. Emit never blocks, so the engine's
// progress ordering guarantee costs nothing.
type HubReporter struct {
	emitter Emitter
	url     string
}

// NewHubReporter wraps an Emitter for one analysis run.
func NewHubReporter(emitter Emitter, url string) *HubReporter {
	return &HubReporter{emitter: emitter, url: url}
}

// Report converts the update into a progress Event and emits it.
func (r *HubReporter) Report(_ context.Context, update analysis.ProgressUpdate) error {
	if r == nil || r.emitter == nil {
		return nil
	}
	runID, err := uuid.Parse(update.RunID)
	if err != nil {
		return fmt.Errorf("parse run id: %w", err)
	}
	evt := Event{
		RunID:     UUIDToBytes(runID),
		TS:        update.TS,
		URL:       r.url,
		Percent:   update.Percent,
		Message:   update.Message,
		Education: update.Education,
	}
	switch update.StageID {
	case stageInit:
		evt.Stage = StageRunStart
	case stageComplete, stageError:
		// Terminal events carry the overall score and run duration,
		// which only the worker knows. It emits them itself.
		return nil
	default:
		evt.Stage = StageFactorDone
		evt.FactorID = update.StageID
		if update.Factor != nil {
			evt.FactorName = update.Factor.FactorName
			evt.Score = update.Factor.Score
			evt.Confidence = update.Factor.Confidence
		}
	}
	r.emitter.Emit(evt)
	return nil
}
