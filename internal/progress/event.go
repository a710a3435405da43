// Package progress defines the event structures emitted during analysis runs.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart   Stage = "RUN_START"
	StageFactorDone Stage = "FACTOR_DONE"
	StageRunDone    Stage = "RUN_DONE"
	StageRunError   Stage = "RUN_ERROR"
)

// Event captures a single milestone of analysis progress.
type Event struct {
	// RunID uniquely identifies an analysis run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle or factor milestone occurred.
	Stage Stage
	// URL is the analyzed page address.
	URL string
	// FactorID scopes factor events to one factor, e.g. "AI.1.1".
	FactorID string
	// FactorName is the human-readable factor label.
	FactorName string
	// Score and Confidence carry the factor outcome for factor events.
	Score      int
	Confidence int
	// Percent is the run completion percentage reported with this event.
	Percent int
	// Message is the human-readable stage label shown to callers.
	Message string
	// Education is optional explanatory text for the caller's UI.
	Education string
	// OverallScore is set on RUN_DONE events.
	OverallScore int
	// Dur captures run latency for completion events.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageRunError:
	case StageFactorDone:
		if e.FactorID == "" {
			return errors.New("factor event requires factor id")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Percent < 0 || e.Percent > 100 {
		return fmt.Errorf("percent %d out of [0,100]", e.Percent)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID for repositories.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
