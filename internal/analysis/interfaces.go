package analysis

import (
	"context"
	"time"
)

// PageFetcher retrieves a page and extracts the title/meta/raw-markup
// triple. Implementations return the zero PageData (plus an error) when the
// fetch fails entirely.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (PageData, error)
}

// Reporter receives ordered progress updates between factors. The engine
// awaits Report before moving on and tolerates a failing reporter.
type Reporter interface {
	Report(ctx context.Context, update ProgressUpdate) error
}

// ProgressUpdate is one progress callback payload.
type ProgressUpdate struct {
	// RunID correlates updates with the analysis run.
	RunID string
	// StageID names the stage, e.g. a factor ID or "complete".
	StageID string
	// Percent is the completion percentage in [0,100], non-decreasing
	// within one run.
	Percent int
	// Message is the human-readable stage label.
	Message string
	// Education is optional explanatory text for the caller's UI.
	Education string
	// Factor is set on per-factor updates and carries the result that
	// completed this stage.
	Factor *FactorResult
	// TS is the emitter timestamp.
	TS time.Time
}

// Clock returns the current time (swappable for tests).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

// Job is one queued analysis request.
type Job struct {
	RunID     string
	URL       string
	Submitted time.Time
}

// Queue provides enqueue/dequeue semantics for analysis jobs.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Dequeue(ctx context.Context) (Job, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}
