// Package analysis defines the core types shared across the factor engine.
package analysis

import (
	"fmt"
	"time"
)

// Pillar is the scoring category a factor belongs to.
type Pillar string

// Pillars recognized by the engine.
const (
	PillarAI                 Pillar = "AI"
	PillarAuthority          Pillar = "Authority"
	PillarMachineReadability Pillar = "MachineReadability"
	PillarStructure          Pillar = "Structure"
)

// Phase tags when a factor is evaluated. Only the instant phase exists
// today; the tag is kept on the wire for a future deferred-analysis phase.
type Phase string

// Supported phases.
const (
	PhaseInstant Phase = "instant"
)

// PageData holds the fetched inputs every analyzer works from. It is built
// once per run by the page fetcher and never mutated afterwards.
type PageData struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	RawMarkup       string `json:"-"`
}

// Empty reports whether the fetcher produced no usable content.
func (p PageData) Empty() bool {
	return p.Title == "" && p.MetaDescription == "" && p.RawMarkup == ""
}

// FactorResult is the immutable outcome of a single factor analyzer.
type FactorResult struct {
	// FactorID is the stable pillar-namespaced identifier, e.g. "AI.1.1".
	FactorID string `json:"factor_id"`
	// FactorName is the human-readable label.
	FactorName string `json:"factor_name"`
	// Pillar is the scoring category.
	Pillar Pillar `json:"pillar"`
	// Phase tags the evaluation phase (always instant for this engine).
	Phase Phase `json:"phase"`
	// Score is the factor score in [0,100].
	Score int `json:"score"`
	// Confidence is how much the analyzer trusts its own score, in [0,100].
	Confidence int `json:"confidence"`
	// Weight is the positive aggregation multiplier.
	Weight float64 `json:"weight"`
	// Evidence lists what was observed, in order.
	Evidence []string `json:"evidence"`
	// Recommendations lists what to fix; empty when the factor is optimal.
	Recommendations []string `json:"recommendations"`
	// ProcessingTimeMs is the measured analyzer wall time (diagnostic only).
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// Validate enforces the construction invariants on a FactorResult.
func (f FactorResult) Validate() error {
	if f.FactorID == "" {
		return fmt.Errorf("factor id is required")
	}
	if f.Score < 0 || f.Score > 100 {
		return fmt.Errorf("factor %s: score %d out of [0,100]", f.FactorID, f.Score)
	}
	if f.Confidence < 0 || f.Confidence > 100 {
		return fmt.Errorf("factor %s: confidence %d out of [0,100]", f.FactorID, f.Confidence)
	}
	if f.Weight <= 0 {
		return fmt.Errorf("factor %s: weight must be positive", f.FactorID)
	}
	switch f.Phase {
	case PhaseInstant:
	default:
		return fmt.Errorf("factor %s: unknown phase %q", f.FactorID, f.Phase)
	}
	return nil
}

// AnalysisResult is the aggregate produced once per run.
type AnalysisResult struct {
	// RunID identifies the run for persistence and progress correlation.
	RunID string `json:"run_id"`
	// URL is the analyzed page address.
	URL string `json:"url"`
	// Factors holds one result per analyzer that ran, in the fixed order.
	// Failed analyzers contribute a zero-score fallback, never a gap.
	Factors []FactorResult `json:"factors"`
	// OverallScore is the confidence-weighted aggregate in [0,100].
	OverallScore int `json:"overall_score"`
	// ProcessingTimeMs is the total run wall time.
	ProcessingTimeMs int64 `json:"processing_time_ms"`
	// Success is false only on an unrecoverable run-level error.
	Success bool `json:"success"`
	// Error carries the run-level failure reason when Success is false.
	Error string `json:"error,omitempty"`
	// FinishedAt is when the run completed.
	FinishedAt time.Time `json:"finished_at"`
	// Page holds the fetched page so callers can archive the raw markup.
	// It is zero when the fetch failed.
	Page PageData `json:"-"`
}
