// Package factors implements the ten page-quality factor analyzers. Each
// analyzer is a pure function over immutable page inputs; failures never
// escape the analyzer boundary.
package factors

import (
	"fmt"
	"time"

	"github.com/pagefactor/pagefactor/internal/analysis"
	"github.com/pagefactor/pagefactor/internal/markup"
)

// Input bundles the extracted page inputs handed to every analyzer. View is
// nil when the raw markup could not be parsed; analyzers must tolerate that.
type Input struct {
	Page analysis.PageData
	View *markup.View
}

// NewInput derives the analyzer input from fetched page data. A markup parse
// failure is not fatal; the resulting Input simply carries no view.
func NewInput(page analysis.PageData) Input {
	view, err := markup.New(page.RawMarkup)
	if err != nil {
		view = nil
	}
	return Input{Page: page, View: view}
}

// outcome is the raw product of one analyzer body before it is stamped into
// a FactorResult.
type outcome struct {
	score           int
	confidence      int
	evidence        []string
	recommendations []string
}

// Analyzer is one scored dimension of page quality.
type Analyzer struct {
	id     string
	name   string
	pillar analysis.Pillar
	weight float64
	fn     func(Input) outcome
}

// ID returns the stable pillar-namespaced factor identifier.
func (a Analyzer) ID() string { return a.id }

// Name returns the human-readable factor label.
func (a Analyzer) Name() string { return a.name }

// Pillar returns the scoring category.
func (a Analyzer) Pillar() analysis.Pillar { return a.pillar }

// Analyze runs the factor body and assembles an immutable FactorResult.
// Panics inside the body are converted into a zero-score, zero-confidence
// result with an evidence entry naming the failure.
func (a Analyzer) Analyze(in Input) (result analysis.FactorResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = a.failure(fmt.Sprintf("analyzer panic: %v", r), start)
		}
	}()

	out := a.fn(in)
	return analysis.FactorResult{
		FactorID:         a.id,
		FactorName:       a.name,
		Pillar:           a.pillar,
		Phase:            analysis.PhaseInstant,
		Score:            clamp(out.score),
		Confidence:       clamp(out.confidence),
		Weight:           a.weight,
		Evidence:         out.evidence,
		Recommendations:  out.recommendations,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}

// Fallback is the degraded result used when the circuit breaker cannot run
// the analyzer at all.
func (a Analyzer) Fallback(reason string) analysis.FactorResult {
	return a.failure(reason, time.Now())
}

func (a Analyzer) failure(reason string, start time.Time) analysis.FactorResult {
	return analysis.FactorResult{
		FactorID:         a.id,
		FactorName:       a.name,
		Pillar:           a.pillar,
		Phase:            analysis.PhaseInstant,
		Score:            0,
		Confidence:       0,
		Weight:           a.weight,
		Evidence:         []string{reason},
		Recommendations:  nil,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}

// All returns the ten analyzers in their fixed, documented execution order:
// protocol, title, meta, author, contact, headings, structured data, FAQ,
// images, word count. Changing this order changes the progress contract.
func All() []Analyzer {
	return []Analyzer{
		{id: "M.1.1", name: "Protocol Security", pillar: analysis.PillarMachineReadability, weight: 1.0, fn: analyzeProtocol},
		{id: "AI.1.1", name: "Title Optimization", pillar: analysis.PillarAI, weight: 1.0, fn: analyzeTitle},
		{id: "AI.1.2", name: "Meta Description", pillar: analysis.PillarAI, weight: 1.0, fn: analyzeMeta},
		{id: "A.2.1", name: "Author Information", pillar: analysis.PillarAuthority, weight: 1.0, fn: analyzeAuthor},
		{id: "A.2.2", name: "Contact Information", pillar: analysis.PillarAuthority, weight: 1.0, fn: analyzeContact},
		{id: "S.3.1", name: "Heading Hierarchy", pillar: analysis.PillarStructure, weight: 1.0, fn: analyzeHeadings},
		{id: "M.2.1", name: "Structured Data", pillar: analysis.PillarMachineReadability, weight: 1.0, fn: analyzeStructuredData},
		{id: "M.2.2", name: "FAQ Schema", pillar: analysis.PillarMachineReadability, weight: 1.0, fn: analyzeFAQ},
		{id: "M.3.1", name: "Image Alt Text", pillar: analysis.PillarMachineReadability, weight: 1.0, fn: analyzeImages},
		{id: "AI.2.1", name: "Content Depth", pillar: analysis.PillarAI, weight: 1.0, fn: analyzeWordCount},
	}
}

// Count is the number of factors in the instant phase.
const Count = 10

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
