// Package engine sequences the factor analyzers into a full analysis run,
// isolating per-factor failures and reporting ordered progress.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/pagefactor/pagefactor/internal/analysis"
	"github.com/pagefactor/pagefactor/internal/breaker"
	"github.com/pagefactor/pagefactor/internal/factors"
	"github.com/pagefactor/pagefactor/internal/score"
)

// Config controls run pacing.
type Config struct {
	// StageDelay is an artificial pause between factors for UX pacing.
	// Tests set it to zero.
	StageDelay time.Duration
}

// Engine runs the ten factor analyzers in their fixed order. Analysis is
// strictly sequential: factors share read-only page data and the progress
// percentage contract depends on the order. The only concurrency inside a
// run is the breaker's timeout race.
type Engine struct {
	fetcher   analysis.PageFetcher
	breakers  *breaker.Registry
	clock     analysis.Clock
	logger    *zap.Logger
	cfg       Config
	analyzers []factors.Analyzer
}

// New constructs an Engine. The breaker registry is shared across runs; it
// carries the process-wide fault memory.
func New(
	fetcher analysis.PageFetcher,
	breakers *breaker.Registry,
	clock analysis.Clock,
	logger *zap.Logger,
	cfg Config,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		fetcher:   fetcher,
		breakers:  breakers,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
		analyzers: factors.All(),
	}
}

// Analyze fetches the page and runs every factor, reporting progress after
// each one. No error is ever returned to the caller: run-level failures are
// represented in the result with Success=false, and per-factor failures
// surface as zero-score fallback results.
func (e *Engine) Analyze(ctx context.Context, runID, url string, reporter analysis.Reporter) analysis.AnalysisResult {
	start := time.Now()

	e.report(ctx, reporter, analysis.ProgressUpdate{
		RunID:     runID,
		StageID:   "init",
		Percent:   10,
		Message:   "Fetching page",
		Education: "We download the page markup before any factor runs.",
		TS:        e.clock.Now(),
	})

	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Warn("page fetch failed", zap.String("url", url), zap.Error(err))
		return e.failedRun(ctx, runID, url, reporter, start, fmt.Sprintf("page fetch failed: %v", err))
	}
	if page.Empty() {
		return e.failedRun(ctx, runID, url, reporter, start, "page fetch returned no content")
	}

	input := factors.NewInput(page)
	results := make([]analysis.FactorResult, 0, len(e.analyzers))

	for i, a := range e.analyzers {
		if ctx.Err() != nil {
			e.logger.Warn("analysis canceled mid-run",
				zap.String("run_id", runID),
				zap.String("next_factor", a.ID()),
			)
			return analysis.AnalysisResult{
				RunID:            runID,
				URL:              url,
				Factors:          results,
				OverallScore:     0,
				ProcessingTimeMs: time.Since(start).Milliseconds(),
				Success:          false,
				Error:            fmt.Sprintf("analysis canceled: %v", ctx.Err()),
				FinishedAt:       e.clock.Now(),
				Page:             page,
			}
		}

		result := e.runFactor(ctx, a, input)
		results = append(results, result)

		e.report(ctx, reporter, analysis.ProgressUpdate{
			RunID:     runID,
			StageID:   a.ID(),
			Percent:   factorPercent(i + 1),
			Message:   fmt.Sprintf("Analyzed %s", a.Name()),
			Education: factorEducation[a.ID()],
			Factor:    &result,
			TS:        e.clock.Now(),
		})

		e.pause(ctx)
	}

	overall := score.Overall(results)
	e.report(ctx, reporter, analysis.ProgressUpdate{
		RunID:     runID,
		StageID:   "complete",
		Percent:   100,
		Message:   fmt.Sprintf("Analysis complete: %d factors, overall score %d", len(results), overall),
		Education: "The overall score is a confidence-weighted average of every factor.",
		TS:        e.clock.Now(),
	})

	return analysis.AnalysisResult{
		RunID:            runID,
		URL:              url,
		Factors:          results,
		OverallScore:     overall,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Success:          true,
		FinishedAt:       e.clock.Now(),
		Page:             page,
	}
}

// runFactor executes one analyzer under its circuit. The operation also
// validates the result so an analyzer emitting out-of-bounds values trips
// the breaker instead of polluting the aggregate.
func (e *Engine) runFactor(ctx context.Context, a factors.Analyzer, input factors.Input) analysis.FactorResult {
	fallback := a.Fallback(fmt.Sprintf("%s analysis unavailable", a.Name()))
	return e.breakers.Execute(ctx, a.ID(), func(context.Context) (analysis.FactorResult, error) {
		result := a.Analyze(input)
		if err := result.Validate(); err != nil {
			return analysis.FactorResult{}, fmt.Errorf("invalid factor result: %w", err)
		}
		return result, nil
	}, fallback)
}

func (e *Engine) failedRun(
	ctx context.Context,
	runID, url string,
	reporter analysis.Reporter,
	start time.Time,
	reason string,
) analysis.AnalysisResult {
	e.report(ctx, reporter, analysis.ProgressUpdate{
		RunID:   runID,
		StageID: "error",
		Percent: 100,
		Message: reason,
		TS:      e.clock.Now(),
	})
	return analysis.AnalysisResult{
		RunID:            runID,
		URL:              url,
		Factors:          []analysis.FactorResult{},
		OverallScore:     0,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Success:          false,
		Error:            reason,
		FinishedAt:       e.clock.Now(),
	}
}

// report awaits the reporter and tolerates its failure; progress transport
// problems never abort an analysis.
func (e *Engine) report(ctx context.Context, reporter analysis.Reporter, update analysis.ProgressUpdate) {
	if reporter == nil {
		return
	}
	if err := reporter.Report(ctx, update); err != nil {
		e.logger.Warn("progress report failed",
			zap.String("run_id", update.RunID),
			zap.String("stage", update.StageID),
			zap.Error(err),
		)
	}
}

func (e *Engine) pause(ctx context.Context) {
	if e.cfg.StageDelay <= 0 {
		return
	}
	timer := time.NewTimer(e.cfg.StageDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// factorPercent maps the 1-based factor index onto the 10-90 band. The
// first 10 percent is reserved for initialization and the last 10 for the
// caller's persistence step.
func factorPercent(index int) int {
	return int(math.Round(float64(index)/float64(factors.Count)*80)) + 10
}

var factorEducation = map[string]string{
	"M.1.1":  "HTTPS is table stakes: crawlers and browsers downrank unencrypted pages.",
	"AI.1.1": "Titles of 50-60 characters display fully in search results.",
	"AI.1.2": "A 150-160 character meta description becomes your search snippet.",
	"A.2.1":  "Visible authorship signals expertise and accountability.",
	"A.2.2":  "Contact details tell readers and crawlers a real organization stands behind the page.",
	"S.3.1":  "A clean heading outline helps machines map your content structure.",
	"M.2.1":  "Structured data lets search engines show rich results for the page.",
	"M.2.2":  "FAQ markup can surface your answers directly in search results.",
	"M.3.1":  "Alt text makes images accessible and machine-readable.",
	"AI.2.1": "Substantive content depth is a prerequisite for ranking on competitive topics.",
}
