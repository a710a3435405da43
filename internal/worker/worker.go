// Package worker implements the analysis pipeline execution loop.
package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pagefactor/pagefactor/internal/analysis"
	"github.com/pagefactor/pagefactor/internal/progress"
	"github.com/pagefactor/pagefactor/internal/storage"
	"github.com/pagefactor/pagefactor/internal/store"
)

// Runner executes one analysis run end to end.
type Runner interface {
	Analyze(ctx context.Context, runID, url string, reporter analysis.Reporter) analysis.AnalysisResult
}

// Config controls Worker behavior.
type Config struct {
	ContentType string
	BlobPrefix  string
	Topic       string
}

// Worker consumes queued jobs and executes the analysis pipeline: run the
// engine, persist factor rows, archive raw markup, publish the completion
// payload, and emit the terminal progress event.
type Worker struct {
	queue     analysis.Queue
	runner    Runner
	repo      store.RunRepository
	blobStore storage.BlobStore
	publisher analysis.Publisher
	emitter   progress.Emitter
	clock     analysis.Clock
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker. blobStore and publisher may be nil, which
// disables markup archival and completion publishing respectively.
func New(
	queue analysis.Queue,
	runner Runner,
	repo store.RunRepository,
	blobStore storage.BlobStore,
	publisher analysis.Publisher,
	emitter progress.Emitter,
	clock analysis.Clock,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "text/html; charset=utf-8"
	}
	return &Worker{
		queue:     queue,
		runner:    runner,
		repo:      repo,
		blobStore: blobStore,
		publisher: publisher,
		emitter:   emitter,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run blocks, consuming jobs until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued job", zap.String("run_id", job.RunID), zap.String("url", job.URL))
		w.ProcessJob(ctx, job)
	}
}

// ProcessJob executes one job. It is exported so tests and synchronous
// callers can drive the pipeline without the dequeue loop.
func (w *Worker) ProcessJob(ctx context.Context, job analysis.Job) {
	runID, err := uuid.Parse(job.RunID)
	if err != nil {
		w.logger.Error("invalid run id on queue", zap.String("run_id", job.RunID), zap.Error(err))
		return
	}

	start := w.clock.Now()
	reporter := progress.NewHubReporter(w.emitter, job.URL)
	result := w.runner.Analyze(ctx, job.RunID, job.URL, reporter)

	for _, factor := range result.Factors {
		if err := w.repo.RecordFactor(ctx, factorRow(runID, factor)); err != nil {
			w.logger.Error("record factor failed",
				zap.String("run_id", job.RunID),
				zap.String("factor_id", factor.FactorID),
				zap.Error(err),
			)
		}
	}

	blobURI := w.archiveMarkup(ctx, job, result)

	if result.Success {
		if err := w.publishResult(ctx, job, result, blobURI); err != nil {
			w.logger.Error("publish completion failed", zap.String("run_id", job.RunID), zap.Error(err))
		}
	}

	w.emitTerminal(job, result, start)
}

func (w *Worker) archiveMarkup(ctx context.Context, job analysis.Job, result analysis.AnalysisResult) string {
	if w.blobStore == nil || result.Page.RawMarkup == "" {
		return ""
	}
	uri, err := w.blobStore.PutObject(
		ctx,
		w.buildBlobPath(job.RunID),
		w.cfg.ContentType,
		[]byte(result.Page.RawMarkup),
	)
	if err != nil {
		w.logger.Error("archive markup failed", zap.String("run_id", job.RunID), zap.Error(err))
		return ""
	}
	w.logger.Debug("markup archived", zap.String("run_id", job.RunID), zap.String("blob_uri", uri))
	return uri
}

func (w *Worker) buildBlobPath(runID string) string {
	prefix := strings.Trim(w.cfg.BlobPrefix, "/")
	if prefix == "" {
		return fmt.Sprintf("%s.html", runID)
	}
	return fmt.Sprintf("%s/%s.html", prefix, runID)
}

func (w *Worker) publishResult(
	ctx context.Context,
	job analysis.Job,
	result analysis.AnalysisResult,
	blobURI string,
) error {
	if w.cfg.Topic == "" || w.publisher == nil {
		return nil
	}
	payload := map[string]any{
		"run_id":        job.RunID,
		"url":           job.URL,
		"overall_score": result.OverallScore,
		"duration_ms":   result.ProcessingTimeMs,
		"blob_uri":      blobURI,
		"timestamp":     w.clock.Now().Format(time.RFC3339),
	}
	if _, err := w.publisher.Publish(ctx, w.cfg.Topic, payload); err != nil {
		return fmt.Errorf("publish payload: %w", err)
	}
	w.logger.Info("analysis published",
		zap.String("run_id", job.RunID),
		zap.String("url", job.URL),
		zap.Int("overall_score", result.OverallScore),
	)
	return nil
}

// emitTerminal publishes the RUN_DONE or RUN_ERROR event. The store sink
// consumes it to close out the run row.
func (w *Worker) emitTerminal(job analysis.Job, result analysis.AnalysisResult, start time.Time) {
	if w.emitter == nil {
		return
	}
	runID, err := uuid.Parse(job.RunID)
	if err != nil {
		return
	}
	evt := progress.Event{
		RunID:   progress.UUIDToBytes(runID),
		TS:      w.clock.Now(),
		URL:     job.URL,
		Percent: 100,
		Dur:     w.clock.Now().Sub(start),
	}
	if result.Success {
		evt.Stage = progress.StageRunDone
		evt.OverallScore = result.OverallScore
		evt.Message = fmt.Sprintf("Analysis complete, overall score %d", result.OverallScore)
	} else {
		evt.Stage = progress.StageRunError
		evt.Message = result.Error
		evt.Note = result.Error
	}
	w.emitter.Emit(evt)
}

func factorRow(runID uuid.UUID, factor analysis.FactorResult) store.FactorRow {
	return store.FactorRow{
		RunID:            runID,
		FactorID:         factor.FactorID,
		FactorName:       factor.FactorName,
		Pillar:           string(factor.Pillar),
		Phase:            string(factor.Phase),
		Score:            factor.Score,
		Confidence:       factor.Confidence,
		Weight:           factor.Weight,
		Evidence:         factor.Evidence,
		Recommendations:  factor.Recommendations,
		ProcessingTimeMs: factor.ProcessingTimeMs,
	}
}
