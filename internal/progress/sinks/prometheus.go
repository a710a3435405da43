package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pagefactor/pagefactor/internal/progress"
)

// PrometheusSink exports analysis progress metrics via Prometheus. It owns
// all collectors for runs started/completed/running plus per-factor
// completion counters and score distributions.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runsRunning   prometheus.Gauge
	runRuntime    *prometheus.HistogramVec
	overallScore  prometheus.Histogram

	factorsDone  *prometheus.CounterVec
	factorScores *prometheus.HistogramVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analysis_runs_started_total",
			Help: "Total analysis runs that have started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_runs_completed_total",
			Help: "Total analysis runs completed partitioned by result.",
		}, []string{"result"}),
		runsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analysis_runs_running",
			Help: "Current number of running analysis runs.",
		}),
		runRuntime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analysis_run_seconds",
			Help:    "Wall time per completed analysis run.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"result"}),
		overallScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analysis_overall_score",
			Help:    "Overall score distribution for completed runs.",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		factorsDone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_factors_completed_total",
			Help: "Factor completions partitioned by factor id.",
		}, []string{"factor_id"}),
		factorScores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analysis_factor_score",
			Help:    "Per-factor score distribution.",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"factor_id"}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runsRunning,
		s.runRuntime,
		s.overallScore,
		s.factorsDone,
		s.factorScores,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
		s.runsRunning.Inc()
	case progress.StageRunDone:
		s.runsRunning.Dec()
		s.runsCompleted.WithLabelValues("success").Inc()
		s.runRuntime.WithLabelValues("success").Observe(evt.Dur.Seconds())
		s.overallScore.Observe(float64(evt.OverallScore))
	case progress.StageRunError:
		s.runsRunning.Dec()
		s.runsCompleted.WithLabelValues("error").Inc()
		s.runRuntime.WithLabelValues("error").Observe(evt.Dur.Seconds())
	case progress.StageFactorDone:
		s.factorsDone.WithLabelValues(evt.FactorID).Inc()
		s.factorScores.WithLabelValues(evt.FactorID).Observe(float64(evt.Score))
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
