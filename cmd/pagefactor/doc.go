// Package main hosts the page factor analysis service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes health, metrics, and analysis endpoints. Submitted URLs are validated,
//     assigned a run ID, persisted as a running row via the RunRepository, and enqueued for work.
//   - Dispatcher & queue: runs flow through a bounded in-memory queue sized by config.Analysis.QueueDepth and are
//     fanned out to a fixed worker pool sized by config.Analysis.Workers. Context cancellation stops workers
//     cleanly on shutdown.
//   - Analysis pipeline: workers fetch the page once via the Colly-based fetcher, then run the ten factor analyzers
//     sequentially under per-factor circuit breakers. A tripped breaker yields a zero-score fallback result rather
//     than aborting the run, and the confidence-weighted overall score is computed from whatever completed.
//   - Persistence & fanout: factor rows are written to the configured RunRepository (memory/Postgres), raw markup is
//     archived to GCS when a bucket is configured, and a compact Pub/Sub notification is published when a topic is
//     configured. Progress events are buffered by the Hub and sent to log, Prometheus, and store sinks.
//   - Configuration & plumbing: Viper populates config from env/files; zap provides structured logging; Prometheus
//     metrics are exported via /metrics. The service is stateless across requests, suitable for Cloud Run scale-out.
//
// Operational notes:
//   - Concurrency model: bounded queue + fixed worker pool; each run is strictly sequential inside its worker so the
//     progress percentage contract holds. Shutdown is coordinated via context cancellation from main through the
//     dispatcher to workers, then the progress hub drains.
//   - Circuit breakers: per-factor failure counts persist across runs within the process. POST /v1/breaker/reset
//     re-closes circuits without a restart.
//   - Observability: zap logs carry run IDs and factor IDs at key transitions; the Prometheus sink tracks run and
//     factor outcomes; the log sink mirrors every progress milestone. Tracing is not wired in.
//
// Quick checklist:
//   - Configure env vars: PAGEFACTOR_SERVER_PORT, PAGEFACTOR_ANALYSIS_WORKERS, PAGEFACTOR_FETCHER_TIMEOUT_SECONDS,
//     PAGEFACTOR_DB_DSN for Postgres persistence, PAGEFACTOR_STORAGE_GCS_BUCKET for markup archival, and
//     PAGEFACTOR_PUBSUB_PROJECT_ID/PAGEFACTOR_PUBSUB_TOPIC_NAME for completion publishing.
//   - Run locally: go run ./cmd/pagefactor -config config.yaml (or rely solely on env overrides).
//   - Cloud Run: the process reacts to SIGTERM for graceful drain, with in-flight factor work bounded by the breaker
//     call timeout.
package main
