// Package main wires together the analysis service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcpubsub "cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pagefactor/pagefactor/internal/analysis"
	"github.com/pagefactor/pagefactor/internal/api"
	"github.com/pagefactor/pagefactor/internal/breaker"
	"github.com/pagefactor/pagefactor/internal/clock/system"
	"github.com/pagefactor/pagefactor/internal/config"
	"github.com/pagefactor/pagefactor/internal/dispatcher"
	"github.com/pagefactor/pagefactor/internal/engine"
	collyfetcher "github.com/pagefactor/pagefactor/internal/fetcher/colly"
	"github.com/pagefactor/pagefactor/internal/id/uuid"
	"github.com/pagefactor/pagefactor/internal/logging"
	"github.com/pagefactor/pagefactor/internal/progress"
	"github.com/pagefactor/pagefactor/internal/progress/sinks"
	pubsubpublisher "github.com/pagefactor/pagefactor/internal/publisher/pubsub"
	queueMemory "github.com/pagefactor/pagefactor/internal/queue/memory"
	"github.com/pagefactor/pagefactor/internal/storage"
	"github.com/pagefactor/pagefactor/internal/storage/gcs"
	memoryStorage "github.com/pagefactor/pagefactor/internal/storage/memory"
	"github.com/pagefactor/pagefactor/internal/storage/postgres"
	"github.com/pagefactor/pagefactor/internal/store"
	"github.com/pagefactor/pagefactor/internal/worker"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := system.New()
	idGen := uuid.New()

	repo, cleanupRepo := buildRunRepository(ctx, cfg, logger)
	defer cleanupRepo()

	blobStore := buildBlobStore(ctx, cfg, logger)
	publisher, cleanupPublisher := buildPublisher(ctx, cfg, logger)
	defer cleanupPublisher()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		logger.Fatal("prometheus sink init failed", zap.Error(err))
	}
	hub := progress.NewHub(progress.Config{
		Logger: logger.Named("progress"),
	},
		sinks.NewLogSink(logger.Named("progress")),
		promSink,
		sinks.NewStoreSink(repo, logger.Named("store_sink")),
	)

	breakers := breaker.NewRegistry(breaker.Options{
		FailureThreshold: cfg.Analysis.BreakerThreshold,
		ResetTimeout:     cfg.BreakerReset(),
		CallTimeout:      cfg.FactorTimeout(),
		Clock:            clock,
		Logger:           logger.Named("breaker"),
	})

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.Fetcher.UserAgent,
		RespectRobots: cfg.Fetcher.RespectRobots,
		Timeout:       cfg.FetchTimeout(),
	})

	eng := engine.New(fetcher, breakers, clock, logger.Named("engine"), engine.Config{
		StageDelay: cfg.StageDelay(),
	})

	workerCfg := worker.Config{
		ContentType: cfg.Storage.ContentType,
		BlobPrefix:  cfg.Storage.Prefix,
		Topic:       cfg.PubSub.TopicName,
	}
	queue := queueMemory.NewQueue(cfg.Analysis.QueueDepth)
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "analysis_queue_depth",
		Help: "Jobs waiting in the analysis queue.",
	}, func() float64 { return float64(queue.Depth()) }))

	var workers []*worker.Worker
	for i := 0; i < cfg.Analysis.Workers; i++ {
		workers = append(workers, worker.New(
			queue,
			eng,
			repo,
			blobStore,
			publisher,
			hub,
			clock,
			workerCfg,
			logger.Named("worker").With(zap.Int("index", i)),
		))
	}
	dispatch := dispatcher.New(queue, workers)

	apiServer := api.NewServer(repo, dispatch, breakers, idGen, clock, registry, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("dispatcher started", zap.Int("workers", cfg.Analysis.Workers))
		dispatch.Run(ctx)
	}()

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	queue.Close()
	if err := hub.Close(shutdownCtx); err != nil {
		logger.Error("progress hub close error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// buildRunRepository selects Postgres when a DSN is configured and falls
// back to the in-memory store otherwise.
func buildRunRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.RunRepository, func()) {
	if cfg.DB.DSN == "" {
		logger.Info("using in-memory run store")
		return memoryStorage.NewRunStore(), func() {}
	}
	repo, cleanup, err := postgres.NewRunStore(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("postgres run store init failed", zap.Error(err))
	}
	logger.Info("using postgres run store")
	return repo, cleanup
}

// buildBlobStore returns a GCS archive when a bucket is configured. A nil
// BlobStore disables markup archival.
func buildBlobStore(ctx context.Context, cfg config.Config, logger *zap.Logger) storage.BlobStore {
	if cfg.Storage.GCSBucket == "" {
		logger.Info("markup archival disabled")
		return nil
	}
	client, err := gcstorage.NewClient(ctx)
	if err != nil {
		logger.Fatal("gcs client init failed", zap.Error(err))
	}
	blobStore, err := gcs.New(client, gcs.Config{Bucket: cfg.Storage.GCSBucket})
	if err != nil {
		logger.Fatal("gcs blob store init failed", zap.Error(err))
	}
	logger.Info("using gcs markup archive", zap.String("bucket", cfg.Storage.GCSBucket))
	return blobStore
}

// buildPublisher returns a Pub/Sub completion publisher when a project is
// configured. A nil Publisher disables completion publishing.
func buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (analysis.Publisher, func()) {
	if cfg.PubSub.ProjectID == "" {
		logger.Info("completion publishing disabled")
		return nil, func() {}
	}
	client, err := gcpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		logger.Fatal("pubsub client init failed", zap.Error(err))
	}
	pub := pubsubpublisher.New(client)
	logger.Info("using pubsub completion publisher",
		zap.String("project", cfg.PubSub.ProjectID),
		zap.String("topic", cfg.PubSub.TopicName),
	)
	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Error("pubsub close error", zap.Error(err))
		}
	}
}
