package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.Workers != 2 || cfg.Analysis.QueueDepth != 64 {
		t.Fatalf("expected default analysis pool, got %+v", cfg.Analysis)
	}
	if cfg.Analysis.BreakerThreshold != 3 || cfg.Analysis.BreakerResetSecs != 60 {
		t.Fatalf("expected default breaker settings, got %+v", cfg.Analysis)
	}
	if cfg.Fetcher.UserAgent != "pagefactor-bot/0.1" || !cfg.Fetcher.RespectRobots {
		t.Fatalf("expected default fetcher settings, got %+v", cfg.Fetcher)
	}
	if cfg.Storage.Prefix != "markup" {
		t.Fatalf("expected default storage prefix, got %q", cfg.Storage.Prefix)
	}
	if got := cfg.FactorTimeout(); got != 2*time.Second {
		t.Fatalf("expected factor timeout 2s, got %v", got)
	}
	if got := cfg.FetchTimeout(); got != 15*time.Second {
		t.Fatalf("expected fetch timeout 15s, got %v", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
analysis:
  workers: 4
  queue_depth: 128
  factor_timeout_ms: 500
  stage_delay_ms: 25
  breaker_threshold: 5
  breaker_reset_seconds: 30
fetcher:
  user_agent: real-agent
  timeout_seconds: 45
  respect_robots: false
storage:
  gcs_bucket: bucket
  prefix: pages
  content_type: text/plain
db:
  dsn: postgres://localhost/pagefactor
pubsub:
  project_id: demo-project
  topic_name: analyses
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.Workers != 4 || cfg.Analysis.BreakerThreshold != 5 {
		t.Fatalf("expected analysis overrides to apply, got %+v", cfg.Analysis)
	}
	if cfg.Fetcher.UserAgent != "real-agent" || cfg.Fetcher.RespectRobots {
		t.Fatalf("expected fetcher overrides to apply, got %+v", cfg.Fetcher)
	}
	if cfg.Storage.GCSBucket != "bucket" || cfg.Storage.Prefix != "pages" {
		t.Fatalf("expected storage overrides to apply, got %+v", cfg.Storage)
	}
	if cfg.DB.DSN != "postgres://localhost/pagefactor" {
		t.Fatalf("expected db dsn override, got %q", cfg.DB.DSN)
	}
	if cfg.PubSub.ProjectID != "demo-project" || cfg.PubSub.TopicName != "analyses" {
		t.Fatalf("expected pubsub overrides to apply, got %+v", cfg.PubSub)
	}
	if got := cfg.StageDelay(); got != 25*time.Millisecond {
		t.Fatalf("expected stage delay 25ms, got %v", got)
	}
	if got := cfg.BreakerReset(); got != 30*time.Second {
		t.Fatalf("expected breaker reset 30s, got %v", got)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server: ServerConfig{Port: 8080},
		Analysis: AnalysisConfig{
			Workers:          2,
			QueueDepth:       64,
			FactorTimeoutMs:  2000,
			BreakerThreshold: 3,
			BreakerResetSecs: 60,
		},
		Fetcher: FetcherConfig{TimeoutSeconds: 15},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid workers",
			cfg: func() Config {
				c := base
				c.Analysis.Workers = 0
				return c
			}(),
			want: "analysis.workers",
		},
		{
			name: "invalid queue depth",
			cfg: func() Config {
				c := base
				c.Analysis.QueueDepth = -1
				return c
			}(),
			want: "analysis.queue_depth",
		},
		{
			name: "invalid factor timeout",
			cfg: func() Config {
				c := base
				c.Analysis.FactorTimeoutMs = 0
				return c
			}(),
			want: "analysis.factor_timeout_ms",
		},
		{
			name: "invalid fetch timeout",
			cfg: func() Config {
				c := base
				c.Fetcher.TimeoutSeconds = 0
				return c
			}(),
			want: "fetcher.timeout_seconds",
		},
		{
			name: "pubsub missing topic",
			cfg: func() Config {
				c := base
				c.PubSub.ProjectID = "demo-project"
				return c
			}(),
			want: "pubsub.topic_name",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
