package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/trafficsim/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CatalogFile != "" {
		t.Errorf("CatalogFile = %q, want empty", cfg.CatalogFile)
	}
	if cfg.RequestsPerMinute != 60 {
		t.Errorf("RequestsPerMinute = %d, want 60", cfg.RequestsPerMinute)
	}
	if cfg.Duration() != 2*time.Minute {
		t.Errorf("Duration() = %s, want 2m", cfg.Duration())
	}
	if cfg.Domain != "" {
		t.Errorf("Domain = %q, want empty", cfg.Domain)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Timeout)
	}
	if cfg.Schedule != config.ScheduleFixedDelay {
		t.Errorf("Schedule = %q, want fixed-delay", cfg.Schedule)
	}
	if cfg.LogFormat != config.LogFormatText || cfg.LogLevel != "info" {
		t.Errorf("log settings = %q/%q, want text/info", cfg.LogFormat, cfg.LogLevel)
	}
	if cfg.Tracing.Enabled() && os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		t.Errorf("tracing enabled without an endpoint")
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{
		"--file", "catalog.json",
		"--requests-per-minute", "120",
		"--duration-minutes", "0.5",
		"--global-domain", " https://api.example.com ",
		"-c", "4",
		"--schedule", "Fixed-Rate",
		"--seed", "42",
		"--log-format", "JSON",
		"--body-path", "$.id",
		"--tracing-propagate=false",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CatalogFile != "catalog.json" {
		t.Errorf("CatalogFile = %q", cfg.CatalogFile)
	}
	if cfg.RequestsPerMinute != 120 {
		t.Errorf("RequestsPerMinute = %d, want 120", cfg.RequestsPerMinute)
	}
	if cfg.Duration() != 30*time.Second {
		t.Errorf("Duration() = %s, want 30s", cfg.Duration())
	}
	if cfg.Domain != "https://api.example.com" {
		t.Errorf("Domain = %q", cfg.Domain)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.Schedule != config.ScheduleFixedRate {
		t.Errorf("Schedule = %q, want fixed-rate", cfg.Schedule)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.LogFormat != config.LogFormatJSON {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.BodyPath != "$.id" {
		t.Errorf("BodyPath = %q", cfg.BodyPath)
	}
	if cfg.Tracing.ShouldPropagate() {
		t.Errorf("ShouldPropagate() = true, want false")
	}
}

func TestLoadAcceptsUnderscoreFlags(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{
		"--file=catalog.yaml",
		"--requests_per_minute=30",
		"--duration_minutes=1",
		"--global_domain=http://localhost:8080",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RequestsPerMinute != 30 || cfg.DurationMinutes != 1 || cfg.Domain != "http://localhost:8080" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--help"})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("Load(--help) error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trafficsim.yaml")
	if err := os.WriteFile(path, []byte(`
file: catalog.yaml
requests_per_minute: 10
duration_minutes: 5
global_domain: https://staging.example.com
concurrency: 3
timeout: 5s
schedule: fixed-rate
json_output: true
tracing:
  endpoint: localhost:4318
  protocol: http
  sample_rate: 0.25
  propagate: false
`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
	if cfg.CatalogFile != "catalog.yaml" || cfg.RequestsPerMinute != 10 || cfg.DurationMinutes != 5 {
		t.Errorf("unexpected core settings: %+v", cfg)
	}
	if cfg.Domain != "https://staging.example.com" || cfg.Concurrency != 3 || cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected request settings: %+v", cfg)
	}
	if cfg.Schedule != config.ScheduleFixedRate || !cfg.JSONOutput {
		t.Errorf("unexpected output settings: %+v", cfg)
	}
	if cfg.Tracing.Endpoint != "localhost:4318" || cfg.Tracing.Protocol != "http" || cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("unexpected tracing settings: %+v", cfg.Tracing)
	}
	if cfg.Tracing.ShouldPropagate() {
		t.Errorf("ShouldPropagate() = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trafficsim.json")
	if err := os.WriteFile(path, []byte(`{
		"file": "from-file.json",
		"requests_per_minute": 10,
		"concurrency": 2
	}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path, "--concurrency", "8"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want flag value 8", cfg.Concurrency)
	}
	if cfg.RequestsPerMinute != 10 {
		t.Errorf("RequestsPerMinute = %d, want file value 10", cfg.RequestsPerMinute)
	}
	if cfg.CatalogFile != "from-file.json" {
		t.Errorf("CatalogFile = %q, want file value", cfg.CatalogFile)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidationErrors(t *testing.T) {
	valid := func() *config.Config {
		cfg := config.Defaults()
		cfg.CatalogFile = "catalog.json"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"missing file", func(c *config.Config) { c.CatalogFile = "" }, "file is required"},
		{"zero rate", func(c *config.Config) { c.RequestsPerMinute = 0 }, "requests_per_minute"},
		{"zero duration", func(c *config.Config) { c.DurationMinutes = 0 }, "duration_minutes"},
		{"zero concurrency", func(c *config.Config) { c.Concurrency = 0 }, "concurrency"},
		{"negative timeout", func(c *config.Config) { c.Timeout = -time.Second }, "timeout"},
		{"domain without scheme", func(c *config.Config) { c.Domain = "api.example.com" }, "global_domain"},
		{"unknown schedule", func(c *config.Config) { c.Schedule = "poisson" }, "schedule"},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }, "log_format"},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"},
		{"progress with json", func(c *config.Config) { c.Progress = true; c.JSONOutput = true }, "mutually exclusive"},
		{"tracing protocol", func(c *config.Config) { c.Tracing.Protocol = "thrift" }, "tracing.protocol"},
		{"tracing sample rate", func(c *config.Config) { c.Tracing.SampleRate = 1.5 }, "tracing.sample_rate"},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline Validate() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var vErr config.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestConfigWarnings(t *testing.T) {
	cfg := config.Defaults()
	if w := cfg.Warnings(); len(w) != 0 {
		t.Fatalf("expected no warnings, got %v", w)
	}
	cfg.RequestsPerMinute = 10000
	cfg.Concurrency = 1000
	if w := cfg.Warnings(); len(w) != 2 {
		t.Fatalf("expected 2 warnings, got %v", w)
	}
}
