package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Schedule selects how the engine waits between cycles.
type Schedule string

const (
	ScheduleFixedDelay Schedule = "fixed-delay"
	ScheduleFixedRate  Schedule = "fixed-rate"
)

// LogFormat selects the logrus formatter.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

const (
	DefaultRequestsPerMinute = 60
	DefaultDurationMinutes   = 2
	DefaultTimeout           = 30 * time.Second
)

type Config struct {
	CatalogFile       string        `mapstructure:"file"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	DurationMinutes   float64       `mapstructure:"duration_minutes"`
	Domain            string        `mapstructure:"global_domain"`
	Concurrency       int           `mapstructure:"concurrency"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Schedule          Schedule      `mapstructure:"schedule"`
	Seed              uint64        `mapstructure:"seed"`
	JSONOutput        bool          `mapstructure:"json_output"`
	Progress          bool          `mapstructure:"progress"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         LogFormat     `mapstructure:"log_format"`
	BodyPath          string        `mapstructure:"body_path"`
	Tracing           TracingConfig `mapstructure:"tracing"`
	ConfigFile        string        `mapstructure:"-"`
}

// TracingConfig configures OpenTelemetry export. Tracing is enabled when an
// endpoint is set here or through OTEL_EXPORTER_OTLP_ENDPOINT.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   *bool   `mapstructure:"propagate"` // nil means propagate when enabled
}

func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate == nil {
		return true
	}
	return *t.Propagate
}

// Defaults returns a Config populated with the documented defaults.
func Defaults() *Config {
	return &Config{
		RequestsPerMinute: DefaultRequestsPerMinute,
		DurationMinutes:   DefaultDurationMinutes,
		Concurrency:       1,
		Timeout:           DefaultTimeout,
		Schedule:          ScheduleFixedDelay,
		LogLevel:          "info",
		LogFormat:         LogFormatText,
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}
}

// Duration converts DurationMinutes into a time.Duration.
func (c Config) Duration() time.Duration {
	return time.Duration(c.DurationMinutes * float64(time.Minute))
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.CatalogFile) == "" {
		issues = append(issues, "file is required (use --help for usage information)")
	}
	if c.RequestsPerMinute < 1 {
		issues = append(issues, "requests_per_minute must be >= 1")
	}
	if c.DurationMinutes <= 0 {
		issues = append(issues, "duration_minutes must be > 0")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if domain := strings.TrimSpace(c.Domain); domain != "" {
		lower := strings.ToLower(domain)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			issues = append(issues, "global_domain must start with http:// or https://")
		}
	}
	switch c.Schedule {
	case "", ScheduleFixedDelay, ScheduleFixedRate:
	default:
		issues = append(issues, fmt.Sprintf("schedule must be %q or %q", ScheduleFixedDelay, ScheduleFixedRate))
	}
	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		issues = append(issues, fmt.Sprintf("log_format must be %q or %q", LogFormatText, LogFormatJSON))
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			issues = append(issues, fmt.Sprintf("log_level: %v", err))
		}
	}
	if c.JSONOutput && c.Progress {
		issues = append(issues, "progress and json-output are mutually exclusive")
	}
	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// Warnings reports settings that are valid but likely unintended.
func (c Config) Warnings() []string {
	var warnings []string
	if c.RequestsPerMinute > 6000 {
		warnings = append(warnings, fmt.Sprintf("High request rate configured (%d cycles per minute). Ensure you have authorization to send traffic to the target system.", c.RequestsPerMinute))
	}
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("High concurrency configured (%d in flight). Ensure you have authorization to send traffic to the target system.", c.Concurrency))
	}
	if c.Tracing.Enabled() && c.Tracing.Insecure {
		warnings = append(warnings, "Tracing exporter TLS is disabled (insecure: true).")
	}
	return warnings
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing.protocol %q must be \"grpc\" or \"http\"", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing.sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
