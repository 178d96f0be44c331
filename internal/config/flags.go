package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "trafficsim",
		Short:         "Replay a catalog of request templates with synthetic data",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// underscoreNormalize accepts --requests_per_minute style spellings.
func underscoreNormalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func configureFlags(flags *pflag.FlagSet) {
	flags.SetNormalizeFunc(underscoreNormalize)

	// Catalog and pacing
	flags.StringP("file", "f", "", "Path to the request catalog (JSON or YAML array)")
	flags.Int("requests-per-minute", DefaultRequestsPerMinute, "Catalog passes per minute")
	flags.Float64("duration-minutes", DefaultDurationMinutes, "How long to run, in minutes")
	flags.String("global-domain", "", "Base URL prefixed to relative template URLs")
	flags.IntP("concurrency", "c", 1, "Maximum requests in flight")
	flags.Duration("timeout", DefaultTimeout, "Per-request timeout (0 disables)")
	flags.String("schedule", string(ScheduleFixedDelay), "Cycle pacing: fixed-delay or fixed-rate")
	flags.Uint64("seed", 0, "Seed for synthetic values (0 picks a random seed)")

	// Output
	flags.Bool("json-output", false, "Emit the final report as JSON")
	flags.Bool("progress", false, "Print a progress line while running")
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", string(LogFormatText), "Log format: text or json")
	flags.String("body-path", "", "gjson path logged from structured response bodies")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (host:port)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.String("tracing-service-name", "", "Service name reported to the collector")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sampling ratio between 0 and 1")
	flags.Bool("tracing-propagate", true, "Inject W3C trace context into requests")
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides copies explicitly set flags onto cfg, overriding values
// from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	if fs.Changed("file") {
		if cfg.CatalogFile, err = fs.GetString("file"); err != nil {
			return err
		}
	}
	if fs.Changed("requests-per-minute") {
		if cfg.RequestsPerMinute, err = fs.GetInt("requests-per-minute"); err != nil {
			return err
		}
	}
	if fs.Changed("duration-minutes") {
		if cfg.DurationMinutes, err = fs.GetFloat64("duration-minutes"); err != nil {
			return err
		}
	}
	if fs.Changed("global-domain") {
		if cfg.Domain, err = fs.GetString("global-domain"); err != nil {
			return err
		}
	}
	if fs.Changed("concurrency") {
		if cfg.Concurrency, err = fs.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if fs.Changed("timeout") {
		if cfg.Timeout, err = fs.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if fs.Changed("schedule") {
		val, err := fs.GetString("schedule")
		if err != nil {
			return err
		}
		cfg.Schedule = Schedule(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("seed") {
		if cfg.Seed, err = fs.GetUint64("seed"); err != nil {
			return err
		}
	}
	if fs.Changed("json-output") {
		if cfg.JSONOutput, err = fs.GetBool("json-output"); err != nil {
			return err
		}
	}
	if fs.Changed("progress") {
		if cfg.Progress, err = fs.GetBool("progress"); err != nil {
			return err
		}
	}
	if fs.Changed("log-level") {
		if cfg.LogLevel, err = fs.GetString("log-level"); err != nil {
			return err
		}
	}
	if fs.Changed("log-format") {
		val, err := fs.GetString("log-format")
		if err != nil {
			return err
		}
		cfg.LogFormat = LogFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("body-path") {
		if cfg.BodyPath, err = fs.GetString("body-path"); err != nil {
			return err
		}
	}
	return applyTracingFlags(&cfg.Tracing, fs)
}

func applyTracingFlags(t *TracingConfig, fs *pflag.FlagSet) error {
	var err error
	if fs.Changed("tracing-endpoint") {
		if t.Endpoint, err = fs.GetString("tracing-endpoint"); err != nil {
			return err
		}
	}
	if fs.Changed("tracing-protocol") {
		if t.Protocol, err = fs.GetString("tracing-protocol"); err != nil {
			return err
		}
	}
	if fs.Changed("tracing-service-name") {
		if t.ServiceName, err = fs.GetString("tracing-service-name"); err != nil {
			return err
		}
	}
	if fs.Changed("tracing-insecure") {
		if t.Insecure, err = fs.GetBool("tracing-insecure"); err != nil {
			return err
		}
	}
	if fs.Changed("tracing-sample-rate") {
		if t.SampleRate, err = fs.GetFloat64("tracing-sample-rate"); err != nil {
			return err
		}
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		t.Propagate = &val
	}
	return nil
}
