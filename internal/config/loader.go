package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file.
// Flags that were set explicitly win over file settings.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	cfg := Defaults()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.CatalogFile = strings.TrimSpace(cfg.CatalogFile)
	cfg.Domain = strings.TrimSpace(cfg.Domain)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	return cfg, nil
}

// applyConfigSettings copies config file settings onto cfg. Each key accepts
// the underscore, dash and squashed spellings.
func applyConfigSettings(cfg *Config, raw map[string]interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	r := &settingReader{s: settings(raw)}

	r.str(&cfg.CatalogFile, "file", "catalog")
	r.integer(&cfg.RequestsPerMinute, "requests_per_minute", "requests-per-minute", "requestsperminute")
	r.float(&cfg.DurationMinutes, "duration_minutes", "duration-minutes", "durationminutes")
	r.str(&cfg.Domain, "global_domain", "global-domain", "globaldomain", "domain")
	r.integer(&cfg.Concurrency, "concurrency")
	r.duration(&cfg.Timeout, "timeout")

	var schedule, format string
	if r.str(&schedule, "schedule") {
		cfg.Schedule = Schedule(strings.ToLower(strings.TrimSpace(schedule)))
	}
	var seed int
	if r.integer(&seed, "seed") {
		if seed < 0 {
			r.fail("seed", errors.New("must be >= 0"))
		}
		cfg.Seed = uint64(seed)
	}
	r.boolean(&cfg.JSONOutput, "json_output", "json-output", "jsonoutput")
	r.boolean(&cfg.Progress, "progress")
	r.str(&cfg.LogLevel, "log_level", "log-level", "loglevel")
	if r.str(&format, "log_format", "log-format", "logformat") {
		cfg.LogFormat = LogFormat(strings.ToLower(strings.TrimSpace(format)))
	}
	r.str(&cfg.BodyPath, "body_path", "body-path", "bodypath")
	if r.err != nil {
		return r.err
	}

	tracing, ok, err := r.s.section("tracing")
	if err != nil {
		return err
	}
	if ok {
		if err := applyTracingSettings(&cfg.Tracing, tracing); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}
	return nil
}

func applyTracingSettings(t *TracingConfig, s settings) error {
	r := &settingReader{s: s}
	r.str(&t.Endpoint, "endpoint")
	r.str(&t.Protocol, "protocol")
	r.str(&t.ServiceName, "service_name", "service-name", "servicename")
	r.boolean(&t.Insecure, "insecure")
	r.float(&t.SampleRate, "sample_rate", "sample-rate", "samplerate")
	var propagate bool
	if r.boolean(&propagate, "propagate") {
		t.Propagate = &propagate
	}
	return r.err
}
