// Command trafficsim replays a catalog of HTTP request templates against their
// targets with synthetic field values, at a fixed pace, for a bounded time.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"

	"github.com/torosent/trafficsim/internal/catalog"
	"github.com/torosent/trafficsim/internal/config"
	"github.com/torosent/trafficsim/internal/httpclient"
	"github.com/torosent/trafficsim/internal/logging"
	"github.com/torosent/trafficsim/internal/metrics"
	"github.com/torosent/trafficsim/internal/output"
	"github.com/torosent/trafficsim/internal/runner"
	"github.com/torosent/trafficsim/internal/synth"
	"github.com/torosent/trafficsim/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.NewLoader().Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, string(cfg.LogFormat), stderr)
	if err != nil {
		return err
	}
	runID := ulid.Make().String()
	entry := logger.WithField("run_id", runID)
	for _, w := range cfg.Warnings() {
		entry.Warn(w)
	}

	templates, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	for _, issue := range catalog.Lint(templates) {
		entry.Warn(issue)
	}

	provider, err := tracing.Init(ctx, cfg.Tracing, tracing.RunAttributes(runID, string(cfg.Schedule), len(templates))...)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			entry.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	collector := metrics.NewCollector()
	eng := runner.New(runner.Options{
		Templates:         templates,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Duration:          cfg.Duration(),
		Domain:            cfg.Domain,
		Concurrency:       cfg.Concurrency,
		Client:            httpclient.NewClient(cfg.Timeout),
		Generator:         synth.New(cfg.Seed),
		Reporter:          runner.Reporters{collector, output.NewLogReporter(entry, cfg.BodyPath)},
		RequestTimeout:    cfg.Timeout,
		Schedule:          runner.Schedule(cfg.Schedule),
		Tracer:            provider.Tracer(),
		Propagate:         provider.ShouldPropagate(),
	})

	entry.WithFields(log.Fields{
		"templates":           len(templates),
		"requests_per_minute": cfg.RequestsPerMinute,
		"effective_rpm":       cfg.RequestsPerMinute * len(templates),
		"duration":            cfg.Duration().String(),
		"concurrency":         cfg.Concurrency,
		"schedule":            cfg.Schedule,
	}).Info("starting simulation")

	var progress *output.ProgressReporter
	if cfg.Progress {
		progress = output.NewProgressReporter(collector, progressInterval, stderr)
		progress.Start()
	}

	collector.Start()
	result, err := eng.Run(ctx)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return err
	}

	report := output.NewReport(runID, result, collector.Stats(result.Duration))
	entry.WithFields(log.Fields{
		"cycles":    result.Cycles,
		"responses": result.Responses,
		"skipped":   result.Skipped,
	}).Info("simulation completed")

	if cfg.JSONOutput {
		return output.PrintJSONReport(stdout, report)
	}
	output.PrintReport(stdout, report)
	return nil
}
