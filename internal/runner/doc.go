// Package runner drives the dispatch loop of a simulation run.
//
// An [Engine] replays a catalog of request templates once per cycle for a
// bounded duration. Each cycle materializes every template with fresh
// synthetic values, sends the batch through a bounded executor, classifies
// every response, and hands the outcome to a [Reporter]. Cycles never overlap.
//
// # Basic Usage
//
//	eng := runner.New(runner.Options{
//		Templates:         templates,
//		RequestsPerMinute: 60,
//		Duration:          2 * time.Minute,
//		Domain:            "https://api.example.com",
//		Concurrency:       4,
//		Reporter:          collector,
//	})
//	res, err := eng.Run(ctx)
//
// # Pacing
//
// The interval between cycles is one minute divided by RequestsPerMinute. A
// whole catalog pass counts as one tick, so the effective request rate is the
// configured rate multiplied by the catalog size.
//
// With [ScheduleFixedDelay] (the default) the engine sleeps one interval after
// every batch, so slow batches stretch the effective period. [ScheduleFixedRate]
// starts cycles on a token bucket instead and absorbs batch time.
//
// # Failures
//
// Nothing a single template does ends the run. Rejected templates are reported
// through [Reporter.RecordSkip], requests that never got a response through
// [Reporter.RecordFailure], and everything else as a response summary.
package runner
