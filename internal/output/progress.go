package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/torosent/trafficsim/internal/metrics"
)

// ProgressReporter rewrites a single status line while a run is active.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
}

func NewProgressReporter(collector *metrics.Collector, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return
	}
	go p.run()
}

// Stop halts progress updates and ends the status line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
		fmt.Fprintln(p.writer)
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, progressLine(p.collector.Stats(time.Since(p.start))))
		case <-p.done:
			return
		}
	}
}

func progressLine(stats metrics.Stats) string {
	failures := stats.HTTPErrors + stats.DecodeFailures + stats.TransportFailures
	line := fmt.Sprintf("\rResponses: %d | Successes: %d | Failures: %d | Skipped: %d | RPS: %.1f",
		stats.Responses, stats.Successes, failures, stats.Skipped, stats.ResponsesPerSec)
	if stats.Responses > 0 {
		line += fmt.Sprintf(" | P99: %.1fms", stats.P99LatencyMs)
	}
	return line
}
