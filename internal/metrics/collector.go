package metrics

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/torosent/trafficsim/internal/httpclient"
	"github.com/torosent/trafficsim/internal/response"
)

// Collector records per-response metrics in a thread-safe manner.
type Collector struct {
	mu                sync.Mutex
	hist              *hdrhistogram.Histogram
	responses         int64
	successes         int64
	decodeFailures    int64
	transportFailures int64
	skipped           int64
	minLatency        time.Duration
	maxLatency        time.Duration
	sumLatency        time.Duration
	statusCodes       map[string]int64
	skipReasons       map[string]int64
	errorsByType      map[string]int64
	templates         map[string]*templateCounters
	start             time.Time
}

type templateCounters struct {
	responses int64
	failures  int64
	skipped   int64
}

// Stats represents aggregated metrics.
type Stats struct {
	Responses         int64         `json:"responses"`
	Successes         int64         `json:"successes"`
	HTTPErrors        int64         `json:"http_errors"`
	DecodeFailures    int64         `json:"decode_failures"`
	TransportFailures int64         `json:"transport_failures"`
	Skipped           int64         `json:"skipped"`
	MinLatency        time.Duration `json:"-"`
	MaxLatency        time.Duration `json:"-"`
	MeanLatency       time.Duration `json:"-"`
	P50Latency        time.Duration `json:"-"`
	P90Latency        time.Duration `json:"-"`
	P99Latency        time.Duration `json:"-"`
	Duration          time.Duration `json:"-"`
	ResponsesPerSec   float64       `json:"responses_per_sec"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`
	DurationMs    float64 `json:"duration_ms"`

	StatusCodes map[string]int           `json:"status_codes,omitempty"`
	SkipReasons map[string]int           `json:"skip_reasons,omitempty"`
	Errors      map[string]int           `json:"errors,omitempty"`
	Templates   map[string]TemplateStats `json:"templates,omitempty"`
}

// TemplateStats is the per-template breakdown.
type TemplateStats struct {
	Responses int64 `json:"responses"`
	Failures  int64 `json:"failures"`
	Skipped   int64 `json:"skipped"`
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:         h,
		statusCodes:  make(map[string]int64),
		skipReasons:  make(map[string]int64),
		errorsByType: make(map[string]int64),
		templates:    make(map[string]*templateCounters),
		start:        time.Now(),
	}
}

// Start marks the beginning of the run for rate calculations.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// Elapsed returns the time since Start.
func (c *Collector) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.start)
}

// RecordResponse records one classified response.
func (c *Collector) RecordResponse(summary *response.Summary) {
	if summary == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recordLatency(summary.Latency)
	c.responses++
	c.statusCodes[strconv.Itoa(summary.StatusCode)]++
	tc := c.template(summary.Name)
	tc.responses++

	switch {
	case summary.DecodeErr != nil:
		c.decodeFailures++
		tc.failures++
	case summary.StatusCode >= 400:
		tc.failures++
	default:
		c.successes++
	}
}

// RecordSkip records a template skipped for one cycle.
func (c *Collector) RecordSkip(_ int, name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.skipped++
	c.template(name).skipped++
	c.skipReasons[skipReason(err)]++
}

// RecordFailure records a request that produced no response.
func (c *Collector) RecordFailure(_ int, name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transportFailures++
	c.template(name).failures++
	c.errorsByType[ErrorType(err)]++
}

func (c *Collector) recordLatency(latency time.Duration) {
	if latency > 0 {
		us := latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}
	c.sumLatency += latency

	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}
}

func (c *Collector) template(name string) *templateCounters {
	tc, ok := c.templates[name]
	if !ok {
		tc = &templateCounters{}
		c.templates[name] = tc
	}
	return tc
}

func skipReason(err error) string {
	var rejectErr *httpclient.RejectError
	if errors.As(err, &rejectErr) {
		return rejectErr.Reason
	}
	if err == nil {
		return "unknown"
	}
	return err.Error()
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Responses:         c.responses,
		Successes:         c.successes,
		HTTPErrors:        c.responses - c.successes - c.decodeFailures,
		DecodeFailures:    c.decodeFailures,
		TransportFailures: c.transportFailures,
		Skipped:           c.skipped,
		MinLatency:        c.minLatency,
		MaxLatency:        c.maxLatency,
	}

	if c.responses > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / c.responses)
	}

	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinLatencyMs = float64(stats.MinLatency) / float64(time.Millisecond)
	stats.MaxLatencyMs = float64(stats.MaxLatency) / float64(time.Millisecond)
	stats.MeanLatencyMs = float64(stats.MeanLatency) / float64(time.Millisecond)
	stats.P50LatencyMs = float64(stats.P50Latency) / float64(time.Millisecond)
	stats.P90LatencyMs = float64(stats.P90Latency) / float64(time.Millisecond)
	stats.P99LatencyMs = float64(stats.P99Latency) / float64(time.Millisecond)

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && c.responses > 0 {
		stats.ResponsesPerSec = float64(c.responses) / elapsed.Seconds()
	}

	stats.StatusCodes = copyCounts(c.statusCodes)
	stats.SkipReasons = copyCounts(c.skipReasons)
	stats.Errors = copyCounts(c.errorsByType)

	if len(c.templates) > 0 {
		stats.Templates = make(map[string]TemplateStats, len(c.templates))
		for name, tc := range c.templates {
			stats.Templates[name] = TemplateStats{
				Responses: tc.responses,
				Failures:  tc.failures,
				Skipped:   tc.skipped,
			}
		}
	}

	return stats
}

func copyCounts(in map[string]int64) map[string]int {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = int(v)
	}
	return out
}
