package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/torosent/trafficsim/internal/metrics"
	"github.com/torosent/trafficsim/internal/response"
)

func TestProgressReporterStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewProgressReporter(metrics.NewCollector(), 100*time.Millisecond, &buf)
	reporter.Stop()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestProgressReporterFormatting(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()
	collector.RecordResponse(&response.Summary{Name: "a", StatusCode: 200, Latency: 50 * time.Millisecond})
	collector.RecordResponse(&response.Summary{Name: "a", StatusCode: 500, Latency: 10 * time.Millisecond})

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 20*time.Millisecond, &buf)
	reporter.Start()
	reporter.Start()
	time.Sleep(80 * time.Millisecond)
	reporter.Stop()

	out := buf.String()
	if !strings.Contains(out, "Responses: 2") || !strings.Contains(out, "Failures: 1") {
		t.Errorf("unexpected progress output: %q", out)
	}
}

func TestProgressLineOmitsLatencyWithoutResponses(t *testing.T) {
	line := progressLine(metrics.Stats{Skipped: 3})
	if strings.Contains(line, "P99") || !strings.Contains(line, "Skipped: 3") {
		t.Errorf("unexpected line: %q", line)
	}
}
