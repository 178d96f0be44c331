package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/torosent/trafficsim/internal/metrics"
	"github.com/torosent/trafficsim/internal/runner"
)

func sampleReport() Report {
	return NewReport("01HZXSAMPLE", runner.Result{Cycles: 4, Submitted: 8}, metrics.Stats{
		Responses:         7,
		Successes:         6,
		HTTPErrors:        1,
		TransportFailures: 1,
		Skipped:           4,
		Duration:          4 * time.Second,
		MinLatency:        2 * time.Millisecond,
		StatusCodes:       map[string]int{"200": 6, "503": 1},
		SkipReasons:       map[string]int{`unsupported method "PATCH"`: 4},
		Errors:            map[string]int{"*url.Error": 1},
		Templates: map[string]metrics.TemplateStats{
			"GET /users/:id": {Responses: 4},
			"POST /orders":   {Responses: 3, Failures: 2},
		},
	})
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleReport())

	out := buf.String()
	for _, want := range []string{
		"Run:               01HZXSAMPLE",
		"Cycles:            4",
		"Responses:         7",
		"Skipped:           4",
		"200: 6",
		`unsupported method "PATCH": 4`,
		"Request URL error: 1",
		"- POST /orders: responses=3, failures=2, skipped=0",
		"Latency:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReportWithoutResponses(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, NewReport("", runner.Result{}, metrics.Stats{}))
	out := buf.String()
	if strings.Contains(out, "Latency:") || strings.Contains(out, "Run:") {
		t.Errorf("unexpected sections in empty report:\n%s", out)
	}
}

func TestPrintJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, sampleReport()); err != nil {
		t.Fatalf("PrintJSONReport() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["run_id"] != "01HZXSAMPLE" || decoded["cycles"] != float64(4) || decoded["responses"] != float64(7) {
		t.Errorf("unexpected JSON report: %v", decoded)
	}
	if _, ok := decoded["templates"]; !ok {
		t.Errorf("expected templates in JSON report")
	}
}
