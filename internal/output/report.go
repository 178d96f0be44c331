package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/torosent/trafficsim/internal/metrics"
	"github.com/torosent/trafficsim/internal/runner"
)

// Report is the end-of-run summary: engine counters plus aggregated stats.
type Report struct {
	RunID     string `json:"run_id,omitempty"`
	Cycles    int64  `json:"cycles"`
	Submitted int64  `json:"submitted"`
	metrics.Stats
}

func NewReport(runID string, res runner.Result, stats metrics.Stats) Report {
	return Report{
		RunID:     runID,
		Cycles:    res.Cycles,
		Submitted: res.Submitted,
		Stats:     stats,
	}
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, r Report) {
	fmt.Fprintln(w, "\n--- Simulation Results ---")
	if r.RunID != "" {
		fmt.Fprintf(w, "Run:               %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Cycles:            %d\n", r.Cycles)
	fmt.Fprintf(w, "Submitted:         %d\n", r.Submitted)
	fmt.Fprintf(w, "Responses:         %d\n", r.Responses)
	fmt.Fprintf(w, "Successful:        %d\n", r.Successes)
	fmt.Fprintf(w, "HTTP errors:       %d\n", r.HTTPErrors)
	fmt.Fprintf(w, "Decode failures:   %d\n", r.DecodeFailures)
	fmt.Fprintf(w, "Transport failed:  %d\n", r.TransportFailures)
	fmt.Fprintf(w, "Skipped:           %d\n", r.Skipped)
	fmt.Fprintf(w, "Duration:          %s\n", r.Duration)
	fmt.Fprintf(w, "Responses/sec:     %.2f\n", r.ResponsesPerSec)

	if r.Responses > 0 {
		fmt.Fprintln(w, "\nLatency:")
		fmt.Fprintf(w, "  Min:             %s\n", r.MinLatency)
		fmt.Fprintf(w, "  Max:             %s\n", r.MaxLatency)
		fmt.Fprintf(w, "  Mean:            %s\n", r.MeanLatency)
		fmt.Fprintf(w, "  P50:             %s\n", r.P50Latency)
		fmt.Fprintf(w, "  P90:             %s\n", r.P90Latency)
		fmt.Fprintf(w, "  P99:             %s\n", r.P99Latency)
	}

	writeCounts(w, "Status Codes:", r.StatusCodes, nil)
	writeCounts(w, "Skip Reasons:", r.SkipReasons, nil)
	writeCounts(w, "Transport Errors:", r.Errors, metrics.FriendlyErrorName)

	if len(r.Templates) > 0 {
		fmt.Fprintln(w, "\nTemplate Breakdown:")
		names := make([]string, 0, len(r.Templates))
		for name := range r.Templates {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t := r.Templates[name]
			fmt.Fprintf(w, "  - %s: responses=%d, failures=%d, skipped=%d\n", name, t.Responses, t.Failures, t.Skipped)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeCounts(w io.Writer, title string, counts map[string]int, label func(string) string) {
	rows := metrics.SortedCounts(counts)
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, row := range rows {
		name := row.Label
		if label != nil {
			name = label(name)
		}
		fmt.Fprintf(w, "  %s: %d\n", name, row.Count)
	}
}
