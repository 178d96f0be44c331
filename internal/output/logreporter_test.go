package output

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/torosent/trafficsim/internal/httpclient"
	"github.com/torosent/trafficsim/internal/response"
)

func newJSONLogger(buf *bytes.Buffer) *log.Logger {
	logger := log.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&log.JSONFormatter{})
	return logger
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogReporterResponse(t *testing.T) {
	var buf bytes.Buffer
	rep := NewLogReporter(newJSONLogger(&buf), "$.user.id")

	rep.RecordResponse(&response.Summary{
		Name:       "get user",
		URL:        "https://api.example.com/users/7",
		Cycle:      2,
		StatusCode: 200,
		Latency:    12 * time.Millisecond,
		Body: response.Body{
			Kind:       response.BodyStructured,
			Structured: map[string]interface{}{"user": map[string]interface{}{"id": 7.0}},
			Raw:        []byte(`{"user":{"id":7}}`),
		},
	})
	rep.RecordResponse(nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected one log line, got %d", len(entries))
	}
	e := entries[0]
	if e["msg"] != "Response for https://api.example.com/users/7: 200" {
		t.Errorf("msg = %v", e["msg"])
	}
	if e["level"] != "info" || e["template"] != "get user" || e["cycle"] != float64(2) {
		t.Errorf("unexpected fields: %v", e)
	}
	if e["body"] != "7" {
		t.Errorf("body = %v, want 7", e["body"])
	}
}

func TestLogReporterDecodeFailure(t *testing.T) {
	var buf bytes.Buffer
	rep := NewLogReporter(newJSONLogger(&buf), "")
	rep.RecordResponse(&response.Summary{
		URL:        "https://api.example.com/x",
		StatusCode: 502,
		DecodeErr:  response.ErrDecode,
	})
	e := decodeLines(t, &buf)[0]
	if e["error"] == nil || e["msg"] != "Response for https://api.example.com/x: 502" {
		t.Errorf("unexpected entry: %v", e)
	}
}

func TestLogReporterWarnings(t *testing.T) {
	var buf bytes.Buffer
	rep := NewLogReporter(newJSONLogger(&buf), "")
	rep.RecordSkip(1, "PATCH /x", &httpclient.RejectError{Template: "PATCH /x", Reason: `unsupported method "PATCH"`})
	rep.RecordFailure(1, "GET /y", &url.Error{Op: "Get", URL: "https://h/y", Err: context.DeadlineExceeded})

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected two log lines, got %d", len(entries))
	}
	for _, e := range entries {
		if e["level"] != "warning" {
			t.Errorf("level = %v, want warning", e["level"])
		}
	}
	if !strings.Contains(entries[0]["msg"].(string), "unsupported method") {
		t.Errorf("skip msg = %v", entries[0]["msg"])
	}
	if entries[1]["error_type"] != "Request timed out" {
		t.Errorf("error_type = %v", entries[1]["error_type"])
	}
}
