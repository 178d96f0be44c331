package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "json", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.WithField("cycle", 3).Debug("dispatching")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if entry["msg"] != "dispatching" || entry["cycle"] != float64(3) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewTextDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("", "", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %s, want info", logger.GetLevel())
	}
	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("loud", "text", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
