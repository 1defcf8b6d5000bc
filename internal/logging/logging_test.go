package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("analysis complete", "run_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["msg"] != "analysis complete" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["run_id"] != "abc" {
		t.Errorf("unexpected run_id: %v", entry["run_id"])
	}
	if entry["service"] != "hospital-network" {
		t.Errorf("unexpected service: %v", entry["service"])
	}
}

func TestNew_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "text")

	logger.Debug("checking stock", "hospital_id", "H1")

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "hospital_id=H1") {
		t.Errorf("unexpected text output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("warn").String() != "WARN" {
		t.Error("expected WARN")
	}
	if parseLevel("bogus").String() != "INFO" {
		t.Error("expected INFO fallback")
	}
}
