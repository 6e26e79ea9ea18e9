package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/logging"
)

func TestLoggerEmitsJSONLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewLoggerTo(&buf, logging.LevelDebug, "test")
	log.Info("scan started", interfaces.F("url", "https://example.com"))

	var entry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component"`
		Fields    map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry.Level != "info" || entry.Msg != "scan started" || entry.Component != "test" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Fields["url"] != "https://example.com" {
		t.Errorf("fields = %v", entry.Fields)
	}
}

func TestLoggerHonorsMinLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewLoggerTo(&buf, logging.LevelWarn, "test")
	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")
	log.Error("also shown")

	lines := strings.Count(strings.TrimSpace(buf.String()), "\n") + 1
	if lines != 2 {
		t.Errorf("lines = %d, want 2:\n%s", lines, buf.String())
	}
	if strings.Contains(buf.String(), "hidden") {
		t.Error("suppressed levels leaked")
	}
}

func TestWithCarriesFieldsAndComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewLoggerTo(&buf, logging.LevelInfo, "parent")
	child := log.With(interfaces.F("job_id", "j1"), interfaces.F("component", "child"))
	child.Info("working")

	var entry struct {
		Component string         `json:"component"`
		Fields    map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Component != "child" {
		t.Errorf("component = %q, want overridden", entry.Component)
	}
	if entry.Fields["job_id"] != "j1" {
		t.Errorf("fields = %v", entry.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want logging.Level
	}{
		{"debug", logging.LevelDebug},
		{"info", logging.LevelInfo},
		{"warn", logging.LevelWarn},
		{"error", logging.LevelError},
		{"garbage", logging.LevelInfo},
	}
	for _, tc := range tests {
		if got := logging.ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
