package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: INFO, Output: &buf, Service: "bookings"})

	log.Info("hello", "station_id", "abc")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record[SERVICE] != "bookings" {
		t.Errorf("expected service attribute, got %v", record[SERVICE])
	}
	if record["station_id"] != "abc" {
		t.Errorf("expected station_id attribute, got %v", record["station_id"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: WARN, Output: &buf})

	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn record should be written: %s", out)
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: TEXT, Output: &buf})

	log.Info("plain")

	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("expected text handler output, got %q", buf.String())
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf}).With("request_id", "r-1")

	log.Info("child")

	if !strings.Contains(buf.String(), `"request_id":"r-1"`) {
		t.Errorf("expected request_id on child logger, got %q", buf.String())
	}
}
