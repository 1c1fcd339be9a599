package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestErrorfAddsErrorAttribute(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLoggerWithWriter(&buf)

	l.Errorf(errors.New("boom"), "failed to save product %s", "p-1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if entry["msg"] != "failed to save product p-1" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["error"] != "boom" {
		t.Fatalf("unexpected error attr: %v", entry["error"])
	}
	if entry["level"] != "ERROR" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLoggerWithWriter(&buf)

	l.Debugf("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug must be filtered at info level")
	}

	if !l.SetLevel("DEBUG") {
		t.Fatalf("debug level must be accepted")
	}
	l.Debugf("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug must be written after SetLevel")
	}

	if l.SetLevel("verbose") {
		t.Fatalf("unknown level must be rejected")
	}
}
