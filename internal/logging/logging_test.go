package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(
		WithFormat(FormatJSON),
		WithOutput(&buf),
		WithFields(map[string]any{"run_id": "r1"}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("stage done", zap.String("stage", "mean"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1:\n%s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for key, want := range map[string]string{"msg": "stage done", "stage": "mean", "run_id": "r1", "level": "info"} {
		if entry[key] != want {
			t.Fatalf("%s = %v, want %q", key, entry[key], want)
		}
	}
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(WithLevel("debug"), WithOutput(&buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("skipped malformed row")
	if !strings.Contains(buf.String(), "DEBUG") {
		t.Fatalf("missing debug entry: %q", buf.String())
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(WithFormat("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := New(WithLevel("loud")); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Fatal("run ids repeat")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("invalid uuid %q: %v", a, err)
	}
}
