package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestShared(t *testing.T) {
	t.Run("NewLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("NewLogger Defaults To Stderr", func(t *testing.T) {
		if logger := NewLogger(nil); logger == nil {
			t.Fatal("expected logger instance")
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("suppressed")

		if strings.Contains(buf.String(), "suppressed") {
			t.Error("info message should be suppressed at error level")
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == "" || a == b {
			t.Errorf("expected unique non-empty IDs, got %q and %q", a, b)
		}
	})

	t.Run("GenerateState", func(t *testing.T) {
		a, err := GenerateState()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		b, _ := GenerateState()

		if a == "" || a == b {
			t.Errorf("expected unique non-empty state values, got %q and %q", a, b)
		}
		if strings.ContainsAny(a, "+/=") {
			t.Errorf("state should be URL-safe, got %q", a)
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		data := map[string]int{"n": 1}

		compact, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(string(compact), "\n") {
			t.Error("compact output should not contain newlines")
		}

		pretty, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(pretty), "  ") {
			t.Error("pretty output should be indented")
		}
	})
}
