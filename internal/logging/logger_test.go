package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clockdrift/internal/config"
	"clockdrift/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("loaded picks", logging.Int("count", 12))

	content := readLog(t, filepath.Join(cfg.Paths.LogDir, "clockdrift.log"))
	if !strings.Contains(content, "loaded picks") || !strings.Contains(content, "count=12") {
		t.Fatalf("unexpected log content: %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")
	logger.Debug("hidden debug message")

	content := readLog(t, logPath)
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if strings.Contains(content, "hidden debug message") {
		t.Fatalf("expected debug message to be filtered, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller")
	if content := readLog(t, logPath); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersComponentAndPair(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "component.log")
	base, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithPair(context.Background(), "AU.ARMA->AU")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "analysis"))
	logger.Info("broadcast complete", logging.String("note", "two words"))

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO analysis [AU.ARMA->AU]: broadcast complete") {
		t.Fatalf("expected component and pair prefix, got %q", content)
	}
	if !strings.Contains(content, `note="two words"`) {
		t.Fatalf("expected quoted value, got %q", content)
	}
}

func TestJSONLoggerFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "event skipped", "reference_channel_missing", logging.String(logging.FieldEventID, "ev1"))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["level"] != "warn" || payload["msg"] != "event skipped" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload[logging.FieldEventType] != "reference_channel_missing" {
		t.Fatalf("expected event_type, got %v", payload[logging.FieldEventType])
	}
	for _, key := range []string{logging.FieldErrorHint, logging.FieldImpact, "ts"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected %s in payload: %v", key, payload)
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopAndErrorAttr(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("ignored", logging.Error(errors.New("boom")))
	if attr := logging.Error(nil); attr.Value.String() != "<nil>" {
		t.Fatalf("unexpected nil error attr: %v", attr)
	}
}

func TestWarnWithContextKeepsCallerHint(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "pair skipped", "pair_skipped", logging.String(logging.FieldErrorHint, "widen the date window"))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload[logging.FieldErrorHint] != "widen the date window" {
		t.Fatalf("expected caller hint to win, got %v", payload[logging.FieldErrorHint])
	}
	ts, _ := payload["ts"].(string)
	if len(ts) != len("2006-01-02T15:04:05.000Z") || !strings.HasSuffix(ts, "Z") {
		t.Fatalf("unexpected ts format: %q", ts)
	}
}
