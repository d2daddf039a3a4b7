package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feedrebuild/internal/config"
	"feedrebuild/internal/logging"
)

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, "run-1")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "feedrebuild.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller")

	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerHeaderCarriesComponentAndFeed(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf, RunID: "abc"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger := logging.NewComponentLogger(base, "resolve")

	logging.WarnWithContext(logger, "feed folder ambiguous", "feed_unresolved",
		logging.FeedURL("http://a.com/rss"),
		logging.Int("candidate_count", 2),
	)

	out := buf.String()
	for _, want := range []string{"WARN [resolve] http://a.com/rss – feed folder ambiguous", "candidate_count: 2", "event_type: feed_unresolved", "impact: \"feed skipped\""} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
	if strings.Contains(out, "run_id") {
		t.Fatalf("expected run_id hidden from info console output, got %q", out)
	}
}

func TestNewJSONLoggerAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf, RunID: "run-42"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload["run_id"] != "run-42" {
		t.Fatalf("expected run_id, got %v", payload["run_id"])
	}
	if payload["level"] != "info" || payload["msg"] != "json message" || payload["k"] != "v" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := logging.ParseLevel("invalid"); got != slog.LevelInfo {
		t.Fatalf("expected info, got %v", got)
	}
	if got := logging.ParseLevel(" WARN "); got != slog.LevelWarn {
		t.Fatalf("expected warn, got %v", got)
	}
}

func TestNewFromConfigWriterTeesConsoleAndFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	var console bytes.Buffer

	logger, err := logging.NewFromConfigWriter(&cfg, "run-2", &console)
	if err != nil {
		t.Fatalf("NewFromConfigWriter returned error: %v", err)
	}
	logger.Warn("both sinks")

	if !strings.Contains(console.String(), "both sinks") {
		t.Fatalf("expected message on console, got %q", console.String())
	}
	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "feedrebuild.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "both sinks") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}
