package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"notionbrainz/internal/config"
	"notionbrainz/internal/logging"
	"notionbrainz/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (string, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{Format: format, Level: level, OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "resolver").
		With(logging.String(logging.FieldDatabase, "albums"), logging.String(logging.FieldTitle, "OK Computer")).
		Info("album resolved", logging.String(logging.FieldMBID, "abc"), logging.String(logging.FieldPageID, "p1"))
	return path, func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		return string(data)
	}
}

func TestConsoleHandlerHeaderAndFields(t *testing.T) {
	_, read := newFileLogger(t, "console", "info")
	content := read()
	for _, fragment := range []string{"INFO", "[resolver]", "Albums · OK Computer – album resolved", "    - mbid: abc"} {
		if !strings.Contains(content, fragment) {
			t.Fatalf("expected %q in %q", fragment, content)
		}
	}
	if strings.Contains(content, "page_id") {
		t.Fatalf("expected page_id hidden at info level, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestJSONHandlerShape(t *testing.T) {
	_, read := newFileLogger(t, "json", "info")
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "info" || entry["msg"] != "album resolved" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key: %v", entry)
	}
	if entry["component"] != "resolver" || entry["mbid"] != "abc" {
		t.Fatalf("missing attributes: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logging.WarnWithContext(logger, "cover art missing", "cover_art_missing")
	data, _ := os.ReadFile(path)
	content := string(data)
	if strings.Contains(content, "hidden") {
		t.Fatalf("info line should be filtered: %q", content)
	}
	for _, fragment := range []string{"cover art missing", "event_type: cover_art_missing", "impact:", "error_hint:"} {
		if !strings.Contains(content, fragment) {
			t.Fatalf("expected %q in %q", fragment, content)
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Logging.Format = "json"
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("hello file")
	data, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Fatalf("log file missing entry: %q", data)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-7")
	ctx = services.WithKind(ctx, "songs")
	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 context fields, got %v", fields)
	}
	if logging.WithContext(ctx, nil) == nil {
		t.Fatal("expected logger")
	}
}
