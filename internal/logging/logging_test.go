package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" debug ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterFormats(t *testing.T) {
	t.Parallel()

	var text bytes.Buffer
	NewWithWriter(&text, "warn", "text").Info("hidden")
	NewWithWriter(&text, "warn", "text").Warn("fallback", "url", "https://example.org")
	if strings.Contains(text.String(), "hidden") {
		t.Fatalf("info must be filtered at warn level: %q", text.String())
	}
	if !strings.Contains(text.String(), "level=WARN") {
		t.Fatalf("unexpected text output: %q", text.String())
	}

	var js bytes.Buffer
	NewWithWriter(&js, "info", "json").Info("output produced", "ssl_mode", "verified")
	var entry map[string]any
	if err := json.Unmarshal(js.Bytes(), &entry); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if entry["msg"] != "output produced" || entry["ssl_mode"] != "verified" {
		t.Fatalf("unexpected json entry: %v", entry)
	}
}
