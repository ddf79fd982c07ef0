package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		got := parseLogLevel(tc.in)
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestPrettyHandlerFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("server.start", "addr", "127.0.0.1:8080", "db_enabled", false)

	line := buf.String()
	for _, want := range []string{"lvl=[INFO]", "msg=server.start", "addr=127.0.0.1:8080", "db_enabled=false"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("line %q not newline-terminated", line)
	}
}

func TestPrettyHandlerQuotesAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, nil))

	log.WithGroup("http").Info("http.request", "path", "/auth/status", "user_agent", "curl 8.0")

	line := buf.String()
	if !strings.Contains(line, "http.path=/auth/status") {
		t.Fatalf("line %q missing group-prefixed key", line)
	}
	if !strings.Contains(line, `http.user_agent="curl 8.0"`) {
		t.Fatalf("line %q missing quoted value", line)
	}
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info record emitted below min level: %q", out)
	}
	if !strings.Contains(out, "lvl=[WARN]") {
		t.Fatalf("warn record missing: %q", out)
	}
}
