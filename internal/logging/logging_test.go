package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestComponentAddsAttribute(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := Component(NewWithWriter(&buf, "info"), "pipeline")
	logger.Info("stage started", "stage", "research")
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=pipeline") || !strings.Contains(out, "stage=research") {
		t.Fatalf("unexpected output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered at info level: %s", out)
	}
}
