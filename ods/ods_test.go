package ods

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSilentByDefault(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("default logger should be disabled")
	}
	ODS("nothing %d", 1)
}

func TestODSWritesDebug(t *testing.T) {
	var b bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	ODS("render: %dms", 12)
	if !strings.Contains(b.String(), "render: 12ms") {
		t.Errorf("output = %q, want it to contain %q", b.String(), "render: 12ms")
	}
}

func TestODSSkippedAboveDebug(t *testing.T) {
	var b bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelInfo})))
	defer SetLogger(nil)

	ODS("hidden")
	Error("shown %s", "here")
	if strings.Contains(b.String(), "hidden") {
		t.Errorf("debug message leaked: %q", b.String())
	}
	if !strings.Contains(b.String(), "shown here") {
		t.Errorf("error message missing: %q", b.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
