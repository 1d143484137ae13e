package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentCache, Output: &buf})

	l.Info("Contracts loaded", FieldRows, 3)
	l.WithComponent(ComponentExport).Warn("Export slow")

	out := buf.String()
	if !strings.Contains(out, "component=cache") || !strings.Contains(out, "rows=3") {
		t.Errorf("missing fields in %q", out)
	}
	if !strings.Contains(out, "component=export") {
		t.Errorf("WithComponent not applied: %q", out)
	}
	if strings.Count(out, "component=") != 2 {
		t.Errorf("component should appear once per line: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: ParseLevel("warn"), Output: &buf})
	l.Info("hidden")
	l.Error("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf, Component: ComponentHTTP})

	handler := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req_abc" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "handled")
		}),
	))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req_abc") {
		t.Errorf("request id missing: %q", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected default logger %+v", l)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/export/pdf?from=2025-01-01", nil)

	sl.LogHTTPStart(context.Background(), r, "req_1", "10.0.0.1")
	sl.LogHTTPEnd(context.Background(), r, "req_1", http.StatusInternalServerError, 12*time.Millisecond, "10.0.0.1")
	sl.LogError(context.Background(), "Export failed", errors.New("boom"), ComponentExport, OpExport, nil)

	out := buf.String()
	for _, want := range []string{"HTTP request started", "level=ERROR", "status_code=500", "duration_ms=12", "error=boom", "operation=export"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
