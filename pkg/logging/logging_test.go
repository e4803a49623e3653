package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbose int
		quiet   bool
		want    slog.Level
	}{
		{0, false, slog.LevelWarn},
		{1, false, slog.LevelInfo},
		{2, false, slog.LevelDebug},
		{5, false, slog.LevelDebug},
		{2, true, slog.LevelError},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.verbose, tt.quiet); got != tt.want {
			t.Errorf("LevelFor(%d, %v) = %v, want %v", tt.verbose, tt.quiet, got, tt.want)
		}
	}
}

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With("component", "build").Info("decoded rows",
		"kind", "pipe",
		"count", 3,
		"source", "my pipes.csv",
		"error", errors.New("boom"),
	)

	line := buf.String()
	if !strings.HasPrefix(line, "[INFO]  ") {
		t.Errorf("Expected [INFO] prefix, got %q", line)
	}
	for _, want := range []string{
		"decoded rows | component=build kind=pipe count=3",
		`source="my pipes.csv"`,
		`error="boom"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestCompactHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Info record written at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[WARN]  ") {
		t.Errorf("Expected warn record, got %q", buf.String())
	}
}

func TestConfigureAndNew(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: slog.LevelInfo, Writer: &buf})
	defer Configure(Options{Level: slog.LevelWarn})

	New("csv").Info("read file", "rows", 2)
	Debug("not shown")

	out := buf.String()
	if !strings.Contains(out, "component=csv rows=2") {
		t.Errorf("Expected component attribute, got %q", out)
	}
	if strings.Contains(out, "not shown") {
		t.Errorf("Debug record written at info level: %q", out)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: slog.LevelInfo, Writer: &buf})
	defer Configure(Options{Level: slog.LevelWarn})

	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/case.m", nil)
	req.Header.Set("X-Request-ID", "fixed-request-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "fixed-request-id" {
		t.Errorf("Expected request ID in context, got %q", seen)
	}
	if rec.Header().Get("X-Request-ID") != "fixed-request-id" {
		t.Errorf("Expected request ID header, got %q", rec.Header().Get("X-Request-ID"))
	}
	if !strings.Contains(buf.String(), "request failed") || !strings.Contains(buf.String(), "status=418") {
		t.Errorf("Expected failed request log, got %q", buf.String())
	}
	if GetRequestID(context.Background()) != "" {
		t.Error("Expected empty request ID on bare context")
	}
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: slog.LevelInfo, Writer: &buf})
	defer Configure(Options{Level: slog.LevelWarn})

	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
		w.WriteHeader(http.StatusInternalServerError) // ignored after the body
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/case", nil))

	if len(rec.Header().Get(RequestIDHeader)) != 36 {
		t.Errorf("Expected generated uuid request ID, got %q", rec.Header().Get(RequestIDHeader))
	}
	out := buf.String()
	if !strings.Contains(out, "request completed") || !strings.Contains(out, "bytes=5") {
		t.Errorf("Expected completed request with body size, got %q", out)
	}
}

func TestCompactHandlerGroupsAndIDs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil))

	log.With("runID", "0123456789abcdef", "durationMs", int64(4)).WithGroup("http").Info("served",
		"status", 200,
		slog.Group("body", "bytes", 12),
		"empty", "",
	)

	line := buf.String()
	for _, want := range []string{
		"served | run=01234567 duration=4ms http.status=200 http.body.bytes=12",
		`http.empty=""`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}
