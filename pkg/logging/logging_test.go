package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel(slog.LevelInfo)
	})
	return &buf
}

func TestCompactHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace})

	r := slog.NewRecord(time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC), slog.LevelWarn, "chunk skipped", 0)
	r.AddAttrs(
		slog.String("key", "#X declare"),
		slog.Int("line", 12),
		slog.Float64("x", 1.5),
		slog.Int64("durationMs", 7),
		slog.String("requestID", "0123456789abcdef"),
	)
	require.NoError(t, h.Handle(context.Background(), r))

	assert.Equal(t,
		`[WARN]  13:04:05 chunk skipped | key="#X declare" line=12 x=1.5 duration=7ms req=01234567`+"\n",
		buf.String())
}

func TestCompactHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, nil)).With("file", "main.pd").WithGroup("patch").With("id", 2)

	logger.Info("hydrated", "nodes", 4)

	assert.Contains(t, buf.String(), "hydrated | file=main.pd patch.id=2 patch.nodes=4")
}

func TestCompactHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	logger.Log(context.Background(), LevelTrace, "trace")
	logger.Debug("debug")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[TRACE] "))
	assert.True(t, strings.HasPrefix(lines[1], "[DEBUG] "))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
		ok   bool
	}{
		{"trace", LevelTrace, true},
		{"DEBUG", slog.LevelDebug, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LevelForVerbosity(0))
	assert.Equal(t, slog.LevelDebug, LevelForVerbosity(1))
	assert.Equal(t, LevelTrace, LevelForVerbosity(3))
}

func TestPackageLogger(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)

	Trace("hidden")
	Debug("shown", "patches", 2)
	ctx := WithRequestID(context.Background(), "abcdefghijkl")
	InfoContext(ctx, "with request")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown | patches=2")
	assert.Contains(t, out, "with request | req=abcdefgh")
}

func TestRequestIDMiddleware(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	t.Run("generated id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patches", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
		assert.Contains(t, buf.String(), "request rejected")
		assert.Contains(t, buf.String(), "status=418 bytes=15")
	})

	t.Run("propagated id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/patches", nil)
		req.Header.Set(RequestIDHeader, "fixed-id")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "fixed-id", seen)
		assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))
	})
}
