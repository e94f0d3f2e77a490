package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("marker read", "kind", "wallet-connect")

			entry := decode(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["kind"] != "wallet-connect" {
				t.Errorf("kind = %v, want wallet-connect", entry["kind"])
			}
		})
	}
}

func TestLogger_LevelFilteringAndSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	defer SetLevel("info")

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("debug should pass after SetLevel(debug)")
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.With("component", "recovery").Info("attempt started")

	entry := decode(t, buf)
	if entry["component"] != "recovery" {
		t.Errorf("component = %v, want recovery", entry["component"])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "text", Output: &buf})

	l.Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("text output = %q, want k=v", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestContext_L(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	ctx := WithLogger(context.Background(), l)
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithFlowID(ctx, "hopm-01")

	L(ctx).Info("resumed")

	entry := decode(t, buf)
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
	if entry["flow_id"] != "hopm-01" {
		t.Errorf("flow_id = %v, want hopm-01", entry["flow_id"])
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should return the default logger")
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("RequestIDFromContext should be empty without a value")
	}
}

func TestSlog_SharesRedaction(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.Slog().Info("refresh", "access_token", "abc123")

	entry := decode(t, buf)
	if entry["access_token"] != redactedValue {
		t.Errorf("access_token = %v, want redacted", entry["access_token"])
	}
}

func TestContextHandler_AddsIDsFromRecordContext(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	ctx := WithRequestID(context.Background(), "req-7")
	ctx = WithFlowID(ctx, "guard-1")
	l.Slog().With("component", "recovery").InfoContext(ctx, "secondary recovery scheduled")

	entry := decode(t, buf)
	if entry["request_id"] != "req-7" {
		t.Errorf("request_id = %v, want req-7", entry["request_id"])
	}
	if entry["flow_id"] != "guard-1" {
		t.Errorf("flow_id = %v, want guard-1", entry["flow_id"])
	}
	if entry["component"] != "recovery" {
		t.Errorf("component = %v, want recovery", entry["component"])
	}

	buf.Reset()
	l.Slog().Info("no context")
	if _, ok := decode(t, buf)["request_id"]; ok {
		t.Error("request_id present without a context value")
	}
}

func TestNewContextHandler_Idempotent(t *testing.T) {
	h := NewContextHandler(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	if got := NewContextHandler(h); got != h {
		t.Error("NewContextHandler should not wrap twice")
	}
}
