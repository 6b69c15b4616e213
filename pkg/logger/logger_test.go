package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	Init(cfg)
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() { Init(Config{}) })
	return buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, Config{Level: "warn"})

	Info("hidden")
	Debug("hidden too")
	Warn("shown")
	Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown")
	assert.Contains(t, out, "[ERROR] also shown")
}

func TestJSONFormat(t *testing.T) {
	buf := captureOutput(t, Config{Level: "debug", Format: "json"})

	WithFields(map[string]interface{}{"protocol": "http", "path": "/health"}).Info("ok")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "ok", entry.Message)
	assert.Equal(t, "http", entry.Protocol)
	assert.Equal(t, "/health", entry.Fields["path"])
}

func TestWithErrorDoesNotMutateParent(t *testing.T) {
	buf := captureOutput(t, Config{Level: "info"})

	base := WithFields(map[string]interface{}{"component": "x"})
	base.WithError(errors.New("boom")).Warn("failed")
	base.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "boom")
	assert.NotContains(t, lines[1], "boom")
}

func TestDegraded(t *testing.T) {
	buf := captureOutput(t, Config{})

	Degraded("users", errors.New("connection refused"))

	out := buf.String()
	assert.Contains(t, out, "[WARN] fetch users failed")
	assert.Contains(t, out, "connection refused")
}

func TestFatalExits(t *testing.T) {
	captureOutput(t, Config{})
	code := 0
	exitFunc = func(c int) { code = c }
	defer func() { exitFunc = osExit }()

	Fatal("bye")
	assert.Equal(t, 1, code)
}

func TestRequestID(t *testing.T) {
	buf := captureOutput(t, Config{})

	ctx := ContextWithRequestID(context.Background(), "req-42")
	WithRequestID(ctx).Info("traced")
	WithRequestID(context.Background()).Info("untraced")

	out := buf.String()
	assert.Contains(t, out, "req-42")
	assert.Contains(t, out, "untraced")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelDebug, ParseLevel(" debug "))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestFieldLoggerWithFieldsMerges(t *testing.T) {
	buf := captureOutput(t, Config{Level: "info", Format: "json"})

	ctx := ContextWithRequestID(context.Background(), "req-9")
	WithRequestID(ctx).WithFields(map[string]interface{}{"path": "/api/v1/users"}).Warn("slow")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "req-9", entry.Fields["request_id"])
	assert.Equal(t, "/api/v1/users", entry.Fields["path"])
}
