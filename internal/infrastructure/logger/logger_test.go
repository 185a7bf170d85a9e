package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskmaster/dayplanner/internal/infrastructure/config"
)

func observed(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNew(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "planner.log")
	log, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: "file", Filename: path})
	require.NoError(t, err)
	log.Infow("hello", "k", "v")
	_ = log.Close()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"hello"`)
}

func TestContextFields(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)

	log.WithComponent("reconcile").WithDevice("device_a").Infow("Session started")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "reconcile", fields["component"])
	assert.Equal(t, "device_a", fields["device_id"])
}

func TestLogStoreOperation(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)

	log.LogStoreOperation("local", "save", "tasks", 1.5, nil)
	log.LogStoreOperation("remote", "save", "notes", 2, errors.New("connection refused"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "connection refused", entries[1].ContextMap()["error"])
	assert.Equal(t, "notes", entries[1].ContextMap()["kind"])
}

func TestLogHTTPRequest(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	log.WithRequestID("req-1").LogHTTPRequest("GET", "/api/tasks", "default", "127.0.0.1", 200, 3.2)

	entry := logs.FilterMessage("HTTP request").All()
	require.Len(t, entry, 1)
	fields := entry[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, 200, fields["status_code"])
}
