package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferLogger logs everything as JSON into buf.
func bufferLogger(buf *bytes.Buffer) *Logger {
	return &Logger{zlog: zerolog.New(buf).With().Timestamp().Logger()}
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output: %s", buf.String())
	return entry
}

func TestNewWithOutput_Levels(t *testing.T) {
	tests := []struct {
		env   string
		level zerolog.Level
	}{
		{env: "development", level: zerolog.DebugLevel},
		{env: "test", level: zerolog.WarnLevel},
		{env: "production", level: zerolog.InfoLevel},
		{env: "staging", level: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithOutput(tt.env, &buf)
			require.NotNil(t, l.GetZerolog())
			assert.Equal(t, tt.level, l.GetZerolog().GetLevel())
		})
	}
}

func TestNewWithOutput_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("production", &buf)

	l.Debug("hidden", nil)
	assert.Zero(t, buf.Len(), "debug is below the production level")

	l.Info("import started", map[string]interface{}{"file": "adams_co_20260209.csv"})
	entry := decodeEntry(t, &buf)
	assert.Equal(t, "import started", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "adams_co_20260209.csv", entry["file"])
	assert.Contains(t, entry, "time")
}

func TestNewWithOutput_DevelopmentIsPretty(t *testing.T) {
	var buf bytes.Buffer
	NewWithOutput("development", &buf).Debug("row skipped", map[string]interface{}{"row": 4})

	assert.Contains(t, buf.String(), "row skipped")
	assert.False(t, json.Valid(buf.Bytes()), "console output is not JSON")
}

func TestLevelsAndFields(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *Logger)
		level string
	}{
		{name: "debug", log: func(l *Logger) { l.Debug("msg", map[string]interface{}{"row": 2}) }, level: "debug"},
		{name: "info", log: func(l *Logger) { l.Info("msg", map[string]interface{}{"row": 2}) }, level: "info"},
		{name: "warn", log: func(l *Logger) { l.Warn("msg", map[string]interface{}{"row": 2}) }, level: "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(bufferLogger(&buf))

			entry := decodeEntry(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "msg", entry["message"])
			assert.Equal(t, float64(2), entry["row"])
		})
	}
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	bufferLogger(&buf).Error("row failed", errors.New("failed to save record"), map[string]interface{}{
		"row": 7,
	})

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "failed to save record", entry["error"])
	assert.Equal(t, float64(7), entry["row"])
}

func TestError_NilError(t *testing.T) {
	var buf bytes.Buffer
	bufferLogger(&buf).Error("request completed with server error", nil, nil)

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.NotContains(t, entry, "error")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	bufferLogger(&buf).With(map[string]interface{}{"component": "linkage"}).Info("sweep", nil)

	assert.Equal(t, "linkage", decodeEntry(t, &buf)["component"])
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	bufferLogger(&buf).WithRequestID("req-12345").Info("request received", nil)

	assert.Equal(t, "req-12345", decodeEntry(t, &buf)["request_id"])
}

func TestWithJob(t *testing.T) {
	var buf bytes.Buffer
	bufferLogger(&buf).WithJob("job-42", "properties").Info("row processed", map[string]interface{}{"row": 7})

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "job-42", entry["job_id"])
	assert.Equal(t, "properties", entry["kind"])
}

func TestNilFields(t *testing.T) {
	var buf bytes.Buffer
	assert.NotPanics(t, func() {
		bufferLogger(&buf).Info("message with nil fields", nil)
	})
	assert.Contains(t, buf.String(), "message with nil fields")
}
