package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Output: &buf})

	log.Debug("hidden")
	log.Info("Pipeline run completed", zap.String("run_id", "20261016T120000Z"))
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Pipeline run completed", entry["msg"])
	assert.Equal(t, "20261016T120000Z", entry["run_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	log := New(Options{Level: "info", Path: path, Output: &bytes.Buffer{}})

	log.Info("written to file")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "app.log"), DefaultPath("data"))
	assert.Equal(t, filepath.Join("logs", "app.log"), DefaultPath(""))
}
