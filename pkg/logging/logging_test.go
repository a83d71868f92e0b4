package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envi.log")
	log, err := New(Config{Level: "warn", OutputPath: path})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"service":"envi"`)
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"error", zapcore.ErrorLevel},
		{"nonsense", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(Config{Level: tt.level, OutputPath: filepath.Join(t.TempDir(), "l.log")})
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.log")
	log := Must(Config{Format: "console", OutputPath: path})
	log.Info("plain")
	require.NoError(t, log.Sync())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(data), "{"))
	assert.Contains(t, string(data), "plain")
}
