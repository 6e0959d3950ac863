package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "ai-underwriting"})

	log.Warn("cache lookup failed", map[string]interface{}{
		"applicationId": "app-42",
		"attempt":       3,
		"error":         errors.New("connection refused"),
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "cache lookup failed", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "ai-underwriting", fields["taskType"])
	assert.Equal(t, "app-42", fields["applicationId"])
	assert.Equal(t, int64(3), fields["attempt"])
	assert.Equal(t, "connection refused", fields["error"])
}

func TestZapAdapter_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core))

	log.Debug("dropped", nil)
	log.Info("info", nil)
	log.Error("error", nil)
	log.WithError(errors.New("boom")).Info("with error", nil)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "info", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, "json", "stderr")
			assert.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNoOpLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		l := NewNoOpLogger().WithFields(map[string]interface{}{"k": "v"})
		l.Info("ignored", map[string]interface{}{"n": 1})
	})
}
