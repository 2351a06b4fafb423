package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"citation-intelligence/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, parseLevel(in))
		})
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "identify-content-gaps"})

	log.Info("gaps identified", map[string]interface{}{"count": 3})
	log.WithError(errors.New("boom")).Error("scan failed", map[string]interface{}{"scan": "topic_cluster"})

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "gaps identified", entries[0].Message)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "identify-content-gaps", ctx["taskType"])
		assert.EqualValues(t, 3, ctx["count"])

		ctx = entries[1].ContextMap()
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "topic_cluster", ctx["scan"])
	}
}

func TestNewWithOutput_FallsBackOnBadSink(t *testing.T) {
	l := NewWithOutput("info", "json", "/nonexistent-dir/for/sure/app.log")
	assert.NotNil(t, l)
}

func TestNewFromConfig_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.log")
	l := NewFromConfig(config.LoggingConfig{Level: "warn", Format: "json", Output: path})
	l.Info("dropped")
	l.Warn("kept", zap.String("taskType", "normalize-citations"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.NotContains(t, string(data), "dropped")
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.Debug("x", nil)
		log.With(map[string]interface{}{"a": 1}).Warn("y", nil)
	})
}
