package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" WARNING "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestStructured_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "rank-coaches"})

	log.WithError(errors.New("boom")).Warn("scoring skipped", map[string]interface{}{
		"coachId": "coach-1",
		"score":   42,
	})

	entries := logs.All()
	assert.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "rank-coaches", ctx["taskType"])
	assert.Equal(t, "coach-1", ctx["coachId"])
	assert.Equal(t, int64(42), ctx["score"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestToZapFields_SortedAndErrorAware(t *testing.T) {
	fields := toZapFields(map[string]interface{}{
		"b":     1,
		"a":     "x",
		"cause": errors.New("down"),
	})
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "cause", fields[2].Key)
	assert.Equal(t, zapcore.ErrorType, fields[2].Type)
	assert.Nil(t, toZapFields(nil))
}

func TestNew_DoesNotPanic(t *testing.T) {
	assert.NotNil(t, New("debug", "json"))
	assert.NotNil(t, New("info", "console"))
	NewNoOpLogger().Info("ignored", nil)
	NewTestLogger(t).Debug("visible in test output", map[string]interface{}{"k": "v"})
}
