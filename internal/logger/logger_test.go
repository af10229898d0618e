package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New("prod", "")
	require.NoError(t, err)
	assert.True(t, l.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel))
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))

	l, err = New("dev", "warn")
	require.NoError(t, err)
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel))

	_, err = New("dev", "loud")
	assert.Error(t, err)
}

func TestWith(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("root", "L-1").Warn("root failed", "cause", "boom")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "root failed", entry.Message)
	assert.Equal(t, map[string]interface{}{"root": "L-1", "cause": "boom"}, entry.ContextMap())

	Nop().Error("discarded")
}
