package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	assert.NoError(t, Init("debug", "json"))
	assert.NoError(t, Init("INFO", "console"))
	assert.Error(t, Init("loud", "json"))
	assert.Error(t, Init("info", "xml"))
}

func TestHelpersUseGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	Info("analysis finished", zap.Int("results", 3))
	Warn("provider failed", zap.String("provider", "coingecko"))
	Debug("detail")

	entries := logs.All()
	assert.Len(t, entries, 3)
	assert.Equal(t, "analysis finished", entries[0].Message)
	assert.Equal(t, "coingecko", entries[1].ContextMap()["provider"])
}
