package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogHelpersFilterSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := Logger
	Logger = zap.New(core, zap.WithFatalHook(zapcore.WriteThenPanic))
	t.Cleanup(func() { Logger = previous })

	LogWarn("Recipe store rejected request", zap.String("auth_token", "secret"), zap.Int("status", 401))
	assert.Panics(t, func() {
		LogFatal("Startup failed", zap.String("Authorization", "Bearer secret"), zap.String("addr", ":8080"))
	})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]interface{}{"status": int64(401)}, entries[0].ContextMap())
	assert.Equal(t, zapcore.FatalLevel, entries[1].Level)
	assert.Equal(t, map[string]interface{}{"addr": ":8080"}, entries[1].ContextMap())
}
