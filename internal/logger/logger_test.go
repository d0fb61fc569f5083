package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"renovirt-backend/internal/config"
)

func TestNew(t *testing.T) {
	log, err := New(&config.Config{LogLevel: "warn", Environment: "production"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = New(&config.Config{LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}
