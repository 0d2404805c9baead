package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
}

func TestNewReturnsNoOpInTest(t *testing.T) {
	logger, err := New("asha", "test", "debug")
	require.NoError(t, err)
	_, ok := logger.(*NoOpLogger)
	assert.True(t, ok)
}

func TestNewBuildsZapLogger(t *testing.T) {
	logger, err := New("asha", "production", "warn")
	require.NoError(t, err)
	zl, ok := logger.(*ZapLogger)
	require.True(t, ok)
	zl.Info("dropped below level", "k", "v")
	zl.Warn("kept", "k", "v")
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "asha****", MaskEmail("asha@example.com"))
	assert.Equal(t, "ab****", MaskEmail("ab"))
	assert.Equal(t, "****", MaskEmail(""))
}
