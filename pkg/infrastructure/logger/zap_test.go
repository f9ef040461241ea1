package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger_Levels(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      ZapLoggerConfig
		enabled  zapcore.Level
		disabled zapcore.Level
	}{
		{"production default", ZapLoggerConfig{}, zapcore.InfoLevel, zapcore.DebugLevel},
		{"debug level", ZapLoggerConfig{Level: "debug", Encoding: "console", IsDevelopment: true}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"warn level json", ZapLoggerConfig{Level: "warn", Encoding: "json"}, zapcore.WarnLevel, zapcore.InfoLevel},
		{"bogus level falls back", ZapLoggerConfig{Level: "loud"}, zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			l, err := NewZapLogger(&cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tc.enabled))
			assert.False(t, l.Core().Enabled(tc.disabled))
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
