package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		format        string
		expectedError bool
		expectedLevel zapcore.Level
	}{
		{name: "info console", level: "info", format: "console", expectedLevel: zapcore.InfoLevel},
		{name: "debug json", level: "debug", format: "json", expectedLevel: zapcore.DebugLevel},
		{name: "warn console", level: "warn", format: "console", expectedLevel: zapcore.WarnLevel},
		{name: "error json", level: "error", format: "json", expectedLevel: zapcore.ErrorLevel},
		{name: "invalid level", level: "verbose", format: "console", expectedError: true},
		{name: "invalid format", level: "info", format: "xml", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.level, tt.format)
			if tt.expectedError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, zap.L().Core().Enabled(tt.expectedLevel))
			if tt.expectedLevel > zapcore.DebugLevel {
				assert.False(t, zap.L().Core().Enabled(tt.expectedLevel-1))
			}
		})
	}
}
