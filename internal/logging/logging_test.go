package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		level   zapcore.Level
	}{
		{"default", DefaultConfig(), false, zapcore.InfoLevel},
		{"debug console", Config{Level: "debug", Format: FormatConsole}, false, zapcore.DebugLevel},
		{"error structured", Config{Level: "error", Format: FormatStructured}, false, zapcore.ErrorLevel},
		{"bad level", Config{Level: "verbose", Format: FormatStructured}, true, 0},
		{"bad format", Config{Level: "info", Format: "xml"}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, logger.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				require.False(t, logger.Core().Enabled(tt.level-1))
			}
		})
	}
}
