package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ewilliams-labs/musicmate/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		debug     bool
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "console info", cfg: config.LogConfig{Level: "info", Format: "console"}, wantLevel: zapcore.InfoLevel},
		{name: "json warn", cfg: config.LogConfig{Level: "warn", Format: "json"}, wantLevel: zapcore.WarnLevel},
		{name: "debug flag wins", cfg: config.LogConfig{Level: "error"}, debug: true, wantLevel: zapcore.DebugLevel},
		{name: "unknown level", cfg: config.LogConfig{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.debug)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}
