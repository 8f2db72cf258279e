package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ewilliams-labs/musicmate/internal/config"
)

// New builds a logger from the log section of the configuration. The json
// format uses zap's production encoder; anything else logs to the console.
// Output goes to stderr so it never interleaves with command output.
func New(cfg config.LogConfig, debug bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if debug {
		level = zapcore.DebugLevel
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: failed to initialize logger: %w", err)
	}
	return logger.With(zap.String("app", "musicmate")), nil
}
