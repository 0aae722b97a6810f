// Package logger builds the zap loggers used across the gateway.
//
// Production settings emit JSON with level, time and message keys; the
// console format is meant for local runs and the CLI.
package logger

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"objgate/internal/config"
)

// New creates a new zap logger based on the configuration.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	} else {
		zc.Encoding = "json"
	}
	zc.EncoderConfig = withKeys(zc.EncoderConfig)

	return zc.Build()
}

// NewWithWriter builds a JSON logger writing to w. Used by tests and tools
// that need to capture output.
func NewWithWriter(w io.Writer, level zapcore.Level) *zap.Logger {
	enc := zapcore.NewJSONEncoder(withKeys(zap.NewProductionEncoderConfig()))
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core)
}

func withKeys(ec zapcore.EncoderConfig) zapcore.EncoderConfig {
	ec.LevelKey = "level"
	ec.TimeKey = "time"
	ec.MessageKey = "message"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return ec
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
