// Package logx builds the zap logger shared by the binaries.
package logx

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger, or a console development logger
// when format is "console". level defaults to info.
func New(level, format string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, err
		}
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Must is New that falls back to zap.NewProduction on a bad level.
func Must(level, format string) *zap.Logger {
	log, err := New(level, format)
	if err == nil {
		return log
	}
	log, _ = zap.NewProduction()
	log.Warn("invalid log level, using info", zap.String("level", level), zap.Error(err))
	return log
}
