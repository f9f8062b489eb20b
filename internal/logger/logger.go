package logger

import (
	"fmt"

	"commerce-backoffice/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide zap logger from config. Encoding is "json" or
// "console"; unknown levels fall back to info.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = cfg.Encoding
	if zcfg.Encoding != "json" && zcfg.Encoding != "console" {
		return nil, fmt.Errorf("unsupported log encoding %q", cfg.Encoding)
	}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zcfg.Build()
}
