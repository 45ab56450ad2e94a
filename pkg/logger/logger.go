// Package logger builds the zap logger shared by the CLI and the stub backend.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the encoder preset, level and optional rotating file.
type Config struct {
	Mode       string // "production" or "development"
	Level      string
	FileEnable bool
	Filename   string
}

// New builds a logger writing to stderr, teed into a rotating JSON file when
// file logging is enabled.
func New(cfg Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapConfig.Level = level
	}
	zapConfig.OutputPaths = []string{"stderr"}

	if !cfg.FileEnable {
		return zapConfig.Build(zap.AddCaller())
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   false,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotating),
			zapConfig.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stderr),
			zapConfig.Level,
		),
	)
	return zap.New(core, zap.AddCaller()), nil
}
