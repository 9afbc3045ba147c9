package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so components can be named and enriched without
// importing zap configuration details.
type Logger struct {
	*zap.Logger
	config *LoggerConfig
}

// NewLogger builds a logger from cfg. A nil cfg falls back to DefaultConfig.
func NewLogger(cfg *LoggerConfig) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var zapConfig zap.Config
	if cfg.Level == "debug" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(cfg.ToZapLevel())

	switch cfg.OutputFile {
	case "", "stdout", "stderr":
		out := cfg.OutputFile
		if out == "" {
			out = "stdout"
		}
		zapConfig.OutputPaths = []string{out}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "logger: cannot create log directory for %s, using stdout: %v\n", cfg.OutputFile, err)
			zapConfig.OutputPaths = []string{"stdout"}
		} else {
			zapConfig.OutputPaths = []string{cfg.OutputFile, "stdout"}
		}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	}

	if cfg.Format == "console" || cfg.Format == "text" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig.Encoding = "json"
	}

	zl, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: falling back to zap production logger: %v\n", err)
		zl, _ = zap.NewProduction()
	}
	return &Logger{Logger: zl, config: cfg}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), config: &LoggerConfig{Level: "info", Format: "json"}}
}

// Named adds a new path segment to the logger's name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), config: l.config}
}

// With adds structured context to the logger.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), config: l.config}
}

// Config returns the settings the logger was built with.
func (l *Logger) Config() *LoggerConfig {
	return l.config
}
