package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputFile string // stdout, stderr or a file path
}

// DefaultConfig reads the logger settings from the environment.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Format:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		OutputFile: getEnv("LOG_OUTPUT_FILE", "stdout"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// ToZapLevel converts the string log level to zapcore.Level.
func (c *LoggerConfig) ToZapLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ShouldLog reports whether a message at level passes the configured threshold.
func (c *LoggerConfig) ShouldLog(level string) bool {
	cfg := LoggerConfig{Level: level}
	return cfg.ToZapLevel() >= c.ToZapLevel()
}
