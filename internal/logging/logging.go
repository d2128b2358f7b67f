// Package logging builds the process zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported formats.
const (
	FormatStructured = "structured"
	FormatConsole    = "console"
)

// Config selects the log level and encoding.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig logs info and above as JSON.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatStructured}
}

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

var encodings = map[string]string{
	FormatStructured: "json",
	FormatConsole:    "console",
}

// Validate reports an unsupported level or format.
func (c Config) Validate() error {
	if _, ok := levels[c.Level]; !ok {
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	if _, ok := encodings[c.Format]; !ok {
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	return nil
}

// New builds a logger writing to stderr.
func New(cfg Config) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(levels[cfg.Level])
	zc.Encoding = encodings[cfg.Format]
	if cfg.Format == FormatConsole {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return zc.Build()
}
