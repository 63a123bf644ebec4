// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	// LevelOff disables logging.
	LevelOff = "off"
)

type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Output is a file path, "stderr" or "stdout".
	Output string `yaml:"output"`
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatConsole, Output: "stderr"}
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil && !c.Off() {
		return err
	}
	switch c.Format {
	case "", FormatJSON, FormatConsole:
	default:
		return fmt.Errorf("logging: unknown format %q", c.Format)
	}
	return nil
}

func (c Config) Off() bool { return strings.EqualFold(c.Level, LevelOff) }

func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zap.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zap.InfoLevel, fmt.Errorf("logging: %w", err)
	}
	return lvl, nil
}

// New builds a logger from cfg. The returned level can be changed while
// the logger is in use.
func New(cfg Config) (*zap.Logger, zap.AtomicLevel, error) {
	if cfg.Off() {
		return zap.NewNop(), zap.NewAtomicLevelAt(zap.FatalLevel), nil
	}
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}

	encoding := FormatJSON
	encoder := zap.NewProductionEncoderConfig()
	if cfg.Format == FormatConsole {
		encoding = FormatConsole
		encoder = zap.NewDevelopmentEncoderConfig()
	}
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder

	atom := zap.NewAtomicLevelAt(lvl)
	zc := zap.Config{
		Level:       atom,
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         encoding,
		EncoderConfig:    encoder,
		OutputPaths:      []string{cfg.Output},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	log, err := zc.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("logging: %w", err)
	}
	return log, atom, nil
}
