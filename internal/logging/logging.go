// Package logging builds the zap loggers used by the relay binaries.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a production (JSON) or development (console) logger whose level
// can be changed at runtime through the returned AtomicLevel.
func New(level string, development bool) (*zap.Logger, zap.AtomicLevel, error) {
	atom, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = atom
	logger, err := cfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("build logger: %w", err)
	}
	return logger, atom, nil
}

// SetLevel applies a level name to atom, leaving it unchanged on error.
func SetLevel(atom zap.AtomicLevel, level string) error {
	if err := atom.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}
