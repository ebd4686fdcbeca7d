// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Relay configuration loaded from YAML.

package control

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const maxConfigFileBytes int64 = 1 << 20 // 1MB

// Config is the relay runtime configuration.
type Config struct {
	// ListenAddr is the TCP address the relay binds at startup.
	ListenAddr string `yaml:"listen_addr"`
	// ReadBufferSize bounds a single socket read.
	ReadBufferSize int `yaml:"read_buffer_size"`
	// MaxEvents bounds readiness events handled per cycle.
	MaxEvents int `yaml:"max_events"`
	// MaxFramePayload is the largest declared frame length accepted.
	// 0 disables the bound. Reloadable.
	MaxFramePayload int `yaml:"max_frame_payload"`
	// MaxReadErrors tears a connection down after that many consecutive
	// failed reads. 0 never does.
	MaxReadErrors int `yaml:"max_read_errors"`
	// PollTimeout bounds one readiness wait. 0 blocks until an event arrives.
	PollTimeout time.Duration `yaml:"poll_timeout"`
	// LogLevel is a zap level name. Reloadable.
	LogLevel       string `yaml:"log_level"`
	LogDevelopment bool   `yaml:"log_development"`
	// StatsInterval is how often metrics are logged. 0 disables.
	StatsInterval time.Duration `yaml:"stats_interval"`
	// CPUAffinity pins the event loop thread to one CPU. -1 leaves it free.
	CPUAffinity int `yaml:"cpu_affinity"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      "127.0.0.1:1024",
		ReadBufferSize:  4096,
		MaxEvents:       1024,
		MaxFramePayload: 1 << 20,
		MaxReadErrors:   16,
		LogLevel:        "info",
		StatsInterval:   time.Minute,
		CPUAffinity:     -1,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxConfigFileBytes+1))
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if int64(len(raw)) > maxConfigFileBytes {
		return Config{}, fmt.Errorf("config %s exceeds %d bytes", path, maxConfigFileBytes)
	}
	return ParseConfig(raw)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if c.ReadBufferSize <= 0 {
		errs = append(errs, fmt.Errorf("read_buffer_size must be positive, got %d", c.ReadBufferSize))
	}
	if c.MaxEvents <= 0 {
		errs = append(errs, fmt.Errorf("max_events must be positive, got %d", c.MaxEvents))
	}
	if c.MaxFramePayload < 0 {
		errs = append(errs, fmt.Errorf("max_frame_payload must not be negative, got %d", c.MaxFramePayload))
	}
	if c.MaxReadErrors < 0 {
		errs = append(errs, fmt.Errorf("max_read_errors must not be negative, got %d", c.MaxReadErrors))
	}
	if c.PollTimeout < 0 {
		errs = append(errs, fmt.Errorf("poll_timeout must not be negative, got %s", c.PollTimeout))
	}
	if c.StatsInterval < 0 {
		errs = append(errs, fmt.Errorf("stats_interval must not be negative, got %s", c.StatsInterval))
	}
	if c.CPUAffinity < -1 {
		errs = append(errs, fmt.Errorf("cpu_affinity must be -1 or a cpu index, got %d", c.CPUAffinity))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is not a known level", c.LogLevel))
	}
	return errors.Join(errs...)
}
