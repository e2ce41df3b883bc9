// Package config loads the wake-monitor settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"wakebridge/host/logger"
)

// Config holds the serial link and logging settings of the monitor.
type Config struct {
	// Device is the serial port the board's trace UART is attached to.
	Device string `yaml:"device"`
	// Baud is the UART speed. USB CDC ports ignore it.
	Baud int `yaml:"baud"`
	// ReadTimeout bounds a single serial read.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the settings file looked up when no path is given.
	DefaultConfigFilename = "wake-monitor.yaml"

	// DefaultDevice is the usual ESP32-C3 USB serial/JTAG node on Linux.
	DefaultDevice = "/dev/ttyACM0"

	// DefaultBaud matches the board's UART0 setting.
	DefaultBaud = 115200

	// DefaultReadTimeout is the per-read timeout.
	DefaultReadTimeout = 100 * time.Millisecond

	// DefaultLogLevel is used when the file leaves log_level empty.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the mode Save writes with.
	DefaultFilePermissions = 0o600
)

var (
	errConfigIsNotSet = errors.New("configuration is not set")
	errDeviceRequired = errors.New("serial device must be provided")
	errInvalidBaud    = errors.New("baud rate must be positive")
	errInvalidLevel   = errors.New("unknown log level")
)

// Default returns settings with every default applied.
func Default() *Config {
	return &Config{
		Device:      DefaultDevice,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

// Load reads and validates the settings at path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save validates cfg and writes it to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults for optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Device == "" {
		return errDeviceRequired
	}

	if cfg.Baud < 0 {
		return errInvalidBaud
	}

	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLevel, cfg.LogLevel)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	return nil
}
