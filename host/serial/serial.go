// Package serial opens the UART link the board streams trace frames on.
package serial

import (
	"io"
	"time"

	"wakebridge/host/config"
)

// Port is a serial link. Tests substitute in-memory pipes.
type Port interface {
	io.ReadWriteCloser

	// Flush drops any buffered data
	Flush() error
}

// Settings holds the parameters needed to open a port.
type Settings struct {
	// Device path, e.g. "/dev/ttyACM0" or "COM3"
	Device string

	// Baud rate. USB serial/JTAG ignores it.
	Baud int

	// ReadTimeout bounds a single Read. Zero blocks.
	ReadTimeout time.Duration
}

// FromConfig extracts the port settings from the monitor configuration.
func FromConfig(cfg *config.Config) *Settings {
	return &Settings{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	}
}
