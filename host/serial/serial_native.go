package serial

import (
	"errors"
	"fmt"

	"github.com/tarm/serial"
)

var errNoSettings = errors.New("serial settings cannot be nil")

// NativePort wraps a tarm/serial port.
type NativePort struct {
	port     *serial.Port
	settings *Settings
}

// Open opens the device named in s.
func Open(s *Settings) (Port, error) {
	if s == nil {
		return nil, errNoSettings
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        s.Device,
		Baud:        s.Baud,
		ReadTimeout: s.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", s.Device, err)
	}

	return &NativePort{port: port, settings: s}, nil
}

// Device returns the path the port was opened on.
func (p *NativePort) Device() string {
	return p.settings.Device
}

func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the port.
func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush discards unread input and unsent output.
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
