package core

import "errors"

var (
	// ErrAlarmUnavailable is returned once every hardware alarm channel has
	// been handed out. Callers treat it as backpressure.
	ErrAlarmUnavailable = errors.New("no hardware alarm channel available")

	// ErrInvalidPin is returned when a wait is requested on a pin the GPIO
	// block does not have.
	ErrInvalidPin = errors.New("invalid GPIO pin")
)

// fault reports a broken construction-time invariant. These are not
// recoverable; on the MCU the panic halts the firmware.
func fault(msg string) {
	panic("wakebridge: " + msg)
}
