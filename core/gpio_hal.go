package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// MaxPins is the widest GPIO block the pending-interrupt mask can describe
const MaxPins = 32

// PinEvent selects the edge or level a pin interrupt detects
type PinEvent uint8

const (
	PinRising PinEvent = iota + 1
	PinFalling
	PinAnyEdge
	PinLow
	PinHigh
)

// String returns the event name
func (e PinEvent) String() string {
	switch e {
	case PinRising:
		return "rising"
	case PinFalling:
		return "falling"
	case PinAnyEdge:
		return "any"
	case PinLow:
		return "low"
	case PinHigh:
		return "high"
	default:
		return "unknown"
	}
}

// GPIOInterruptController is the slice of the GPIO block the pin wait path
// needs. Platform-specific implementations handle the registers; the pin's
// input mode is configured beforehand by board code.
type GPIOInterruptController interface {
	// PinCount returns the number of pins on the chip (at most MaxPins)
	PinCount() int

	// SetInterruptEvent selects the edge/level the pin detects
	SetInterruptEvent(pin GPIOPin, event PinEvent) error

	// EnableInterrupt sets the pin's interrupt-enable bit
	EnableInterrupt(pin GPIOPin) error

	// DisableInterrupt clears the pin's interrupt-enable bit.
	// Called from interrupt context.
	DisableInterrupt(pin GPIOPin)

	// InterruptEnabled reads the pin's interrupt-enable bit
	InterruptEnabled(pin GPIOPin) (bool, error)

	// PendingInterrupts reads the pending-bit register, one bit per pin
	PendingInterrupts() uint32

	// AcknowledgeInterrupts clears the given pending bits
	AcknowledgeInterrupts(mask uint32)
}
