package core

import "sync/atomic"

// Waker marks a suspended task as ready to be polled again. Wake may be
// called from interrupt context while the critical section is held, so
// implementations only flag readiness: no blocking, no critical section.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to the Waker interface
type WakerFunc func()

// Wake calls f
func (f WakerFunc) Wake() { f() }

// FlagWaker is a Waker that latches a single flag. It backs the blocking
// Wait helpers.
type FlagWaker struct {
	woken atomic.Bool
}

// Wake sets the flag
func (w *FlagWaker) Wake() { w.woken.Store(true) }

// Take reports whether the flag was set and clears it
func (w *FlagWaker) Take() bool { return w.woken.Swap(false) }

// PinWakerTable holds at most one waker per pin. Registering overwrites;
// waking consumes the registration.
type PinWakerTable struct {
	slots []Waker
}

// NewPinWakerTable creates a table for pinCount pins
func NewPinWakerTable(pinCount int) *PinWakerTable {
	return &PinWakerTable{slots: make([]Waker, pinCount)}
}

// Len returns the number of pins covered by the table
func (t *PinWakerTable) Len() int {
	return len(t.slots)
}

// Register stores w for pin, replacing any earlier waker.
// Caller holds the critical section.
func (t *PinWakerTable) Register(pin GPIOPin, w Waker) {
	t.slots[pin] = w
}

// Wake wakes and clears the waker for pin. No-op when none is registered.
// Caller holds the critical section.
func (t *PinWakerTable) Wake(pin GPIOPin) bool {
	w := t.slots[pin]
	if w == nil {
		return false
	}
	t.slots[pin] = nil
	w.Wake()
	return true
}

// Registered reports whether pin has a waker. Caller holds the critical
// section.
func (t *PinWakerTable) Registered(pin GPIOPin) bool {
	return t.slots[pin] != nil
}
