//go:build tinygo

package core

import "runtime/interrupt"

// InterruptMask disables all interrupts for the duration of the critical
// section. Single core only. Sections nest: Exit restores the state the
// matching Enter saw.
type InterruptMask struct{}

// Enter disables interrupts and returns the previous state
func (m *InterruptMask) Enter() State {
	return State(interrupt.Disable())
}

// Exit restores the interrupt state
func (m *InterruptMask) Exit(state State) {
	interrupt.Restore(interrupt.State(state))
}
