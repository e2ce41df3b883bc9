package core

// Tick is a reading of the free-running hardware counter
type Tick uint64

// Counter is the monotonic tick source. Now must be callable from both task
// and interrupt context and must never block.
type Counter interface {
	Now() Tick
}

// AlarmChannel is one hardware comparator bound to the shared counter.
// Platform-specific implementations handle the registers.
type AlarmChannel interface {
	// ID returns the fixed channel number (0 .. AlarmCount-1)
	ID() uint8

	// SetTarget programs the comparator target
	SetTarget(target Tick)

	// EnableInterrupt lets the comparator raise its interrupt on match
	EnableInterrupt()

	// ClearInterrupt acknowledges a pending match interrupt
	ClearInterrupt()
}
