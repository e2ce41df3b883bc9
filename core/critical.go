package core

// State is the interrupt state captured by Enter and handed back to Exit.
type State uintptr

// CriticalSection is the platform's mutual-exclusion capability between
// foreground code and interrupt handlers. On a single-core MCU it is realized
// by masking interrupts, so regions held under it must stay short and must
// never block.
//
// Implementations are injected into TimerDriver and PinWaiter at
// construction. Sections nest the way interrupt masking does: code already
// inside one, such as an alarm callback re-arming its own slot, may enter
// again, and each Exit restores the state its Enter returned. Wakers still
// only flag readiness.
type CriticalSection interface {
	// Enter masks interrupts and returns the previous state
	Enter() State

	// Exit restores the state returned by the matching Enter
	Exit(state State)
}
