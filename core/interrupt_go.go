//go:build !tinygo

package core

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// InterruptMask is the host stand-in for interrupt masking. Simulated
// interrupt handlers may run on their own goroutine, so a mutex provides the
// exclusion that masking gives on hardware. Like interrupt.Disable it nests:
// the goroutine holding the mask may enter again, and only the outermost
// Exit releases it.
type InterruptMask struct {
	mu    sync.Mutex
	owner atomic.Uint64
	depth uintptr
}

// Enter acquires the mask and returns the nesting depth to restore on Exit
func (m *InterruptMask) Enter() State {
	id := goroutineID()
	if m.owner.Load() != id {
		m.mu.Lock()
		m.owner.Store(id)
	}
	prev := m.depth
	m.depth++
	return State(prev)
}

// Exit restores the depth returned by the matching Enter, releasing the
// mask when it reaches zero
func (m *InterruptMask) Exit(state State) {
	m.depth = uintptr(state)
	if m.depth == 0 {
		m.owner.Store(0)
		m.mu.Unlock()
	}
}

// goroutineID parses the id from the "goroutine NNN [" stack header
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
