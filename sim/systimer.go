package sim

import (
	"sync"

	"wakebridge/core"
)

// SysTimer is a free-running counter with core.AlarmCount one-shot
// comparators. The counter only moves when Advance or Set is called.
type SysTimer struct {
	mu       sync.Mutex
	now      core.Tick
	alarms   [core.AlarmCount]*Alarm
	handlers [core.AlarmCount]func()
}

// NewSysTimer creates a timer with the counter at zero
func NewSysTimer() *SysTimer {
	s := &SysTimer{}
	for i := range s.alarms {
		s.alarms[i] = &Alarm{timer: s, id: uint8(i), target: core.NoDeadline}
	}
	return s
}

// Now reads the counter
func (s *SysTimer) Now() core.Tick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Channels returns the comparators, indexed by channel number
func (s *SysTimer) Channels() [core.AlarmCount]core.AlarmChannel {
	var out [core.AlarmCount]core.AlarmChannel
	for i, a := range s.alarms {
		out[i] = a
	}
	return out
}

// Alarm returns comparator id
func (s *SysTimer) Alarm(id uint8) *Alarm {
	return s.alarms[id]
}

// Attach routes comparator id's interrupt to handler
func (s *SysTimer) Attach(id uint8, handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[id] = handler
}

// Advance moves the counter forward by d ticks and raises every alarm that
// matched
func (s *SysTimer) Advance(d core.Tick) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()
	s.raise()
}

// Set moves the counter to t. The counter never runs backwards.
func (s *SysTimer) Set(t core.Tick) {
	s.mu.Lock()
	if t > s.now {
		s.now = t
	}
	s.mu.Unlock()
	s.raise()
}

// raise latches matches and calls the handlers of enabled, pending alarms.
// Handlers run without the timer lock held, like an ISR entered after the
// register write that caused it.
func (s *SysTimer) raise() {
	var due []func()

	s.mu.Lock()
	for i, a := range s.alarms {
		if a.armed && a.target <= s.now {
			a.armed = false
			a.raw = true
		}
		if a.raw && a.enabled && s.handlers[i] != nil {
			due = append(due, s.handlers[i])
		}
	}
	s.mu.Unlock()

	for _, h := range due {
		h()
	}
}

// Alarm is one comparator. A match latches its raw interrupt flag until
// ClearInterrupt; the comparator then stays idle until the next SetTarget.
type Alarm struct {
	timer   *SysTimer
	id      uint8
	target  core.Tick
	armed   bool
	enabled bool
	raw     bool
	matches int
}

// ID returns the comparator number
func (a *Alarm) ID() uint8 { return a.id }

// SetTarget programs the comparator
func (a *Alarm) SetTarget(target core.Tick) {
	a.timer.mu.Lock()
	defer a.timer.mu.Unlock()
	a.target = target
	a.armed = true
}

// EnableInterrupt sets the comparator's interrupt enable
func (a *Alarm) EnableInterrupt() {
	a.timer.mu.Lock()
	defer a.timer.mu.Unlock()
	a.enabled = true
}

// ClearInterrupt clears the raw interrupt flag
func (a *Alarm) ClearInterrupt() {
	a.timer.mu.Lock()
	defer a.timer.mu.Unlock()
	if a.raw {
		a.matches++
	}
	a.raw = false
}

// Target returns the programmed target
func (a *Alarm) Target() core.Tick {
	a.timer.mu.Lock()
	defer a.timer.mu.Unlock()
	return a.target
}

// Armed reports whether the comparator is waiting for a match
func (a *Alarm) Armed() bool {
	a.timer.mu.Lock()
	defer a.timer.mu.Unlock()
	return a.armed
}

// Matches returns how many matches have been acknowledged
func (a *Alarm) Matches() int {
	a.timer.mu.Lock()
	defer a.timer.mu.Unlock()
	return a.matches
}
