package core

import "math"

// AlarmCount is the number of hardware comparator channels. It bounds the
// number of alarm handles that can ever be granted.
const AlarmCount = 3

// NoDeadline marks a slot with no deadline programmed
const NoDeadline Tick = math.MaxUint64

// AlarmHandle identifies one allocated alarm slot. Only
// TimerDriver.AllocateAlarm produces valid handles.
type AlarmHandle uint8

// AlarmCallback runs when an alarm fires. It is invoked inside the critical
// section, possibly from interrupt context, so it must be short and must not
// block. It may re-arm its own handle with SetAlarm.
type AlarmCallback func(ctx any)

type alarmCallback struct {
	fn  AlarmCallback
	ctx any
}

// AlarmSlot is the per-channel bookkeeping. Slot i is permanently bound to
// hardware channel i.
type AlarmSlot struct {
	Deadline  Tick
	Allocated bool // never cleared once set
	callback  alarmCallback
}

// AlarmTable holds one slot per hardware channel
type AlarmTable [AlarmCount]AlarmSlot

func newAlarmTable() AlarmTable {
	var t AlarmTable
	for i := range t {
		t[i].Deadline = NoDeadline
	}
	return t
}

// allocate reserves the first free slot. Caller holds the critical section.
func (t *AlarmTable) allocate() (AlarmHandle, bool) {
	for i := range t {
		if !t[i].Allocated {
			t[i].Allocated = true
			return AlarmHandle(i), true
		}
	}
	return 0, false
}

// HasCallback reports whether a callback was stored for the slot
func (s AlarmSlot) HasCallback() bool {
	return s.callback.fn != nil
}
