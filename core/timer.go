package core

// Timer frequency of the ESP32-C3 SYSTIMER
const (
	TimerFreq = 16000000 // 16MHz
)

// TicksFromMicros converts microseconds to timer ticks
func TicksFromMicros(us uint64) Tick {
	return Tick(us * (TimerFreq / 1000000))
}

// TicksFromMillis converts milliseconds to timer ticks
func TicksFromMillis(ms uint64) Tick {
	return Tick(ms * (TimerFreq / 1000))
}

// TicksToMicros converts timer ticks to microseconds
func TicksToMicros(ticks Tick) uint64 {
	return uint64(ticks) / (TimerFreq / 1000000)
}

// TimerDriver multiplexes logical alarm requests onto the fixed set of
// hardware comparator channels. It is the time source the scheduler's sleep
// primitives are built on.
//
// One critical section guards the whole alarm table. Arming happens from
// task context and firing from interrupt context; masking interrupts is the
// only primitive that excludes both, so there are no per-slot locks.
type TimerDriver struct {
	cs       CriticalSection
	counter  Counter
	channels [AlarmCount]AlarmChannel
	alarms   AlarmTable
	trace    *TraceRing
}

// NewTimerDriver builds the driver. channels[i] must be hardware channel i.
func NewTimerDriver(cs CriticalSection, counter Counter, channels [AlarmCount]AlarmChannel) *TimerDriver {
	for i, ch := range channels {
		if ch == nil {
			fault("alarm channel " + itoa(i) + " missing")
		}
		if int(ch.ID()) != i {
			fault("alarm channel " + itoa(i) + " reports id " + itoa(int(ch.ID())))
		}
	}
	return &TimerDriver{
		cs:       cs,
		counter:  counter,
		channels: channels,
		alarms:   newAlarmTable(),
	}
}

// SetTrace attaches a trace ring. It must share the driver's critical section.
func (d *TimerDriver) SetTrace(tr *TraceRing) {
	d.trace = tr
}

// Now returns the current counter value
func (d *TimerDriver) Now() Tick {
	return d.counter.Now()
}

// AllocateAlarm reserves a hardware channel. Allocation is permanent; after
// AlarmCount grants every call returns ErrAlarmUnavailable.
func (d *TimerDriver) AllocateAlarm() (AlarmHandle, error) {
	state := d.cs.Enter()
	defer d.cs.Exit(state)

	h, ok := d.alarms.allocate()
	if !ok {
		return 0, ErrAlarmUnavailable
	}
	d.trace.record(EvtAlarmAllocated, uint8(h), d.Now(), 0)
	return h, nil
}

// SetAlarmCallback stores the callback and context for the handle,
// replacing any previous pair. It must be called before the first SetAlarm
// on the handle; this is not checked here.
func (d *TimerDriver) SetAlarmCallback(h AlarmHandle, fn AlarmCallback, ctx any) {
	state := d.cs.Enter()
	defer d.cs.Exit(state)

	d.alarms[h].callback = alarmCallback{fn: fn, ctx: ctx}
}

// SetAlarm arms the handle's channel for deadline. A deadline that has
// already been reached runs the callback before SetAlarm returns, without
// touching the hardware.
func (d *TimerDriver) SetAlarm(h AlarmHandle, deadline Tick) {
	state := d.cs.Enter()
	defer d.cs.Exit(state)

	if !d.programLocked(h, deadline) {
		d.triggerAlarm(uint8(h))
	}
}

// programLocked stores the deadline and programs the comparator. It returns
// false, leaving hardware untouched, when the deadline has already passed.
// Caller holds the critical section.
func (d *TimerDriver) programLocked(h AlarmHandle, deadline Tick) bool {
	now := d.Now()
	if deadline <= now {
		d.trace.record(EvtAlarmPast, uint8(h), now, uint64(deadline))
		return false
	}

	d.alarms[h].Deadline = deadline
	ch := d.channels[h]
	ch.SetTarget(deadline)
	ch.EnableInterrupt()
	d.trace.record(EvtAlarmArmed, uint8(h), now, uint64(deadline))
	return true
}

// OnInterrupt is the interrupt-context entry for channel id. The hardware
// flag is cleared before the callback runs.
func (d *TimerDriver) OnInterrupt(id uint8) {
	if int(id) >= AlarmCount {
		fault("alarm interrupt on unknown channel " + itoa(int(id)))
	}
	d.channels[id].ClearInterrupt()

	state := d.cs.Enter()
	defer d.cs.Exit(state)

	d.triggerAlarm(id)
}

// triggerAlarm runs the callback stored for slot id. Caller holds the
// critical section.
func (d *TimerDriver) triggerAlarm(id uint8) {
	slot := &d.alarms[id]
	if !slot.HasCallback() {
		fault("alarm " + itoa(int(id)) + " fired with no callback")
	}
	slot.Deadline = NoDeadline
	d.trace.record(EvtAlarmFired, id, d.Now(), 0)
	slot.callback.fn(slot.callback.ctx)
}

// Slot returns a copy of the bookkeeping for channel id
func (d *TimerDriver) Slot(id uint8) AlarmSlot {
	state := d.cs.Enter()
	defer d.cs.Exit(state)

	return d.alarms[id]
}
