package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures one bridge event for post-mortem analysis
type TraceEvent struct {
	Type   uint8 // Event type code (Evt*)
	Source uint8 // Alarm channel or pin number
	Clock  Tick  // Counter value when recorded
	Value  uint64
}

// Event type codes
const (
	EvtAlarmAllocated = 1 // Alarm handle granted
	EvtAlarmArmed     = 2 // Comparator programmed, Value = deadline
	EvtAlarmPast      = 3 // Deadline already reached, Value = deadline
	EvtAlarmFired     = 4 // Alarm callback invoked
	EvtPinArmed       = 5 // Pin interrupt enabled, Value = PinEvent
	EvtPinFired       = 6 // Pin serviced by the GPIO dispatcher
)

const (
	TraceRingSize = 32 // Keep last 32 events
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(s string) {}
	}
	debugPrintln = writer
}

// TraceRing is a fixed ring of the most recent bridge events. Recording
// happens inside the owner's critical section and never allocates.
type TraceRing struct {
	cs     CriticalSection
	events [TraceRingSize]TraceEvent
	head   uint8
	count  uint8
}

// NewTraceRing creates a ring guarded by cs, which must be the same
// critical section the recording drivers use.
func NewTraceRing(cs CriticalSection) *TraceRing {
	return &TraceRing{cs: cs}
}

// record appends an event. Caller holds the critical section. A nil ring
// discards events.
func (r *TraceRing) record(typ, source uint8, clock Tick, value uint64) {
	if r == nil {
		return
	}
	r.events[r.head] = TraceEvent{Type: typ, Source: source, Clock: clock, Value: value}
	r.head = (r.head + 1) % TraceRingSize
	if r.count < TraceRingSize {
		r.count++
	}
}

// Snapshot copies the recorded events, oldest first
func (r *TraceRing) Snapshot() []TraceEvent {
	state := r.cs.Enter()
	defer r.cs.Exit(state)

	return r.appendLocked(make([]TraceEvent, 0, r.count))
}

// Drain appends the recorded events to dst, oldest first, and empties the
// ring in the same critical section, so no event is returned twice.
func (r *TraceRing) Drain(dst []TraceEvent) []TraceEvent {
	state := r.cs.Enter()
	defer r.cs.Exit(state)

	dst = r.appendLocked(dst)
	r.head = 0
	r.count = 0
	return dst
}

func (r *TraceRing) appendLocked(dst []TraceEvent) []TraceEvent {
	start := (r.head + TraceRingSize - r.count) % TraceRingSize
	for i := uint8(0); i < r.count; i++ {
		dst = append(dst, r.events[(start+i)%TraceRingSize])
	}
	return dst
}

// Reset drops all recorded events
func (r *TraceRing) Reset() {
	state := r.cs.Enter()
	defer r.cs.Exit(state)

	r.events = [TraceRingSize]TraceEvent{}
	r.head = 0
	r.count = 0
}

// EventName returns a short label for an event type
func EventName(typ uint8) string {
	switch typ {
	case EvtAlarmAllocated:
		return "ALARM_ALLOC"
	case EvtAlarmArmed:
		return "ALARM_ARM"
	case EvtAlarmPast:
		return "ALARM_PAST"
	case EvtAlarmFired:
		return "ALARM_FIRE"
	case EvtPinArmed:
		return "PIN_ARM"
	case EvtPinFired:
		return "PIN_FIRE"
	default:
		return "UNKNOWN"
	}
}

// Dump writes the ring through the debug writer. Call it from the
// foreground loop, never from an interrupt handler.
func (r *TraceRing) Dump() {
	debugPrintln("[TRACE] === Trace Ring Dump ===")
	for _, evt := range r.Snapshot() {
		debugPrintln("[TRACE] " + EventName(evt.Type) +
			" src=" + itoa(int(evt.Source)) +
			" clock=" + utoa(uint64(evt.Clock)) +
			" v=" + utoa(evt.Value))
	}
	debugPrintln("[TRACE] === End Dump ===")
}
