package core

import "errors"

// mockCounter is a manually advanced tick source
type mockCounter struct {
	now Tick
}

func (c *mockCounter) Now() Tick { return c.now }

// mockAlarmChannel records what the driver programs
type mockAlarmChannel struct {
	id      uint8
	target  Tick
	enabled bool
	cleared int
	log     *[]string
}

func (m *mockAlarmChannel) ID() uint8 { return m.id }

func (m *mockAlarmChannel) SetTarget(target Tick) {
	m.target = target
	m.note("target")
}

func (m *mockAlarmChannel) EnableInterrupt() {
	m.enabled = true
	m.note("enable")
}

func (m *mockAlarmChannel) ClearInterrupt() {
	m.enabled = false
	m.cleared++
	m.note("clear")
}

func (m *mockAlarmChannel) note(s string) {
	if m.log != nil {
		*m.log = append(*m.log, s+itoa(int(m.id)))
	}
}

// newMockTimer builds a driver over mock hardware sharing one call log
func newMockTimer(now Tick) (*TimerDriver, *mockCounter, [AlarmCount]*mockAlarmChannel, *[]string) {
	log := &[]string{}
	counter := &mockCounter{now: now}
	var mocks [AlarmCount]*mockAlarmChannel
	var channels [AlarmCount]AlarmChannel
	for i := range mocks {
		mocks[i] = &mockAlarmChannel{id: uint8(i), target: NoDeadline, log: log}
		channels[i] = mocks[i]
	}
	return NewTimerDriver(&InterruptMask{}, counter, channels), counter, mocks, log
}

// fireDue plays the hardware side: every enabled comparator whose target
// has been reached raises its interrupt.
func fireDue(d *TimerDriver, counter *mockCounter, mocks [AlarmCount]*mockAlarmChannel) {
	for _, m := range mocks {
		if m.enabled && m.target <= counter.now {
			d.OnInterrupt(m.id)
		}
	}
}

var errPinRead = errors.New("pin read failed")

// mockGPIO models the GPIO interrupt registers. Edges only latch a pending
// bit while the pin's interrupt is enabled, as on the chip.
type mockGPIO struct {
	pins     int
	events   map[GPIOPin]PinEvent
	enabled  uint32
	pending  uint32
	acks     []uint32
	readErrs map[GPIOPin]error
	log      *[]string
}

func newMockGPIO(pins int) *mockGPIO {
	return &mockGPIO{
		pins:     pins,
		events:   make(map[GPIOPin]PinEvent),
		readErrs: make(map[GPIOPin]error),
	}
}

func (g *mockGPIO) PinCount() int { return g.pins }

func (g *mockGPIO) SetInterruptEvent(pin GPIOPin, event PinEvent) error {
	g.events[pin] = event
	return nil
}

func (g *mockGPIO) EnableInterrupt(pin GPIOPin) error {
	g.enabled |= 1 << pin
	return nil
}

func (g *mockGPIO) DisableInterrupt(pin GPIOPin) {
	g.enabled &^= 1 << pin
	g.note("disable" + itoa(int(pin)))
}

func (g *mockGPIO) InterruptEnabled(pin GPIOPin) (bool, error) {
	if err := g.readErrs[pin]; err != nil {
		return false, err
	}
	return g.enabled&(1<<pin) != 0, nil
}

func (g *mockGPIO) PendingInterrupts() uint32 { return g.pending }

func (g *mockGPIO) AcknowledgeInterrupts(mask uint32) {
	g.pending &^= mask
	g.acks = append(g.acks, mask)
	g.note("ack")
}

func (g *mockGPIO) note(s string) {
	if g.log != nil {
		*g.log = append(*g.log, s)
	}
}

// edge latches an event on pin if its interrupt is armed
func (g *mockGPIO) edge(pin GPIOPin) {
	if g.enabled&(1<<pin) != 0 {
		g.pending |= 1 << pin
	}
}

// countingWaker counts wakes and optionally logs them
type countingWaker struct {
	name  string
	count int
	log   *[]string
}

func (w *countingWaker) Wake() {
	w.count++
	if w.log != nil {
		*w.log = append(*w.log, "wake"+w.name)
	}
}
