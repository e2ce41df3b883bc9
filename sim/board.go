package sim

import "wakebridge/core"

// Board wires the simulated peripherals to the bridge the same way the
// esp32c3 target wires the real ones: one interrupt mask shared by the
// timer driver, the pin waiter and the trace ring, and each dispatcher
// attached to its interrupt line.
type Board struct {
	Mask   *core.InterruptMask
	Timer  *SysTimer
	GPIO   *GPIO
	Driver *core.TimerDriver
	Pins   *core.PinWaiter
	Trace  *core.TraceRing
}

// NewBoard builds a board with pins GPIO pins
func NewBoard(pins int) *Board {
	mask := &core.InterruptMask{}
	timer := NewSysTimer()
	gpio := NewGPIO(pins)
	trace := core.NewTraceRing(mask)

	driver := core.NewTimerDriver(mask, timer, timer.Channels())
	driver.SetTrace(trace)
	for _, d := range driver.Dispatchers() {
		timer.Attach(d.Channel(), d.Handle)
	}

	waiter := core.NewPinWaiter(mask, gpio)
	waiter.SetTrace(trace, timer)
	gpio.Attach(waiter.Dispatcher().Handle)

	return &Board{
		Mask:   mask,
		Timer:  timer,
		GPIO:   gpio,
		Driver: driver,
		Pins:   waiter,
		Trace:  trace,
	}
}
