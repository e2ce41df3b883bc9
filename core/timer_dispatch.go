package core

// TimerInterruptDispatcher is the interrupt entry point for one alarm
// channel. Targets bind Handle to the channel's interrupt vector.
type TimerInterruptDispatcher struct {
	driver  *TimerDriver
	channel uint8
}

// Handle acknowledges the channel's interrupt and fires its alarm
func (t TimerInterruptDispatcher) Handle() {
	t.driver.OnInterrupt(t.channel)
}

// Channel returns the hardware channel the dispatcher serves
func (t TimerInterruptDispatcher) Channel() uint8 {
	return t.channel
}

// Dispatchers returns one dispatcher per hardware channel, indexed by
// channel number
func (d *TimerDriver) Dispatchers() [AlarmCount]TimerInterruptDispatcher {
	var out [AlarmCount]TimerInterruptDispatcher
	for i := range out {
		out[i] = TimerInterruptDispatcher{driver: d, channel: uint8(i)}
	}
	return out
}
