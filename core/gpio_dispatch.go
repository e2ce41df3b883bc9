package core

import "math/bits"

// GPIOInterruptDispatcher is the single interrupt entry point for the GPIO
// block. Targets bind Handle to the GPIO interrupt vector.
type GPIOInterruptDispatcher struct {
	waiter *PinWaiter
}

// Handle drains the pending-bit register. The snapshot is acknowledged in
// one write, then each set bit is serviced in ascending pin order: the pin's
// interrupt-enable bit is cleared, which is what the waiting future checks,
// and only then is its waker woken.
func (d *GPIOInterruptDispatcher) Handle() {
	p := d.waiter
	state := p.cs.Enter()
	defer p.cs.Exit(state)

	pending := p.ctrl.PendingInterrupts()
	if pending == 0 {
		return
	}
	p.ctrl.AcknowledgeInterrupts(pending)

	now := p.now()
	for pending != 0 {
		pin := GPIOPin(bits.TrailingZeros32(pending))
		pending &= pending - 1

		if int(pin) >= p.wakers.Len() {
			fault("GPIO interrupt on unknown pin " + itoa(int(pin)))
		}
		p.ctrl.DisableInterrupt(pin)
		p.trace.record(EvtPinFired, uint8(pin), now, 0)
		p.wakers.Wake(pin)
	}
}
