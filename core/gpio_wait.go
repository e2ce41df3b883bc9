package core

import (
	"context"
	"fmt"
	"runtime"
)

// PinWaiter lets tasks suspend until a configured edge or level is seen on
// a pin. It owns the per-pin waker table shared with the GPIO interrupt
// dispatcher. Create one per GPIO block, before the scheduler starts.
type PinWaiter struct {
	cs     CriticalSection
	ctrl   GPIOInterruptController
	wakers *PinWakerTable
	clock  Counter
	trace  *TraceRing
}

// NewPinWaiter builds the wait context for a GPIO block
func NewPinWaiter(cs CriticalSection, ctrl GPIOInterruptController) *PinWaiter {
	n := ctrl.PinCount()
	if n <= 0 || n > MaxPins {
		fault("GPIO block reports " + itoa(n) + " pins")
	}
	return &PinWaiter{
		cs:     cs,
		ctrl:   ctrl,
		wakers: NewPinWakerTable(n),
	}
}

// SetTrace attaches a trace ring and the clock used to timestamp events.
// The ring must share the waiter's critical section.
func (p *PinWaiter) SetTrace(tr *TraceRing, clock Counter) {
	p.trace = tr
	p.clock = clock
}

func (p *PinWaiter) now() Tick {
	if p.clock == nil {
		return 0
	}
	return p.clock.Now()
}

// BeginWait configures pin to detect event, sets its interrupt-enable bit
// and returns the future that resolves once the event has been serviced.
// A pin supports one waiter at a time.
func (p *PinWaiter) BeginWait(pin GPIOPin, event PinEvent) (*PinFuture, error) {
	if int(pin) >= p.wakers.Len() {
		return nil, fmt.Errorf("wait on pin %d: %w", pin, ErrInvalidPin)
	}

	state := p.cs.Enter()
	defer p.cs.Exit(state)

	if err := p.ctrl.SetInterruptEvent(pin, event); err != nil {
		return nil, err
	}
	if err := p.ctrl.EnableInterrupt(pin); err != nil {
		return nil, err
	}
	p.trace.record(EvtPinArmed, uint8(pin), p.now(), uint64(event))

	return &PinFuture{waiter: p, pin: pin, event: event}, nil
}

// WaitForHigh waits until pin reads high
func (p *PinWaiter) WaitForHigh(pin GPIOPin) (*PinFuture, error) {
	return p.BeginWait(pin, PinHigh)
}

// WaitForLow waits until pin reads low
func (p *PinWaiter) WaitForLow(pin GPIOPin) (*PinFuture, error) {
	return p.BeginWait(pin, PinLow)
}

// WaitForRisingEdge waits for a low to high transition
func (p *PinWaiter) WaitForRisingEdge(pin GPIOPin) (*PinFuture, error) {
	return p.BeginWait(pin, PinRising)
}

// WaitForFallingEdge waits for a high to low transition
func (p *PinWaiter) WaitForFallingEdge(pin GPIOPin) (*PinFuture, error) {
	return p.BeginWait(pin, PinFalling)
}

// WaitForAnyEdge waits for either transition
func (p *PinWaiter) WaitForAnyEdge(pin GPIOPin) (*PinFuture, error) {
	return p.BeginWait(pin, PinAnyEdge)
}

// Dispatcher returns the interrupt entry point for the GPIO block
func (p *PinWaiter) Dispatcher() *GPIOInterruptDispatcher {
	return &GPIOInterruptDispatcher{waiter: p}
}

// PinFuture is a suspension point bound to one pin and event.
//
// Armed and fired are told apart only by the pin's interrupt-enable bit:
// the dispatcher clears it before waking. Several qualifying edges before
// the next poll resolve the future once; events are not counted.
type PinFuture struct {
	waiter *PinWaiter
	pin    GPIOPin
	event  PinEvent
}

// Pin returns the pin the future waits on
func (f *PinFuture) Pin() GPIOPin { return f.pin }

// Event returns the event the pin was armed for
func (f *PinFuture) Event() PinEvent { return f.event }

// Poll registers w for the pin, then checks the enable bit. Registering
// first means a wake that lands between the two steps is never lost, and
// an event that fired before the first poll resolves immediately.
// Errors reading the pin are returned unchanged.
func (f *PinFuture) Poll(w Waker) (bool, error) {
	p := f.waiter
	state := p.cs.Enter()
	defer p.cs.Exit(state)

	p.wakers.Register(f.pin, w)

	enabled, err := p.ctrl.InterruptEnabled(f.pin)
	if err != nil {
		return false, err
	}
	return !enabled, nil
}

// Wait blocks the calling goroutine until the future resolves or ctx ends.
// Cancelling only abandons the wait: the pin stays armed and its eventual
// wake is ignored.
func (f *PinFuture) Wait(ctx context.Context) error {
	return waitFor(ctx, f.Poll)
}

// waitFor drives a poll function from a goroutine, yielding between polls
// until woken.
func waitFor(ctx context.Context, poll func(Waker) (bool, error)) error {
	w := &FlagWaker{}
	for {
		done, err := poll(w)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		for !w.Take() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				runtime.Gosched()
			}
		}
	}
}
