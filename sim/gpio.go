package sim

import (
	"fmt"
	"sync"

	"wakebridge/core"
)

// GPIO simulates the GPIO interrupt registers: per-pin event type and
// enable bits, a pending-bit register and write-one-to-clear acknowledge.
// Events only latch while a pin's interrupt is enabled.
type GPIO struct {
	mu      sync.Mutex
	pins    int
	levels  uint32
	events  [core.MaxPins]core.PinEvent
	enabled uint32
	pending uint32
	acks    int
	faults  map[core.GPIOPin]error
	handler func()
}

// NewGPIO creates a block with pins pins, all reading low
func NewGPIO(pins int) *GPIO {
	if pins <= 0 || pins > core.MaxPins {
		panic(fmt.Sprintf("sim: unsupported pin count %d", pins))
	}
	return &GPIO{pins: pins, faults: make(map[core.GPIOPin]error)}
}

// Attach routes the block's interrupt to handler
func (g *GPIO) Attach(handler func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handler = handler
}

// PinCount returns the number of pins
func (g *GPIO) PinCount() int { return g.pins }

// SetInterruptEvent selects the event a pin detects
func (g *GPIO) SetInterruptEvent(pin core.GPIOPin, event core.PinEvent) error {
	if event < core.PinRising || event > core.PinHigh {
		return fmt.Errorf("pin %d: unsupported event %d", pin, event)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.faults[pin]; err != nil {
		return err
	}
	g.events[pin] = event
	return nil
}

// EnableInterrupt sets the pin's enable bit. A level event whose level is
// already present latches at once; it is delivered on the next Service.
func (g *GPIO) EnableInterrupt(pin core.GPIOPin) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.faults[pin]; err != nil {
		return err
	}
	g.enabled |= 1 << pin
	g.latchLevel(pin)
	return nil
}

// DisableInterrupt clears the pin's enable bit
func (g *GPIO) DisableInterrupt(pin core.GPIOPin) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enabled &^= 1 << pin
}

// InterruptEnabled reads the pin's enable bit
func (g *GPIO) InterruptEnabled(pin core.GPIOPin) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.faults[pin]; err != nil {
		return false, err
	}
	return g.enabled&(1<<pin) != 0, nil
}

// PendingInterrupts reads the pending-bit register
func (g *GPIO) PendingInterrupts() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// AcknowledgeInterrupts clears the given pending bits
func (g *GPIO) AcknowledgeInterrupts(mask uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending &^= mask
	g.acks++
}

// Acks returns how many acknowledge writes have been made
func (g *GPIO) Acks() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.acks
}

// InjectFault makes every register access for pin fail with err. A nil err
// clears the fault.
func (g *GPIO) InjectFault(pin core.GPIOPin, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.faults, pin)
		return
	}
	g.faults[pin] = err
}

// Level reads a pin's input level
func (g *GPIO) Level(pin core.GPIOPin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels&(1<<pin) != 0
}

// Drive sets a pin's input level, latching any configured event the change
// produces, then delivers the interrupt
func (g *GPIO) Drive(pin core.GPIOPin, high bool) {
	g.mu.Lock()
	bit := uint32(1) << pin
	was := g.levels&bit != 0
	if high {
		g.levels |= bit
	} else {
		g.levels &^= bit
	}

	if g.enabled&bit != 0 {
		switch g.events[pin] {
		case core.PinRising:
			if !was && high {
				g.pending |= bit
			}
		case core.PinFalling:
			if was && !high {
				g.pending |= bit
			}
		case core.PinAnyEdge:
			if was != high {
				g.pending |= bit
			}
		default:
			g.latchLevel(pin)
		}
	}
	g.mu.Unlock()

	g.Service()
}

// Pulse drives a pin high then low
func (g *GPIO) Pulse(pin core.GPIOPin) {
	g.Drive(pin, true)
	g.Drive(pin, false)
}

// Service delivers the interrupt if any bit is pending
func (g *GPIO) Service() {
	g.mu.Lock()
	h := g.handler
	pending := g.pending
	g.mu.Unlock()

	if pending != 0 && h != nil {
		h()
	}
}

// latchLevel latches a level event matching the current input. Caller
// holds g.mu.
func (g *GPIO) latchLevel(pin core.GPIOPin) {
	bit := uint32(1) << pin
	high := g.levels&bit != 0
	switch g.events[pin] {
	case core.PinHigh:
		if high {
			g.pending |= bit
		}
	case core.PinLow:
		if !high {
			g.pending |= bit
		}
	}
}
