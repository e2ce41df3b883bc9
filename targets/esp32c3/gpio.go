//go:build esp32c3

package main

import (
	"errors"
	"runtime/volatile"

	"wakebridge/core"
)

// ESP32-C3 GPIO interrupt registers
//
// STATUS_W1TC @ 0x4C - write 1 to clear pending bits
// PCPU_INT    @ 0x5C - pending bits routed to the CPU interrupt
// PINn        @ 0x74 + 4n - bits 7-9: INT_TYPE, bits 13-17: INT_ENA
const (
	gpioBase       = 0x60004000
	gpioStatusW1TC = gpioBase + 0x4C
	gpioPcpuInt    = gpioBase + 0x5C
	gpioPin0       = gpioBase + 0x74

	pinIntTypePos  = 7
	pinIntEnaPos   = 13
	pinIntEnaMask  = 0x1F << pinIntEnaPos
	pinIntEnaCPU   = 1 << pinIntEnaPos

	gpioPinCount = 26 // PIN0..PIN25 registers; GPIO22-25 are not bonded out
)

var errUnsupportedEvent = errors.New("unsupported pin interrupt event")

var (
	gpioStatusClr = reg(gpioStatusW1TC)
	gpioPending   = reg(gpioPcpuInt)
)

// intType maps a pin event to the PINn INT_TYPE field
var intType = [...]uint32{
	core.PinRising:  1,
	core.PinFalling: 2,
	core.PinAnyEdge: 3,
	core.PinLow:     4,
	core.PinHigh:    5,
}

// gpioInterrupts drives the interrupt side of the GPIO matrix. Pin input
// mode is set up through machine.Pin beforehand.
type gpioInterrupts struct{}

func pinReg(pin core.GPIOPin) *volatile.Register32 {
	return reg(gpioPin0 + 4*uintptr(pin))
}

func (gpioInterrupts) PinCount() int { return gpioPinCount }

func (gpioInterrupts) SetInterruptEvent(pin core.GPIOPin, event core.PinEvent) error {
	if event == 0 || int(event) >= len(intType) {
		return errUnsupportedEvent
	}
	pinReg(pin).ReplaceBits(intType[event], 0x7, pinIntTypePos)
	return nil
}

func (gpioInterrupts) EnableInterrupt(pin core.GPIOPin) error {
	pinReg(pin).SetBits(pinIntEnaCPU)
	return nil
}

func (gpioInterrupts) DisableInterrupt(pin core.GPIOPin) {
	pinReg(pin).ClearBits(pinIntEnaMask)
}

func (gpioInterrupts) InterruptEnabled(pin core.GPIOPin) (bool, error) {
	return pinReg(pin).HasBits(pinIntEnaMask), nil
}

func (gpioInterrupts) PendingInterrupts() uint32 {
	return gpioPending.Get()
}

func (gpioInterrupts) AcknowledgeInterrupts(mask uint32) {
	gpioStatusClr.Set(mask)
}
