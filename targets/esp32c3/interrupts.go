//go:build esp32c3

package main

import (
	"runtime/interrupt"

	"wakebridge/core"
)

// Interrupt matrix routing
// Each peripheral source has a map register at INTERRUPT_CORE0 + 4*source
// holding the CPU interrupt number it is routed to.
//
// GPIO             source 16 @ 0x40
// SYSTIMER_TARGET0 source 37 @ 0x94
// SYSTIMER_TARGET1 source 38 @ 0x98
// SYSTIMER_TARGET2 source 39 @ 0x9C
const (
	intMatrixBase = 0x600C2000

	intMapGPIO    = intMatrixBase + 0x40
	intMapSysTgt0 = intMatrixBase + 0x94
	intMapSysTgt1 = intMatrixBase + 0x98
	intMapSysTgt2 = intMatrixBase + 0x9C
)

// CPU interrupt lines. The machine package keeps 6 for its own pin
// change handling, so stay clear of it.
const (
	cpuIntAlarm0 = 10
	cpuIntAlarm1 = 11
	cpuIntAlarm2 = 12
	cpuIntGPIO   = 13
)

var (
	alarmDispatch [core.AlarmCount]core.TimerInterruptDispatcher
	gpioDispatch  *core.GPIOInterruptDispatcher
)

func handleAlarm0(interrupt.Interrupt) { alarmDispatch[0].Handle() }
func handleAlarm1(interrupt.Interrupt) { alarmDispatch[1].Handle() }
func handleAlarm2(interrupt.Interrupt) { alarmDispatch[2].Handle() }
func handleGPIO(interrupt.Interrupt)   { gpioDispatch.Handle() }

// installInterrupts routes the SYSTIMER comparators and the GPIO block to
// their CPU lines and enables them. Must run after the dispatchers are set.
func installInterrupts() {
	reg(intMapSysTgt0).Set(cpuIntAlarm0)
	reg(intMapSysTgt1).Set(cpuIntAlarm1)
	reg(intMapSysTgt2).Set(cpuIntAlarm2)
	reg(intMapGPIO).Set(cpuIntGPIO)

	must(interrupt.New(cpuIntAlarm0, handleAlarm0).Enable())
	must(interrupt.New(cpuIntAlarm1, handleAlarm1).Enable())
	must(interrupt.New(cpuIntAlarm2, handleAlarm2).Enable())
	must(interrupt.New(cpuIntGPIO, handleGPIO).Enable())
}

func must(err error) {
	if err != nil {
		println("[INIT] interrupt enable failed:", err.Error())
		for {
		}
	}
}
