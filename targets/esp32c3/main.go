//go:build esp32c3

// Firmware for ESP32-C3 boards: two periodic tasks and a button task run on
// the cooperative executor, woken by SYSTIMER alarms and GPIO interrupts.
// Bridge events are streamed to the host as trace frames on the console
// UART, interleaved with the tasks' text output.
package main

import (
	"device/riscv"
	"machine"

	"wakebridge/core"
	"wakebridge/protocol"
)

const (
	buttonPin = machine.GPIO1

	helloPeriodMs = 10_000
	bingPeriodMs  = 30_000
	tracePeriodMs = 1_000
)

var (
	mask = &core.InterruptMask{}

	traceEncoder = protocol.NewEncoder()
	traceBuf     = make([]core.TraceEvent, 0, core.TraceRingSize)
	syncByte     = []byte{protocol.FrameSync}
)

func main() {
	println("Init!")

	// Button reads low until pressed
	buttonPin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	trace := core.NewTraceRing(mask)

	driver := core.NewTimerDriver(mask, sysTimerCounter{}, sysTimerChannels())
	driver.SetTrace(trace)
	alarmDispatch = driver.Dispatchers()

	pins := core.NewPinWaiter(mask, gpioInterrupts{})
	pins.SetTrace(trace, sysTimerCounter{})
	gpioDispatch = pins.Dispatcher()

	installInterrupts()

	queue, err := core.NewTimerQueue(driver)
	if err != nil {
		println("[INIT] timer queue:", err.Error())
		return
	}

	exec := core.NewExecutor()
	exec.SetErrorHandler(func(err error) {
		println("[TASK] stopped:", err.Error())
	})

	exec.Spawn(core.Every(queue, core.TicksFromMillis(helloPeriodMs), func() {
		println("Hello world from the wakebridge executor!")
	}))
	exec.Spawn(core.Every(queue, core.TicksFromMillis(bingPeriodMs), func() {
		println("Bing!")
	}))
	exec.Spawn(core.OnPinEvent(pins, core.GPIOPin(buttonPin), core.PinRising, func() {
		println("Button Pressed!")
	}))
	exec.Spawn(core.Every(queue, core.TicksFromMillis(tracePeriodMs), func() {
		flushTrace(trace)
	}))

	for {
		exec.RunOnce()

		// wfi returns on a pending interrupt even while masked
		state := mask.Enter()
		if !exec.Ready() {
			riscv.Asm("wfi")
		}
		mask.Exit(state)
	}
}

// flushTrace drains the ring and writes it as frames. A leading sync byte
// lets the host decoder recover after text output.
func flushTrace(trace *core.TraceRing) {
	traceBuf = trace.Drain(traceBuf[:0])
	if len(traceBuf) == 0 {
		return
	}
	_, _ = machine.Serial.Write(syncByte)
	traceEncoder.Encode(traceBuf, func(frame []byte) {
		_, _ = machine.Serial.Write(frame)
	})
}
