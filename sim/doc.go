// Package sim simulates the ESP32-C3 SYSTIMER and GPIO interrupt blocks on
// the host. The simulated peripherals implement the core HAL interfaces and
// raise their attached interrupt handlers the way the chip's interrupt
// matrix would, so the timer driver and the pin wait path can be exercised
// end to end without hardware.
package sim
