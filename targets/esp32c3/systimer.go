//go:build esp32c3

package main

import (
	"runtime/volatile"
	"unsafe"

	"wakebridge/core"
)

// ESP32-C3 SYSTIMER memory map
// The counter is 52 bits wide and runs at 16MHz off XTAL. Unit 0 is the
// free-running counter; comparators 0-2 are the three alarm channels.
//
// CONF          @ 0x00 - bit 24-22: target0..2 work enable
// UNIT0_OP      @ 0x04 - bit 30: update (latch value), bit 29: value valid
// TARGETn_HI/LO @ 0x1C + 8n / 0x20 + 8n
// TARGETn_CONF  @ 0x34 + 4n - bit 30: period mode, bit 31: unit select
// UNIT0_VALUE   @ 0x40 (hi) / 0x44 (lo)
// COMPn_LOAD    @ 0x50 + 4n - write 1 to load target into comparator
// INT_ENA/RAW/CLR/ST @ 0x64/0x68/0x6C/0x70, bit n per comparator
const (
	sysTimerBase = 0x60023000

	sysTimerConf       = sysTimerBase + 0x00
	sysTimerUnit0Op    = sysTimerBase + 0x04
	sysTimerTarget0Hi  = sysTimerBase + 0x1C
	sysTimerTarget0Lo  = sysTimerBase + 0x20
	sysTimerTarget0Cfg = sysTimerBase + 0x34
	sysTimerUnit0Hi    = sysTimerBase + 0x40
	sysTimerUnit0Lo    = sysTimerBase + 0x44
	sysTimerComp0Load  = sysTimerBase + 0x50
	sysTimerIntEna     = sysTimerBase + 0x64
	sysTimerIntClr     = sysTimerBase + 0x6C

	unitOpUpdate    = 1 << 30
	unitOpValid     = 1 << 29
	targetWorkEn0   = 1 << 24
	targetHiMask    = 0xFFFFF // upper 20 of 52 bits
	targetPeriodMod = 1 << 30
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

var (
	sysConf    = reg(sysTimerConf)
	sysUnit0Op = reg(sysTimerUnit0Op)
	sysUnit0Hi = reg(sysTimerUnit0Hi)
	sysUnit0Lo = reg(sysTimerUnit0Lo)
	sysIntEna  = reg(sysTimerIntEna)
	sysIntClr  = reg(sysTimerIntClr)
)

// sysTimerCounter reads SYSTIMER unit 0
type sysTimerCounter struct{}

// Now latches unit 0 and reads the 52-bit value
func (sysTimerCounter) Now() core.Tick {
	sysUnit0Op.Set(unitOpUpdate)
	for !sysUnit0Op.HasBits(unitOpValid) {
	}
	hi := sysUnit0Hi.Get()
	lo := sysUnit0Lo.Get()
	return core.Tick(uint64(hi)<<32 | uint64(lo))
}

// sysTimerAlarm is one SYSTIMER comparator bound to unit 0
type sysTimerAlarm struct {
	id   uint8
	hi   *volatile.Register32
	lo   *volatile.Register32
	conf *volatile.Register32
	load *volatile.Register32
}

func newSysTimerAlarm(id uint8) *sysTimerAlarm {
	off := uintptr(id)
	return &sysTimerAlarm{
		id:   id,
		hi:   reg(sysTimerTarget0Hi + 8*off),
		lo:   reg(sysTimerTarget0Lo + 8*off),
		conf: reg(sysTimerTarget0Cfg + 4*off),
		load: reg(sysTimerComp0Load + 4*off),
	}
}

func (a *sysTimerAlarm) ID() uint8 { return a.id }

// SetTarget programs a one-shot compare against unit 0
func (a *sysTimerAlarm) SetTarget(target core.Tick) {
	// Stop the comparator while the target is rewritten
	sysConf.ClearBits(targetWorkEn0 >> a.id)

	// One-shot, unit 0
	a.conf.ClearBits(targetPeriodMod | 1<<31)
	a.hi.Set(uint32(uint64(target)>>32) & targetHiMask)
	a.lo.Set(uint32(target))
	a.load.Set(1)

	sysConf.SetBits(targetWorkEn0 >> a.id)
}

func (a *sysTimerAlarm) EnableInterrupt() {
	sysIntEna.SetBits(1 << a.id)
}

func (a *sysTimerAlarm) ClearInterrupt() {
	sysIntClr.Set(1 << a.id)
}

// sysTimerChannels returns the three comparators in channel order
func sysTimerChannels() [core.AlarmCount]core.AlarmChannel {
	var ch [core.AlarmCount]core.AlarmChannel
	for i := range ch {
		ch[i] = newSysTimerAlarm(uint8(i))
	}
	return ch
}
