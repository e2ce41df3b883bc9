package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newMockWaiter(pins int) (*PinWaiter, *mockGPIO) {
	g := newMockGPIO(pins)
	return NewPinWaiter(&InterruptMask{}, g), g
}

func mustWait(t *testing.T, p *PinWaiter, pin GPIOPin, event PinEvent) *PinFuture {
	t.Helper()
	f, err := p.BeginWait(pin, event)
	if err != nil {
		t.Fatalf("BeginWait(%d, %s) failed: %v", pin, event, err)
	}
	return f
}

func TestGPIODispatcherWakesOnlyPendingPins(t *testing.T) {
	p, g := newMockWaiter(26)

	pins := []GPIOPin{3, 5, 7, 12, 20}
	wakers := make(map[GPIOPin]*countingWaker)
	for _, pin := range pins {
		f := mustWait(t, p, pin, PinRising)
		w := &countingWaker{}
		wakers[pin] = w
		if done, err := f.Poll(w); done || err != nil {
			t.Fatalf("Pin %d resolved before any event: done=%v err=%v", pin, done, err)
		}
	}

	g.pending = 1<<5 | 1<<12
	p.Dispatcher().Handle()

	for _, pin := range pins {
		w := wakers[pin]
		enabled, _ := g.InterruptEnabled(pin)
		if pin == 5 || pin == 12 {
			if w.count != 1 {
				t.Errorf("Pin %d: expected one wake, got %d", pin, w.count)
			}
			if enabled {
				t.Errorf("Pin %d: interrupt should be disabled after dispatch", pin)
			}
			continue
		}
		if w.count != 0 {
			t.Errorf("Pin %d woken without a pending bit", pin)
		}
		if !enabled {
			t.Errorf("Pin %d: interrupt enable bit was touched", pin)
		}
		if !p.wakers.Registered(pin) {
			t.Errorf("Pin %d: registration was dropped", pin)
		}
	}

	if len(g.acks) != 1 || g.acks[0] != 1<<5|1<<12 {
		t.Errorf("Expected a single acknowledge of the snapshot, got %v", g.acks)
	}
}

func TestGPIODispatcherRisingEdgeScenario(t *testing.T) {
	p, g := newMockWaiter(26)
	log := &[]string{}
	g.log = log

	other := mustWait(t, p, 9, PinFalling)
	other.Poll(&countingWaker{})

	f := mustWait(t, p, 3, PinRising)
	if g.events[3] != PinRising {
		t.Fatalf("Pin 3 configured for %s", g.events[3])
	}
	w := &countingWaker{name: "3", log: log}
	if done, _ := f.Poll(w); done {
		t.Fatal("Future resolved before the edge")
	}

	g.pending = 0b1000
	p.Dispatcher().Handle()

	if w.count != 1 {
		t.Fatalf("Expected pin 3 woken once, got %d", w.count)
	}
	if g.enabled != 1<<9 {
		t.Errorf("Only pin 3's enable bit should clear, enabled mask now %b", g.enabled)
	}
	if trail := strings.Join(*log, ","); trail != "ack,disable3,wake3" {
		t.Errorf("Expected ack, disable, wake ordering, got %s", trail)
	}

	done, err := f.Poll(w)
	if err != nil || !done {
		t.Errorf("Expected future resolved after dispatch, got done=%v err=%v", done, err)
	}
}

func TestPollAfterEventAlreadyFired(t *testing.T) {
	p, g := newMockWaiter(26)

	f := mustWait(t, p, 7, PinAnyEdge)
	g.edge(7)
	p.Dispatcher().Handle()

	w := &countingWaker{}
	done, err := f.Poll(w)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if !done {
		t.Error("Poll must resolve when the event fired before registration")
	}
	if w.count != 0 {
		t.Errorf("Resolution should not need a wake, got %d", w.count)
	}
}

func TestRepeatedEdgesCoalesce(t *testing.T) {
	p, g := newMockWaiter(26)

	f := mustWait(t, p, 4, PinRising)
	w := &countingWaker{}
	f.Poll(w)

	g.edge(4)
	p.Dispatcher().Handle()
	g.edge(4)
	p.Dispatcher().Handle()

	if w.count != 1 {
		t.Errorf("Expected one wake for two edges, got %d", w.count)
	}

	resolutions := 0
	for i := 0; i < 3; i++ {
		if done, _ := f.Poll(w); done {
			resolutions++
			break
		}
	}
	if resolutions != 1 {
		t.Errorf("Expected exactly one resolution, got %d", resolutions)
	}
	if g.pending != 0 {
		t.Errorf("Second edge should not latch while disarmed, pending=%b", g.pending)
	}
}

func TestPollRegistrationOverwrites(t *testing.T) {
	p, g := newMockWaiter(26)

	f := mustWait(t, p, 2, PinLow)
	stale := &countingWaker{}
	fresh := &countingWaker{}
	f.Poll(stale)
	f.Poll(fresh)

	g.edge(2)
	p.Dispatcher().Handle()

	if stale.count != 0 || fresh.count != 1 {
		t.Errorf("Expected only the latest waker woken: stale=%d fresh=%d", stale.count, fresh.count)
	}
	if p.wakers.Registered(2) {
		t.Error("Wake should consume the registration")
	}
}

func TestDispatcherWithoutWaiter(t *testing.T) {
	p, g := newMockWaiter(26)

	mustWait(t, p, 6, PinHigh)
	g.edge(6)
	p.Dispatcher().Handle()

	if enabled, _ := g.InterruptEnabled(6); enabled {
		t.Error("Pin 6 should be disarmed even with nobody registered")
	}
}

func TestDispatcherEmptySnapshot(t *testing.T) {
	p, g := newMockWaiter(26)
	p.Dispatcher().Handle()
	if len(g.acks) != 0 {
		t.Errorf("Nothing pending, expected no acknowledge write, got %v", g.acks)
	}
}

func TestDispatcherUnknownPinPanics(t *testing.T) {
	p, g := newMockWaiter(26)
	g.pending = 1 << 30

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for a pending bit beyond the pin count")
		}
	}()
	p.Dispatcher().Handle()
}

func TestBeginWaitInvalidPin(t *testing.T) {
	p, _ := newMockWaiter(26)

	_, err := p.BeginWait(26, PinRising)
	if !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Expected ErrInvalidPin, got %v", err)
	}
}

func TestPollPropagatesPinError(t *testing.T) {
	p, g := newMockWaiter(26)

	f := mustWait(t, p, 8, PinRising)
	g.readErrs[8] = errPinRead

	done, err := f.Poll(&countingWaker{})
	if done || !errors.Is(err, errPinRead) {
		t.Errorf("Expected the pin's own error, got done=%v err=%v", done, err)
	}
}

func TestWaitHelpersConfigureEvent(t *testing.T) {
	p, g := newMockWaiter(26)

	cases := []struct {
		begin func(GPIOPin) (*PinFuture, error)
		want  PinEvent
	}{
		{p.WaitForHigh, PinHigh},
		{p.WaitForLow, PinLow},
		{p.WaitForRisingEdge, PinRising},
		{p.WaitForFallingEdge, PinFalling},
		{p.WaitForAnyEdge, PinAnyEdge},
	}

	for i, tc := range cases {
		pin := GPIOPin(i + 10)
		f, err := tc.begin(pin)
		if err != nil {
			t.Fatalf("%s: %v", tc.want, err)
		}
		if g.events[pin] != tc.want || f.Event() != tc.want {
			t.Errorf("Pin %d: configured %s, want %s", pin, g.events[pin], tc.want)
		}
		if enabled, _ := g.InterruptEnabled(pin); !enabled {
			t.Errorf("Pin %d: interrupt not enabled", pin)
		}
	}
}

func TestPinFutureWait(t *testing.T) {
	p, g := newMockWaiter(26)
	f := mustWait(t, p, 1, PinRising)

	go func() {
		for !registered(p, 1) {
			time.Sleep(time.Millisecond)
		}
		state := p.cs.Enter()
		g.edge(1)
		p.cs.Exit(state)
		p.Dispatcher().Handle()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

func TestPinFutureWaitCancelled(t *testing.T) {
	p, _ := newMockWaiter(26)
	f := mustWait(t, p, 1, PinRising)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func registered(p *PinWaiter, pin GPIOPin) bool {
	state := p.cs.Enter()
	defer p.cs.Exit(state)
	return p.wakers.Registered(pin)
}
