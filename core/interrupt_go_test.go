//go:build !tinygo

package core

import (
	"testing"
	"time"
)

func TestInterruptMaskNests(t *testing.T) {
	m := &InterruptMask{}

	outer := m.Enter()
	inner := m.Enter()

	acquired := make(chan struct{})
	go func() {
		s := m.Enter()
		m.Exit(s)
		close(acquired)
	}()

	m.Exit(inner)
	select {
	case <-acquired:
		t.Fatalf("Inner Exit released the mask")
	case <-time.After(20 * time.Millisecond):
	}

	m.Exit(outer)
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatalf("Outer Exit did not release the mask")
	}
}
