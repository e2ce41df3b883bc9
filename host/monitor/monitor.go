// Package monitor decodes the trace frames a board streams over its UART
// and logs every alarm and pin event.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"wakebridge/core"
	"wakebridge/host/logger"
	"wakebridge/protocol"
)

const readChunk = 256

// Stats counts what the monitor has seen so far.
type Stats struct {
	Frames  int
	Events  int
	Dropped int
	Lost    int
}

// Monitor reads a byte stream and reports decoded trace events.
type Monitor struct {
	src     io.Reader
	dec     *protocol.Decoder
	follow  bool
	onEvent func(core.TraceEvent)
	stats   Stats
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithFollow keeps reading past io.EOF until the context ends. Serial
// ports report a read timeout as EOF.
func WithFollow() Option {
	return func(m *Monitor) { m.follow = true }
}

// WithEventHandler adds a callback run for every decoded event after it
// has been logged.
func WithEventHandler(fn func(core.TraceEvent)) Option {
	return func(m *Monitor) { m.onEvent = fn }
}

// New creates a monitor reading from src.
func New(src io.Reader, opts ...Option) *Monitor {
	m := &Monitor{
		src: src,
		dec: protocol.NewDecoder(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stats returns the counters accumulated so far.
func (m *Monitor) Stats() Stats {
	s := m.stats
	s.Dropped = m.dec.Dropped()
	s.Lost = m.dec.Lost()
	return s
}

// Run reads until the source ends, fails, or ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	buf := make([]byte, readChunk)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, err := m.src.Read(buf)
		if n > 0 {
			m.dec.Feed(buf[:n], func(f protocol.Frame) { m.handleFrame(ctx, f) })
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if !m.follow {
				s := m.Stats()
				logger.InfoKV(ctx, "trace stream ended",
					"frames", s.Frames, "events", s.Events, "dropped", s.Dropped, "lost", s.Lost)
				return nil
			}
		default:
			return fmt.Errorf("read trace stream: %w", err)
		}
	}
}

func (m *Monitor) handleFrame(ctx context.Context, f protocol.Frame) {
	m.stats.Frames++
	logger.DebugKV(ctx, "trace frame", "seq", f.Seq, "events", len(f.Events))

	before := m.stats.Lost
	if lost := m.dec.Lost(); lost != before {
		logger.WarnKV(ctx, "trace frames lost", "count", lost-before, "seq", f.Seq)
		m.stats.Lost = lost
	}

	for _, evt := range f.Events {
		m.stats.Events++
		logEvent(ctx, evt)
		if m.onEvent != nil {
			m.onEvent(evt)
		}
	}
}

func logEvent(ctx context.Context, evt core.TraceEvent) {
	kvs := []any{
		"event", core.EventName(evt.Type),
		"at_us", core.TicksToMicros(evt.Clock),
	}

	switch evt.Type {
	case core.EvtAlarmAllocated, core.EvtAlarmFired:
		kvs = append(kvs, "alarm", evt.Source)
	case core.EvtAlarmArmed, core.EvtAlarmPast:
		kvs = append(kvs, "alarm", evt.Source, "deadline_us", core.TicksToMicros(core.Tick(evt.Value)))
	case core.EvtPinArmed:
		kvs = append(kvs, "pin", evt.Source, "trigger", core.PinEvent(evt.Value).String())
	case core.EvtPinFired:
		kvs = append(kvs, "pin", evt.Source)
	default:
		kvs = append(kvs, "source", evt.Source, "value", evt.Value)
		logger.WarnKV(ctx, "unknown trace event", kvs...)
		return
	}

	logger.InfoKV(ctx, "trace", kvs...)
}
