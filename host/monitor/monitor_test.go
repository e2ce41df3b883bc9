package monitor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"wakebridge/core"
	"wakebridge/host/logger"
	"wakebridge/protocol"
)

func traceStream(events []core.TraceEvent) []byte {
	var stream []byte
	protocol.NewEncoder().Encode(events, func(frame []byte) {
		stream = append(stream, frame...)
	})
	return stream
}

func testContext(buf *bytes.Buffer) context.Context {
	return logger.ToContext(context.Background(), logger.NewWithWriter(buf, zapcore.DebugLevel))
}

func TestRunLogsEvents(t *testing.T) {
	t.Parallel()

	events := []core.TraceEvent{
		{Type: core.EvtAlarmAllocated, Source: 0},
		{Type: core.EvtAlarmArmed, Source: 0, Clock: 16, Value: 16_000_016},
		{Type: core.EvtPinArmed, Source: 1, Clock: 32, Value: uint64(core.PinRising)},
		{Type: core.EvtPinFired, Source: 1, Clock: 1600},
		{Type: core.EvtAlarmFired, Source: 0, Clock: 16_000_016},
	}

	var logs bytes.Buffer
	var got []core.TraceEvent
	m := New(
		iotest.OneByteReader(bytes.NewReader(traceStream(events))),
		WithEventHandler(func(evt core.TraceEvent) { got = append(got, evt) }),
	)

	require.NoError(t, m.Run(testContext(&logs)))
	require.Equal(t, events, got)

	s := m.Stats()
	assert.Equal(t, 1, s.Frames)
	assert.Equal(t, len(events), s.Events)
	assert.Zero(t, s.Dropped)
	assert.Zero(t, s.Lost)

	out := logs.String()
	assert.Contains(t, out, "ALARM_ARM")
	assert.Contains(t, out, "PIN_FIRE")
	assert.Contains(t, out, "rising")
	assert.Contains(t, out, "trace stream ended")
	assert.Contains(t, out, "trace frame")
}

func TestRunSkipsGarbage(t *testing.T) {
	t.Parallel()

	evt := core.TraceEvent{Type: core.EvtPinFired, Source: 7, Clock: 99}
	stream := append([]byte{0x01, 0xFF, 0x33, protocol.FrameSync}, traceStream([]core.TraceEvent{evt})...)

	var logs bytes.Buffer
	var got []core.TraceEvent
	m := New(bytes.NewReader(stream), WithEventHandler(func(e core.TraceEvent) { got = append(got, e) }))

	require.NoError(t, m.Run(testContext(&logs)))
	require.Equal(t, []core.TraceEvent{evt}, got)
}

func TestRunUnknownEventWarns(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	m := New(bytes.NewReader(traceStream([]core.TraceEvent{{Type: 42, Source: 3}})))

	require.NoError(t, m.Run(testContext(&logs)))
	assert.Contains(t, logs.String(), "unknown trace event")
	assert.Equal(t, 1, m.Stats().Events)
}

func TestRunReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("usb unplugged")
	m := New(iotest.ErrReader(boom))

	err := m.Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRunFollowStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	reads := 0
	src := readerFunc(func(p []byte) (int, error) {
		reads++
		if reads == 3 {
			cancel()
		}
		return 0, io.EOF
	})

	require.NoError(t, New(src, WithFollow()).Run(ctx))
	assert.Equal(t, 3, reads)
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
