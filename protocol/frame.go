package protocol

import (
	"bytes"

	"wakebridge/core"
)

// Frame is one decoded trace frame
type Frame struct {
	Seq    uint8
	Events []core.TraceEvent
}

// Encoder packs trace events into frames. It keeps the running sequence
// number and never allocates, so the board can call it from its main loop.
type Encoder struct {
	seq     uint8
	count   uint32
	frame   ScratchOutput
	payload ScratchOutput
	event   ScratchOutput
}

// NewEncoder creates an encoder starting at sequence 0
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode writes events as one or more frames, handing each to emit. The
// slice passed to emit is only valid until emit returns.
func (e *Encoder) Encode(events []core.TraceEvent, emit func(frame []byte)) {
	e.payload.Reset()
	e.count = 0

	for _, evt := range events {
		e.event.Reset()
		encodeEvent(&e.event, evt)

		// One byte of the payload is the event count
		if 1+e.payload.Len()+e.event.Len() > FramePayloadMax {
			e.flush(emit)
		}
		e.payload.Output(e.event.Result())
		e.count++
	}

	if e.count > 0 {
		e.flush(emit)
	}
}

func (e *Encoder) flush(emit func([]byte)) {
	f := &e.frame
	f.Reset()
	f.OutputByte(0) // length, patched below
	f.OutputByte(FrameDest | e.seq&FrameSeqMask)
	EncodeVLQUint(f, e.count)
	f.Output(e.payload.Result())

	buf := f.Result()
	buf[FramePositionLen] = byte(len(buf) + FrameTrailerSize)
	crc := CRC16(buf)
	f.OutputByte(byte(crc >> 8))
	f.OutputByte(byte(crc))
	f.OutputByte(FrameSync)

	emit(f.Result())

	e.seq = (e.seq + 1) & FrameSeqMask
	e.payload.Reset()
	e.count = 0
}

func encodeEvent(output OutputBuffer, evt core.TraceEvent) {
	EncodeVLQUint(output, uint32(evt.Type))
	EncodeVLQUint(output, uint32(evt.Source))
	EncodeVLQUint64(output, uint64(evt.Clock))
	EncodeVLQUint64(output, evt.Value)
}

func decodeEvent(data *[]byte) (core.TraceEvent, error) {
	var evt core.TraceEvent

	typ, err := DecodeVLQUint(data)
	if err != nil {
		return evt, err
	}
	source, err := DecodeVLQUint(data)
	if err != nil {
		return evt, err
	}
	clock, err := DecodeVLQUint64(data)
	if err != nil {
		return evt, err
	}
	value, err := DecodeVLQUint64(data)
	if err != nil {
		return evt, err
	}

	evt.Type = uint8(typ)
	evt.Source = uint8(source)
	evt.Clock = core.Tick(clock)
	evt.Value = value
	return evt, nil
}

// Decoder reassembles frames from a byte stream. Corrupt input drops the
// decoder out of sync until the next sync byte, the same recovery the
// firmware transport uses.
type Decoder struct {
	buf        []byte
	synced     bool
	discarding bool // inside a corrupt stretch already counted
	haveSeq    bool
	expect     uint8
	dropped    int
	lost       int
}

// NewDecoder creates a decoder that assumes the stream starts on a frame
// boundary
func NewDecoder() *Decoder {
	return &Decoder{synced: true}
}

// Feed consumes data and calls handle for every complete, valid frame
func (d *Decoder) Feed(data []byte, handle func(Frame)) {
	d.buf = append(d.buf, data...)
	buf := d.buf

	for len(buf) > 0 {
		if !d.synced {
			i := bytes.IndexByte(buf, FrameSync)
			if i < 0 {
				buf = buf[:0]
				break
			}
			buf = buf[i+1:]
			d.synced = true
			continue
		}

		// Skip leading sync bytes
		if buf[0] == FrameSync {
			buf = buf[1:]
			continue
		}

		if len(buf) < FrameMin {
			break
		}

		n := int(buf[FramePositionLen])
		if n < FrameMin || n > FrameMax || buf[FramePositionSeq]&^FrameSeqMask != FrameDest {
			buf = buf[1:]
			d.desync()
			continue
		}

		if len(buf) < n {
			break
		}

		if buf[n-1] != FrameSync {
			buf = buf[1:]
			d.desync()
			continue
		}

		frameCRC := uint16(buf[n-FrameTrailerSize])<<8 | uint16(buf[n-FrameTrailerSize+1])
		if frameCRC != CRC16(buf[:n-FrameTrailerSize]) {
			buf = buf[1:]
			d.desync()
			continue
		}

		frame, err := parseFrame(buf[:n])
		buf = buf[n:]
		d.discarding = false
		if err != nil {
			d.dropped++
			continue
		}

		if d.haveSeq && frame.Seq != d.expect {
			d.lost += int((frame.Seq - d.expect) & FrameSeqMask)
		}
		d.expect = (frame.Seq + 1) & FrameSeqMask
		d.haveSeq = true

		handle(frame)
	}

	d.buf = append(d.buf[:0], buf...)
}

// Dropped returns how many corrupt stretches were discarded. Bytes skipped
// between two valid frames count once, however many resync attempts they
// took.
func (d *Decoder) Dropped() int { return d.dropped }

// Lost returns how many frames the sequence numbers show went missing
func (d *Decoder) Lost() int { return d.lost }

func (d *Decoder) desync() {
	d.synced = false
	if !d.discarding {
		d.discarding = true
		d.dropped++
	}
}

func parseFrame(msg []byte) (Frame, error) {
	frame := Frame{Seq: msg[FramePositionSeq] & FrameSeqMask}
	payload := msg[FrameHeaderSize : len(msg)-FrameTrailerSize]

	count, err := DecodeVLQUint(&payload)
	if err != nil {
		return frame, err
	}
	if count > FramePayloadMax {
		return frame, ErrInvalidVLQ
	}

	frame.Events = make([]core.TraceEvent, 0, count)
	for i := uint32(0); i < count; i++ {
		evt, err := decodeEvent(&payload)
		if err != nil {
			return frame, err
		}
		frame.Events = append(frame.Events, evt)
	}
	return frame, nil
}
