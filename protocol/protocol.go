// Package protocol implements the trace wire format the board streams to
// the host monitor. Frames reuse the Klipper message block layout:
//
//	len | seq | payload | crc16 (big-endian) | 0x7E
//
// and the payload is a VLQ event count followed by the VLQ-encoded events.
package protocol

// Version of the trace wire format
const Version = "0.1.0"

// Frame constants
const (
	FrameHeaderSize  = 2 // len, seq
	FrameTrailerSize = 3 // crc16, sync
	FrameMin         = FrameHeaderSize + FrameTrailerSize
	FrameMax         = 64
	FramePayloadMax  = FrameMax - FrameMin
	FramePositionLen = 0
	FramePositionSeq = 1
	FrameSync        = 0x7E
	FrameDest        = 0x10

	// FrameSeqMask selects the 4-bit sequence number
	FrameSeqMask = 0x0F
)
