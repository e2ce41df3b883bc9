package protocol

import (
	"errors"
	"testing"
)

func TestVLQEncodeDecodeInt(t *testing.T) {
	testCases := []int32{0, 1, -1, 95, 96, -32, -33, 4095, -4096, 1000000, -1000000, 1<<31 - 1, -1 << 31}

	for _, expected := range testCases {
		output := NewScratchOutput()
		EncodeVLQInt(output, expected)
		encoded := output.Result()

		data := encoded
		decoded, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("Failed to decode VLQ for value %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("VLQ mismatch: expected %d, got %d (encoded as %v)", expected, decoded, encoded)
		}
		if len(data) != 0 {
			t.Errorf("VLQ decode left %d bytes for value %d", len(data), expected)
		}
	}
}

func TestVLQSmallValuesUseOneByte(t *testing.T) {
	for _, v := range []uint32{0, 1, 6, 95} {
		output := NewScratchOutput()
		EncodeVLQUint(output, v)
		if output.Len() != 1 {
			t.Errorf("Value %d encoded in %d bytes", v, output.Len())
		}
	}
}

func TestVLQUint64(t *testing.T) {
	testCases := []uint64{0, 1, 1 << 32, 160_000_000, 1<<63 + 12345, ^uint64(0) - 1}

	for _, expected := range testCases {
		output := NewScratchOutput()
		EncodeVLQUint64(output, expected)

		data := output.Result()
		decoded, err := DecodeVLQUint64(&data)
		if err != nil {
			t.Errorf("Failed to decode %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("VLQ64 mismatch: expected %d, got %d", expected, decoded)
		}
	}
}

func TestVLQBufferTooSmall(t *testing.T) {
	data := []byte{0x80} // Continuation byte with nothing after it
	if _, err := DecodeVLQInt(&data); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}

	data = []byte{}
	if _, err := DecodeVLQUint64(&data); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("Expected ErrBufferTooSmall for empty input, got %v", err)
	}
}

func TestVLQTooManyGroups(t *testing.T) {
	data := []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	if _, err := DecodeVLQInt(&data); !errors.Is(err, ErrInvalidVLQ) {
		t.Errorf("Expected ErrInvalidVLQ, got %v", err)
	}
}
