package protocol

// OutputBuffer is where encoders write bytes
type OutputBuffer interface {
	// Output appends data
	Output(data []byte)

	// Len returns the number of bytes written so far
	Len() int
}

// ScratchOutput is a fixed-size OutputBuffer that never allocates. Writes
// past its capacity are dropped.
type ScratchOutput struct {
	buf [FrameMax]byte
	pos int
}

// NewScratchOutput creates an empty ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

// Output appends data, truncating at capacity
func (s *ScratchOutput) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
}

// OutputByte appends one byte
func (s *ScratchOutput) OutputByte(b byte) {
	if s.pos < len(s.buf) {
		s.buf[s.pos] = b
		s.pos++
	}
}

// Len returns the number of bytes written
func (s *ScratchOutput) Len() int {
	return s.pos
}

// Result returns the accumulated bytes. The slice is reused by the next
// Reset.
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Reset clears the buffer
func (s *ScratchOutput) Reset() {
	s.pos = 0
}
