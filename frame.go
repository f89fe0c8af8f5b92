package oem7

import (
	"bytes"
	"time"
)

// FrameReader assembles raw chunks from a Port into newline-bounded
// frames. Every wait is a short readiness poll nested inside an
// overall deadline, which is what keeps all blocking points bounded
// even when the device is unplugged or stays silent.
type FrameReader struct {
	port *Port
	poll time.Duration
}

// NewFrameReader wraps a port with the given poll slice
func NewFrameReader(port *Port, poll time.Duration) *FrameReader {
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	return &FrameReader{port: port, poll: poll}
}

// CollectLine accumulates chunks until a line terminator appears in
// the stream or the overall deadline elapses, and returns whatever
// was captured. An empty result is a valid outcome. Transient read
// errors abandon the current wait early without failing the caller.
func (r *FrameReader) CollectLine(deadline time.Duration) ([]byte, error) {
	end := time.Now().Add(deadline)
	var buf []byte

	for time.Now().Before(end) {
		ready, err := r.port.WaitReadable(r.poll)
		if err != nil {
			return buf, err
		}
		if !ready {
			continue
		}

		chunk, err := r.port.ReadChunk()
		if err != nil {
			// Momentary I/O error: keep what we have.
			return buf, nil
		}
		if len(chunk) == 0 {
			continue
		}

		buf = append(buf, chunk...)
		if bytes.ContainsAny(chunk, "\r\n") {
			break
		}
	}
	return buf, nil
}

// splitLines breaks captured bytes on \r and \n, dropping empty
// segments the way successive CR+LF pairs produce them.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
