// Package diag assembles the diagnostic channel's byte payloads into
// ordered text lines for the transcript.
package diag

import (
	"strings"
	"unicode/utf8"
)

const tabWidth = 4

// Stream accumulates diagnostic bytes and emits completed lines.
// Decoding is best-effort: invalid UTF-8 becomes U+FFFD, carriage
// returns are dropped and tabs expand to spaces, so a misbehaving
// device can never wedge the transcript.
type Stream struct {
	partial strings.Builder
}

// Append consumes one payload and returns the lines it completed, in
// order. A trailing fragment without a newline is held for the next
// Append or Flush.
func (s *Stream) Append(p []byte) []string {
	var lines []string
	for len(p) > 0 {
		r, size := utf8.DecodeRune(p)
		p = p[size:]
		switch r {
		case '\n':
			lines = append(lines, s.partial.String())
			s.partial.Reset()
		case '\r':
			// ignore
		case '\t':
			s.partial.WriteString(strings.Repeat(" ", tabWidth))
		case utf8.RuneError:
			if size == 1 {
				s.partial.WriteRune('�')
			} else {
				s.partial.WriteRune(r)
			}
		default:
			s.partial.WriteRune(r)
		}
	}
	return lines
}

// Pending returns the held partial line without consuming it.
func (s *Stream) Pending() string { return s.partial.String() }

// Flush returns the held partial line, if any, and clears it. Called
// on disconnect so buffered output is not lost.
func (s *Stream) Flush() (string, bool) {
	if s.partial.Len() == 0 {
		return "", false
	}
	line := s.partial.String()
	s.partial.Reset()
	return line, true
}
