// Package slip implements SLIP byte framing (RFC 1055): frames are
// delimited by END bytes, with END and ESC occurrences in the payload
// replaced by two-byte escape sequences.
package slip

import "errors"

const (
	End    = 0xC0
	Esc    = 0xDB
	EscEnd = 0xDC
	EscEsc = 0xDD
)

// DefaultMaxFrame bounds the decoder's in-progress frame buffer.
// Anything larger than this on a serial link is corruption.
const DefaultMaxFrame = 10240

// ErrCorrupt is reported once each time the decoder gives up on an
// in-progress frame and starts discarding until the next END.
var ErrCorrupt = errors.New("slip: corrupt frame, resynchronizing")

// Encode wraps payload in SLIP framing, escaping END and ESC bytes.
func Encode(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+2)
	out = append(out, End)
	for _, b := range payload {
		switch b {
		case End:
			out = append(out, Esc, EscEnd)
		case Esc:
			out = append(out, Esc, EscEsc)
		default:
			out = append(out, b)
		}
	}
	out = append(out, End)
	return out
}

// Decoder assembles frames from an incoming byte stream. Partial
// frames are buffered across Write calls; a frame either comes out
// complete or not at all. The zero value is ready to use.
type Decoder struct {
	buf      []byte
	escaped  bool
	resync   bool
	maxFrame int
}

// NewDecoder returns a Decoder with a custom frame size cap.
// maxFrame <= 0 means DefaultMaxFrame.
func NewDecoder(maxFrame int) *Decoder {
	return &Decoder{maxFrame: maxFrame}
}

func (d *Decoder) cap() int {
	if d.maxFrame <= 0 {
		return DefaultMaxFrame
	}
	return d.maxFrame
}

// Write consumes a chunk of stream bytes and returns the frames
// completed by it, plus one ErrCorrupt per resync entry caused by it.
// Empty frames (adjacent END bytes) are swallowed.
func (d *Decoder) Write(p []byte) ([][]byte, []error) {
	var frames [][]byte
	var errs []error
	for _, b := range p {
		if d.resync {
			if b == End {
				d.resync = false
			}
			continue
		}
		if d.escaped {
			d.escaped = false
			switch b {
			case EscEnd:
				b = End
			case EscEsc:
				b = Esc
			case End:
				// A dangling ESC at the end of a frame. The frame is
				// corrupt, but the END also puts the stream back on a
				// frame boundary, so no resync is needed.
				errs = append(errs, ErrCorrupt)
				d.buf = d.buf[:0]
				continue
			default:
				// Invalid escape code. The frame can no longer be
				// trusted; drop it and everything up to the next END.
				errs = append(errs, ErrCorrupt)
				d.abort()
				continue
			}
			frames, errs = d.push(b, frames, errs)
			continue
		}
		switch b {
		case End:
			if len(d.buf) > 0 {
				frame := make([]byte, len(d.buf))
				copy(frame, d.buf)
				frames = append(frames, frame)
			}
			d.buf = d.buf[:0]
		case Esc:
			d.escaped = true
		default:
			frames, errs = d.push(b, frames, errs)
		}
	}
	return frames, errs
}

func (d *Decoder) push(b byte, frames [][]byte, errs []error) ([][]byte, []error) {
	if len(d.buf) >= d.cap() {
		errs = append(errs, ErrCorrupt)
		d.abort()
		return frames, errs
	}
	d.buf = append(d.buf, b)
	return frames, errs
}

func (d *Decoder) abort() {
	d.buf = d.buf[:0]
	d.escaped = false
	d.resync = true
}

// Reset discards all decoder state, including any partial frame.
// Used when the underlying stream is reopened.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.escaped = false
	d.resync = false
}
