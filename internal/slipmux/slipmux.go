// Package slipmux layers multiple logical channels over one
// SLIP-framed serial stream, per draft-bormann-t2trg-slipmux: the
// first byte of every frame marks the channel it belongs to.
package slipmux

import (
	"fmt"

	"github.com/marcus/slipterm/internal/slip"
)

// Channel markers. IP packets carry no dedicated marker: their first
// byte is the IP version nibble, which the draft reserves the
// 0x45-0x4F and 0x60-0x6F ranges for.
const (
	markerDiagnostic = 0x0A
	markerCoAP       = 0xA9
)

// Kind classifies a frame by its leading marker byte.
type Kind int

const (
	// Diagnostic is line-oriented shell/debug text.
	Diagnostic Kind = iota
	// CoAP is a structured configuration message exchange.
	CoAP
	// IPPacket is a raw IP datagram for the auxiliary network path.
	IPPacket
	// Unknown is any marker outside the assigned ranges. Frames of
	// this kind must be surfaced as errors, never silently dropped.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Diagnostic:
		return "diagnostic"
	case CoAP:
		return "coap"
	case IPPacket:
		return "ip"
	default:
		return "unknown"
	}
}

// Frame is one demultiplexed slipmux frame. Payload excludes the
// marker byte for Diagnostic and CoAP frames; IP packets keep their
// full bytes since the version byte belongs to the datagram.
type Frame struct {
	Kind    Kind
	Payload []byte
}

// UnknownMarkerError reports a frame whose marker byte maps to no
// assigned channel, indicating stream desync or a misbehaving peer.
type UnknownMarkerError struct {
	Marker byte
	Len    int
}

func (e *UnknownMarkerError) Error() string {
	return fmt.Sprintf("slipmux: unknown channel marker 0x%02x (%d byte frame)", e.Marker, e.Len)
}

// Classify returns the channel kind a completed frame belongs to.
func Classify(frame []byte) Kind {
	if len(frame) == 0 {
		return Unknown
	}
	switch b := frame[0]; {
	case b == markerDiagnostic:
		return Diagnostic
	case b == markerCoAP:
		return CoAP
	case b >= 0x45 && b <= 0x4F, b >= 0x60 && b <= 0x6F:
		return IPPacket
	default:
		return Unknown
	}
}

// Split classifies a frame and strips its marker. Unknown frames
// return an *UnknownMarkerError and no payload.
func Split(frame []byte) (Frame, error) {
	kind := Classify(frame)
	switch kind {
	case Diagnostic, CoAP:
		return Frame{Kind: kind, Payload: frame[1:]}, nil
	case IPPacket:
		return Frame{Kind: kind, Payload: frame}, nil
	default:
		var marker byte
		if len(frame) > 0 {
			marker = frame[0]
		}
		return Frame{Kind: Unknown}, &UnknownMarkerError{Marker: marker, Len: len(frame)}
	}
}

// Wrap prepends the channel marker to payload. IP packets pass
// through unchanged.
func Wrap(kind Kind, payload []byte) []byte {
	switch kind {
	case Diagnostic:
		return append([]byte{markerDiagnostic}, payload...)
	case CoAP:
		return append([]byte{markerCoAP}, payload...)
	default:
		return payload
	}
}

// Encode wraps payload with its channel marker and SLIP-encodes the
// result, ready for the wire.
func Encode(kind Kind, payload []byte) []byte {
	return slip.Encode(Wrap(kind, payload))
}

// Decoder turns raw stream bytes into demultiplexed frames. It owns
// an incremental SLIP decoder, so partial frames survive across
// Write calls.
type Decoder struct {
	slip slip.Decoder
}

// NewDecoder returns a Decoder whose frame buffer is capped at
// maxFrame bytes. maxFrame <= 0 means slip.DefaultMaxFrame.
func NewDecoder(maxFrame int) Decoder {
	return Decoder{slip: *slip.NewDecoder(maxFrame)}
}

// Write consumes stream bytes and returns completed frames in
// arrival order. Errors carry both SLIP corruption (slip.ErrCorrupt)
// and unknown markers (*UnknownMarkerError); each corrupt or unknown
// frame yields exactly one error and no frame.
func (d *Decoder) Write(p []byte) ([]Frame, []error) {
	raw, errs := d.slip.Write(p)
	frames := make([]Frame, 0, len(raw))
	for _, fr := range raw {
		f, err := Split(fr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		frames = append(frames, f)
	}
	return frames, errs
}

// Reset drops all partial state, for stream reopen.
func (d *Decoder) Reset() {
	d.slip.Reset()
}
