// Package coap implements the subset of RFC 7252 message encoding
// needed to exchange configuration requests with a slipmux peer:
// the four message types, token/message-ID addressing, delta-encoded
// options, and the handful of codes the session layer speaks. It is
// deliberately not a general CoAP client or server.
package coap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Type is the CoAP message type from the fixed header.
type Type uint8

const (
	Confirmable     Type = 0
	NonConfirmable  Type = 1
	Acknowledgement Type = 2
	Reset           Type = 3
)

func (t Type) String() string {
	switch t {
	case Confirmable:
		return "CON"
	case NonConfirmable:
		return "NON"
	case Acknowledgement:
		return "ACK"
	default:
		return "RST"
	}
}

// Code is the 8-bit message code, class.detail.
type Code uint8

const (
	Empty Code = 0x00

	// Requests (class 0).
	GET    Code = 0x01
	POST   Code = 0x02
	PUT    Code = 0x03
	DELETE Code = 0x04

	// Responses.
	Changed        Code = 2<<5 | 4 // 2.04
	Content        Code = 2<<5 | 5 // 2.05
	BadRequest     Code = 4<<5 | 0 // 4.00
	NotFound       Code = 4<<5 | 4 // 4.04
	NotImplemented Code = 5<<5 | 1 // 5.01
)

// Class returns the upper three bits (0 request, 2 success, 4/5 error).
func (c Code) Class() uint8 { return uint8(c) >> 5 }

// IsRequest reports whether the code is a non-empty class-0 code.
func (c Code) IsRequest() bool { return c.Class() == 0 && c != Empty }

// IsResponse reports whether the code belongs to a response class.
func (c Code) IsResponse() bool { return c.Class() >= 2 && c.Class() <= 5 }

func (c Code) String() string {
	if c == Empty {
		return "0.00"
	}
	if c.IsRequest() {
		switch c {
		case GET:
			return "GET"
		case POST:
			return "POST"
		case PUT:
			return "PUT"
		case DELETE:
			return "DELETE"
		}
	}
	return fmt.Sprintf("%d.%02d", c.Class(), uint8(c)&0x1F)
}

// Option numbers used on this link.
const (
	OptionUriPath       = 11
	OptionContentFormat = 12
	OptionBlock2        = 23
)

// Option is one option instance. Repeatable options appear as
// multiple entries with the same number.
type Option struct {
	Number uint16
	Value  []byte
}

// Message is one CoAP message. The zero value is an Empty CON with
// message ID 0 and no token.
type Message struct {
	Type      Type
	Code      Code
	MessageID uint16
	Token     []byte
	Options   []Option
	Payload   []byte
}

const payloadMarker = 0xFF

var (
	ErrTooShort       = errors.New("coap: message truncated")
	ErrBadVersion     = errors.New("coap: unsupported version")
	ErrBadTokenLength = errors.New("coap: invalid token length")
	ErrBadOption      = errors.New("coap: malformed option")
)

// Parse decodes a CoAP message from wire bytes. It never panics on
// arbitrary input; malformed encodings return an error.
func Parse(data []byte) (*Message, error) {
	if len(data) < 4 {
		return nil, ErrTooShort
	}
	if data[0]>>6 != 1 {
		return nil, ErrBadVersion
	}
	tkl := int(data[0] & 0x0F)
	if tkl > 8 {
		return nil, ErrBadTokenLength
	}
	m := &Message{
		Type:      Type(data[0] >> 4 & 0x03),
		Code:      Code(data[1]),
		MessageID: binary.BigEndian.Uint16(data[2:4]),
	}
	rest := data[4:]
	if len(rest) < tkl {
		return nil, ErrTooShort
	}
	if tkl > 0 {
		m.Token = append([]byte(nil), rest[:tkl]...)
	}
	rest = rest[tkl:]

	var number uint16
	for len(rest) > 0 {
		if rest[0] == payloadMarker {
			if len(rest) == 1 {
				// Marker with no payload is a format error per RFC 7252.
				return nil, ErrBadOption
			}
			m.Payload = append([]byte(nil), rest[1:]...)
			return m, nil
		}
		delta := int(rest[0] >> 4)
		olen := int(rest[0] & 0x0F)
		rest = rest[1:]
		var err error
		if delta, rest, err = extendOptionField(delta, rest); err != nil {
			return nil, err
		}
		if olen, rest, err = extendOptionField(olen, rest); err != nil {
			return nil, err
		}
		if len(rest) < olen {
			return nil, ErrTooShort
		}
		number += uint16(delta)
		m.Options = append(m.Options, Option{
			Number: number,
			Value:  append([]byte(nil), rest[:olen]...),
		})
		rest = rest[olen:]
	}
	return m, nil
}

func extendOptionField(v int, rest []byte) (int, []byte, error) {
	switch v {
	case 13:
		if len(rest) < 1 {
			return 0, nil, ErrTooShort
		}
		return int(rest[0]) + 13, rest[1:], nil
	case 14:
		if len(rest) < 2 {
			return 0, nil, ErrTooShort
		}
		return int(binary.BigEndian.Uint16(rest[:2])) + 269, rest[2:], nil
	case 15:
		return 0, nil, ErrBadOption
	default:
		return v, rest, nil
	}
}

// Marshal encodes the message to wire bytes. Options are sorted by
// number as the delta encoding requires; insertion order is kept for
// equal numbers.
func (m *Message) Marshal() []byte {
	out := make([]byte, 0, 4+len(m.Token)+len(m.Payload)+8)
	out = append(out, 1<<6|uint8(m.Type)<<4|uint8(len(m.Token)))
	out = append(out, uint8(m.Code))
	out = binary.BigEndian.AppendUint16(out, m.MessageID)
	out = append(out, m.Token...)

	opts := make([]Option, len(m.Options))
	copy(opts, m.Options)
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Number < opts[j].Number })

	var prev uint16
	for _, o := range opts {
		delta := int(o.Number - prev)
		prev = o.Number
		dn, dext := splitOptionField(delta)
		ln, lext := splitOptionField(len(o.Value))
		out = append(out, uint8(dn)<<4|uint8(ln))
		out = append(out, dext...)
		out = append(out, lext...)
		out = append(out, o.Value...)
	}

	if len(m.Payload) > 0 {
		out = append(out, payloadMarker)
		out = append(out, m.Payload...)
	}
	return out
}

func splitOptionField(v int) (int, []byte) {
	switch {
	case v < 13:
		return v, nil
	case v < 269:
		return 13, []byte{uint8(v - 13)}
	default:
		return 14, binary.BigEndian.AppendUint16(nil, uint16(v-269))
	}
}

// AddOption appends an option instance.
func (m *Message) AddOption(number uint16, value []byte) {
	m.Options = append(m.Options, Option{Number: number, Value: value})
}

// SetPath replaces the Uri-Path options with the segments of path.
// A bare "/" yields no options, matching an empty path.
func (m *Message) SetPath(path string) {
	kept := m.Options[:0]
	for _, o := range m.Options {
		if o.Number != OptionUriPath {
			kept = append(kept, o)
		}
	}
	m.Options = kept
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		m.AddOption(OptionUriPath, []byte(seg))
	}
}

// Path assembles the Uri-Path options into "/seg/seg" form.
// A message without Uri-Path options reports "/".
func (m *Message) Path() string {
	var b strings.Builder
	for _, o := range m.Options {
		if o.Number == OptionUriPath {
			b.WriteByte('/')
			b.Write(o.Value)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// NewGet builds a CON GET request for path. Token, message ID and any
// further options are the caller's to fill in.
func NewGet(path string) *Message {
	m := &Message{Type: Confirmable, Code: GET}
	if path != "/" {
		m.SetPath(path)
	}
	return m
}

// NewReset builds an empty RST addressed to messageID, rejecting an
// exchange this side does not recognize.
func NewReset(messageID uint16) *Message {
	return &Message{Type: Reset, Code: Empty, MessageID: messageID}
}

// NewAck builds an empty ACK for messageID, acknowledging a CON
// whose response will come separately.
func NewAck(messageID uint16) *Message {
	return &Message{Type: Acknowledgement, Code: Empty, MessageID: messageID}
}
