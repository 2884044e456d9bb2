// Package session tracks CoAP request/response exchanges over the
// slipmux configuration channel. It owns the lifecycle of every
// locally-initiated request and decides the protocol-level reply for
// everything the peer sends: unmatched responses earn a Reset and
// unknown requests earn a 4.04, so the peer is never left waiting.
package session

import (
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/marcus/slipterm/internal/coap"
)

// State is the lifecycle state of one exchange.
type State int

const (
	AwaitingResponse State = iota
	Matched
	Expired
	Rejected
)

func (s State) String() string {
	switch s {
	case AwaitingResponse:
		return "awaiting"
	case Matched:
		return "matched"
	case Expired:
		return "expired"
	default:
		return "rejected"
	}
}

// Exchange is the record of one outstanding request. It is owned by
// the Tracker until it reaches a terminal state.
type Exchange struct {
	Request  *coap.Message
	Response *coap.Message
	Created  time.Time
	State    State

	// Acked is set once an empty ACK arrived for a CON request whose
	// response will come separately.
	Acked bool

	key string
}

// Token returns the request token.
func (e *Exchange) Token() []byte { return e.Request.Token }

// ResultKind classifies what an incoming message meant.
type ResultKind int

const (
	// ResultMatched: a response was correlated with an outstanding
	// exchange, which is now terminal.
	ResultMatched ResultKind = iota
	// ResultAcked: an empty ACK arrived; the exchange is still
	// awaiting its separate response.
	ResultAcked
	// ResultRejected: the peer Reset one of our exchanges.
	ResultRejected
	// ResultResetSent: the message claimed to answer an exchange we
	// do not know; a Reset is queued for output.
	ResultResetSent
	// ResultRequestRefused: the peer asked for something we do not
	// serve; a Not-Found reply is queued for output.
	ResultRequestRefused
	// ResultPing: an empty CON, answered with a Reset per RFC 7252.
	ResultPing
	// ResultIgnored: a stray ACK or Reset matching nothing; nothing
	// to do and nothing to send.
	ResultIgnored
)

// Result is the Tracker's verdict on one incoming message. Send
// carries any protocol replies the caller must queue for the wire.
type Result struct {
	Kind     ResultKind
	Exchange *Exchange
	Message  *coap.Message
	Send     []*coap.Message
}

// Tracker correlates responses with outstanding requests. It is not
// safe for concurrent use; the event loop owns it exclusively.
type Tracker struct {
	timeout time.Duration
	now     func() time.Time
	byToken map[string]*Exchange
	order   []*Exchange
	nextTok uint16
	nextMID uint16
}

// DefaultTimeout is the deadline for an exchange with no response.
const DefaultTimeout = 10 * time.Second

// New returns a Tracker. timeout <= 0 means DefaultTimeout; now == nil
// means time.Now (tests inject their own clock).
func New(timeout time.Duration, now func() time.Time) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		timeout: timeout,
		now:     now,
		byToken: map[string]*Exchange{},
		nextMID: uint16(rand.Intn(1 << 16)),
	}
}

// Outstanding returns the number of exchanges awaiting a response.
func (t *Tracker) Outstanding() int { return len(t.byToken) }

// Send stamps m with a fresh token and message ID, registers the
// exchange, and returns it. m must carry a request code.
func (t *Tracker) Send(m *coap.Message) *Exchange {
	t.nextTok++
	m.Token = binary.LittleEndian.AppendUint16(nil, t.nextTok)
	t.nextMID++
	m.MessageID = t.nextMID
	return t.Track(m)
}

// Track registers an already-stamped outgoing request, keyed by its
// token, and returns the new exchange in AwaitingResponse state.
func (t *Tracker) Track(m *coap.Message) *Exchange {
	ex := &Exchange{
		Request: m,
		Created: t.now(),
		State:   AwaitingResponse,
		key:     string(m.Token),
	}
	t.byToken[ex.key] = ex
	t.order = append(t.order, ex)
	return ex
}

// Handle inspects one incoming message and advances the matching
// exchange, or produces the protocol reply an unmatched message
// demands. It never ignores a message silently except where the
// protocol requires it (stray ACKs and Resets).
func (t *Tracker) Handle(m *coap.Message) Result {
	switch m.Type {
	case coap.Acknowledgement:
		return t.handleAck(m)
	case coap.Reset:
		return t.handleReset(m)
	default: // CON, NON
		switch {
		case m.Code.IsRequest():
			return t.refuseRequest(m)
		case m.Code.IsResponse():
			return t.handleSeparateResponse(m)
		default:
			// Empty CON is a CoAP ping; answer with Reset. Empty NON
			// matches nothing we sent, so it gets a Reset as well.
			return Result{Kind: ResultPing, Message: m,
				Send: []*coap.Message{coap.NewReset(m.MessageID)}}
		}
	}
}

func (t *Tracker) handleAck(m *coap.Message) Result {
	ex := t.findByMID(m.MessageID)
	if ex == nil {
		// Piggybacked responses are matched by token too, in case the
		// peer reuses its own message ID space.
		if m.Code.IsResponse() {
			ex = t.byToken[string(m.Token)]
		}
		if ex == nil {
			return Result{Kind: ResultIgnored, Message: m}
		}
	}
	if m.Code == coap.Empty {
		// Separate-response pattern: acknowledged, answer pending.
		ex.Acked = true
		return Result{Kind: ResultAcked, Exchange: ex, Message: m}
	}
	if !m.Code.IsResponse() {
		return Result{Kind: ResultIgnored, Message: m}
	}
	return t.match(ex, m)
}

func (t *Tracker) handleSeparateResponse(m *coap.Message) Result {
	ex := t.byToken[string(m.Token)]
	if ex == nil {
		// Includes replays of already-matched tokens: the exchange is
		// gone, so the peer learns that via Reset.
		return Result{Kind: ResultResetSent, Message: m,
			Send: []*coap.Message{coap.NewReset(m.MessageID)}}
	}
	res := t.match(ex, m)
	if m.Type == coap.Confirmable {
		res.Send = append(res.Send, coap.NewAck(m.MessageID))
	}
	return res
}

func (t *Tracker) handleReset(m *coap.Message) Result {
	ex := t.findByMID(m.MessageID)
	if ex == nil {
		return Result{Kind: ResultIgnored, Message: m}
	}
	ex.State = Rejected
	t.remove(ex)
	return Result{Kind: ResultRejected, Exchange: ex, Message: m}
}

// refuseRequest answers a peer-initiated request with Not-Found: a
// CON gets a piggybacked 4.04 ACK, a NON gets a NON 4.04.
func (t *Tracker) refuseRequest(m *coap.Message) Result {
	reply := &coap.Message{
		Code:      coap.NotFound,
		MessageID: m.MessageID,
		Token:     m.Token,
	}
	if m.Type == coap.Confirmable {
		reply.Type = coap.Acknowledgement
	} else {
		reply.Type = coap.NonConfirmable
	}
	return Result{Kind: ResultRequestRefused, Message: m,
		Send: []*coap.Message{reply}}
}

func (t *Tracker) match(ex *Exchange, m *coap.Message) Result {
	ex.State = Matched
	ex.Response = m
	t.remove(ex)
	return Result{Kind: ResultMatched, Exchange: ex, Message: m}
}

// Sweep expires every exchange past the deadline and returns them,
// oldest first. Each exchange expires exactly once.
func (t *Tracker) Sweep() []*Exchange {
	now := t.now()
	var expired []*Exchange
	for _, ex := range t.order {
		if ex.State != AwaitingResponse {
			continue
		}
		if now.Sub(ex.Created) >= t.timeout {
			ex.State = Expired
			delete(t.byToken, ex.key)
			expired = append(expired, ex)
		}
	}
	if len(expired) > 0 {
		t.compact()
	}
	return expired
}

// Cancel removes an exchange without a state transition beyond
// Expired, for explicit user cancellation.
func (t *Tracker) Cancel(ex *Exchange) {
	if ex.State == AwaitingResponse {
		ex.State = Expired
		t.remove(ex)
	}
}

func (t *Tracker) findByMID(mid uint16) *Exchange {
	for _, ex := range t.order {
		if ex.State == AwaitingResponse && ex.Request.MessageID == mid {
			return ex
		}
	}
	return nil
}

func (t *Tracker) remove(ex *Exchange) {
	delete(t.byToken, ex.key)
	t.compact()
}

func (t *Tracker) compact() {
	kept := t.order[:0]
	for _, ex := range t.order {
		if ex.State == AwaitingResponse {
			kept = append(kept, ex)
		}
	}
	t.order = kept
}
