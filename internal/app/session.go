package app

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/marcus/slipterm/internal/coap"
	"github.com/marcus/slipterm/internal/serialio"
	"github.com/marcus/slipterm/internal/session"
	"github.com/marcus/slipterm/internal/slipmux"
)

// block2Hint asks the peer for 1 KiB blocks on GET responses.
var block2Hint = []byte{0x05}

// handleSerial processes one event from the serial connection.
func (m *Model) handleSerial(ev serialio.Event) {
	switch ev.Kind {
	case serialio.Connected:
		m.connected = true
		m.demux.Reset()
		m.notice(fmt.Sprintf("connected to %s", ev.Name))
		m.sendHandshake()
	case serialio.Disconnected:
		m.connected = false
		if tail, ok := m.shell.Flush(); ok {
			m.appendLine(LineShell, tail)
		}
		m.notice(fmt.Sprintf("device disconnected (%v), retrying", ev.Err))
	case serialio.Data:
		m.handleBytes(ev.Data)
	}
}

// handleBytes feeds raw serial bytes through the demultiplexer and
// routes each completed frame. Events stay in arrival order.
func (m *Model) handleBytes(p []byte) {
	frames, errs := m.demux.Write(p)
	for _, err := range errs {
		m.log.Debug("frame error", "err", err)
		m.appendLine(LineError, fmt.Sprintf("protocol desync: %v", err))
	}
	for _, f := range frames {
		switch f.Kind {
		case slipmux.Diagnostic:
			for _, line := range m.shell.Append(f.Payload) {
				m.appendLine(LineShell, line)
			}
		case slipmux.CoAP:
			m.handleCoAP(f.Payload)
		case slipmux.IPPacket:
			m.ipPackets++
		}
	}
}

// handleCoAP parses one configuration-channel message and lets the
// tracker decide what it means and what to send back.
func (m *Model) handleCoAP(payload []byte) {
	msg, err := coap.Parse(payload)
	if err != nil {
		m.log.Debug("unparseable coap message", "err", err, "len", len(payload))
		m.appendLine(LineError, fmt.Sprintf("protocol desync: %v", err))
		return
	}

	res := m.tracker.Handle(msg)
	for _, reply := range res.Send {
		m.writeFrame(slipmux.CoAP, reply.Marshal())
	}

	switch res.Kind {
	case session.ResultMatched:
		m.onResponse(res.Exchange)
	case session.ResultAcked:
		m.log.Debug("request acknowledged, response pending",
			"token", fmt.Sprintf("%x", res.Exchange.Token()))
	case session.ResultRejected:
		m.appendLine(LineError, fmt.Sprintf("✗ %s %s rejected by peer (reset)",
			res.Exchange.Request.Code, res.Exchange.Request.Path()))
	case session.ResultResetSent:
		m.appendLine(LineError, fmt.Sprintf("unmatched response (token %x), reset sent", msg.Token))
	case session.ResultRequestRefused:
		m.appendLine(LineError, fmt.Sprintf("peer requested %s %s, answered 4.04",
			msg.Code, msg.Path()))
	case session.ResultPing:
		m.log.Debug("coap ping, reset sent", "mid", msg.MessageID)
	case session.ResultIgnored:
		m.log.Debug("stray message ignored", "type", msg.Type, "mid", msg.MessageID)
	}
}

// onResponse renders a matched response and feeds the handshake
// learners.
func (m *Model) onResponse(ex *session.Exchange) {
	req, res := ex.Request, ex.Response
	m.appendLine(LineExchange, fmt.Sprintf("← %s %s [0x%04x] %s",
		res.Code, req.Path(), tokenValue(req.Token), summarizePayload(res.Payload)))

	switch req.Path() {
	case "/riot/board":
		m.board = string(res.Payload)
	case "/riot/ver":
		m.version = string(res.Payload)
	case "/.well-known/core":
		for _, path := range parseCoreLinks(res.Payload) {
			m.complete.add(path)
		}
	}
}

// sendHandshake queries the device's identity and resource set, as
// every session starts by doing.
func (m *Model) sendHandshake() {
	for _, path := range []string{"/riot/board", "/riot/ver", "/.well-known/core"} {
		m.sendGet(path, false)
	}
}

// sendGet issues a GET exchange. echo controls whether the request
// is echoed into the transcript (handshake traffic is not).
func (m *Model) sendGet(path string, echo bool) {
	req := coap.NewGet(path)
	req.AddOption(coap.OptionBlock2, block2Hint)
	m.tracker.Send(req)
	if m.writeFrame(slipmux.CoAP, req.Marshal()) && echo {
		m.appendLine(LineSent, fmt.Sprintf("→ GET %s [0x%04x]", path, tokenValue(req.Token)))
	}
}

// sendDiagnostic ships a shell command over the diagnostic channel.
func (m *Model) sendDiagnostic(text string) {
	if m.writeFrame(slipmux.Diagnostic, []byte(text+"\n")) {
		m.appendLine(LineSent, text)
	}
}

// writeFrame encodes and writes one frame; failures land in the
// transcript instead of being dropped silently.
func (m *Model) writeFrame(kind slipmux.Kind, payload []byte) bool {
	if m.port == nil {
		m.appendLine(LineError, "not connected")
		return false
	}
	if err := m.port.Write(slipmux.Encode(kind, payload)); err != nil {
		m.log.Warn("serial write failed", "err", err)
		m.appendLine(LineError, fmt.Sprintf("write failed: %v", err))
		return false
	}
	return true
}

// sweepTimeouts expires overdue exchanges and reports each one once.
func (m *Model) sweepTimeouts() {
	for _, ex := range m.tracker.Sweep() {
		m.appendLine(LineError, fmt.Sprintf("✗ %s %s [0x%04x] timed out",
			ex.Request.Code, ex.Request.Path(), tokenValue(ex.Request.Token)))
	}
}

func tokenValue(token []byte) uint16 {
	if len(token) >= 2 {
		return binary.LittleEndian.Uint16(token)
	}
	if len(token) == 1 {
		return uint16(token[0])
	}
	return 0
}

func summarizePayload(p []byte) string {
	if len(p) == 0 {
		return "(empty)"
	}
	const cutoff = 120
	s := string(p)
	if len(s) > cutoff {
		// Back off to a rune boundary so the cut never splits a
		// multi-byte character.
		end := cutoff
		for end > 0 && !utf8.RuneStart(s[end]) {
			end--
		}
		return fmt.Sprintf("%s… (%d bytes)", s[:end], len(p))
	}
	return s
}
