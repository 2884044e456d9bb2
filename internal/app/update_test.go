package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/slipterm/internal/coap"
	"github.com/marcus/slipterm/internal/config"
	"github.com/marcus/slipterm/internal/serialio"
	"github.com/marcus/slipterm/internal/session"
	"github.com/marcus/slipterm/internal/slipmux"
)

// fakePort records written frames, decoded back out of their SLIP
// encoding for assertions.
type fakePort struct {
	frames []slipmux.Frame
	demux  slipmux.Decoder
}

func (p *fakePort) Write(b []byte) error {
	frames, _ := p.demux.Write(b)
	p.frames = append(p.frames, frames...)
	return nil
}

func (p *fakePort) coapMessages(t *testing.T) []*coap.Message {
	t.Helper()
	var msgs []*coap.Message
	for _, f := range p.frames {
		if f.Kind != slipmux.CoAP {
			continue
		}
		m, err := coap.Parse(f.Payload)
		if err != nil {
			t.Fatalf("port received unparseable coap frame: %v", err)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestModel(t *testing.T) (*Model, *fakePort) {
	t.Helper()
	m := New(config.Default(), nil, "/dev/ttyTEST", "dark", quietLogger())
	fp := &fakePort{}
	m.port = fp
	return &m, fp
}

func transcriptText(m *Model) string {
	var b strings.Builder
	for _, l := range m.lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func TestScenarioBootThenExchange(t *testing.T) {
	m, fp := newTestModel(t)

	// User sends a request; token is assigned by the tracker.
	m.sendGet("/temp", true)
	sent := fp.coapMessages(t)
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	req := sent[0]

	// Diagnostic frame arrives, then the piggybacked response, in one
	// byte stream.
	var stream []byte
	stream = append(stream, slipmux.Encode(slipmux.Diagnostic, []byte("boot ok\n"))...)
	response := &coap.Message{
		Type:      coap.Acknowledgement,
		Code:      coap.Content,
		MessageID: req.MessageID,
		Token:     req.Token,
		Payload:   []byte("23C"),
	}
	stream = append(stream, slipmux.Encode(slipmux.CoAP, response.Marshal())...)
	m.handleBytes(stream)

	text := transcriptText(m)
	if !strings.Contains(text, "boot ok") {
		t.Errorf("shell line missing from transcript:\n%s", text)
	}
	if !strings.Contains(text, "2.05") || !strings.Contains(text, "23C") {
		t.Errorf("matched response missing from transcript:\n%s", text)
	}
	if m.tracker.Outstanding() != 0 {
		t.Errorf("exchange still outstanding after match")
	}

	// Exactly one response line: delivery happens once.
	if got := strings.Count(text, "23C"); got != 1 {
		t.Errorf("response delivered %d times", got)
	}
}

func TestUnmatchedResponseSendsReset(t *testing.T) {
	m, fp := newTestModel(t)

	stray := &coap.Message{
		Type:      coap.Confirmable,
		Code:      coap.Content,
		MessageID: 0x0101,
		Token:     []byte{0x99},
	}
	m.handleBytes(slipmux.Encode(slipmux.CoAP, stray.Marshal()))

	replies := fp.coapMessages(t)
	if len(replies) != 1 {
		t.Fatalf("wrote %d messages, want exactly 1 reset", len(replies))
	}
	if replies[0].Type != coap.Reset || replies[0].MessageID != 0x0101 {
		t.Errorf("reply = %+v", replies[0])
	}
}

func TestPeerRequestAnswered(t *testing.T) {
	m, fp := newTestModel(t)

	peerReq := coap.NewGet("/button")
	peerReq.MessageID = 0x2222
	peerReq.Token = []byte{0x07}
	m.handleBytes(slipmux.Encode(slipmux.CoAP, peerReq.Marshal()))

	replies := fp.coapMessages(t)
	if len(replies) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(replies))
	}
	if replies[0].Code != coap.NotFound || replies[0].Type != coap.Acknowledgement {
		t.Errorf("reply = %v %v", replies[0].Type, replies[0].Code)
	}
}

func TestMalformedCoapDoesNotCrash(t *testing.T) {
	m, _ := newTestModel(t)
	m.handleBytes(slipmux.Encode(slipmux.CoAP, []byte{0xFF, 0x00}))
	if !strings.Contains(transcriptText(m), "protocol desync") {
		t.Error("malformed message produced no desync notice")
	}
}

func TestUnknownMarkerSurfaced(t *testing.T) {
	m, _ := newTestModel(t)
	m.handleBytes(slipmux.Encode(slipmux.Unknown, []byte{0x01, 0x02}))
	if !strings.Contains(transcriptText(m), "protocol desync") {
		t.Error("unknown marker produced no desync notice")
	}
}

func TestTimeoutReported(t *testing.T) {
	m, _ := newTestModel(t)

	clock := time.Unix(5000, 0)
	m.tracker = session.New(2*time.Second, func() time.Time { return clock })

	m.sendGet("/slow", true)
	clock = clock.Add(3 * time.Second)
	m.sweepTimeouts()

	text := transcriptText(m)
	if !strings.Contains(text, "timed out") {
		t.Errorf("no timeout line:\n%s", text)
	}
	if m.tracker.Outstanding() != 0 {
		t.Error("expired exchange not removed")
	}
}

func TestConnectSendsHandshake(t *testing.T) {
	m, fp := newTestModel(t)

	m.handleSerial(serialio.Event{Kind: serialio.Connected, Name: "/dev/ttyTEST"})
	if !m.connected {
		t.Fatal("not marked connected")
	}
	var paths []string
	for _, msg := range fp.coapMessages(t) {
		paths = append(paths, msg.Path())
	}
	want := []string{"/riot/board", "/riot/ver", "/.well-known/core"}
	if len(paths) != len(want) {
		t.Fatalf("handshake sent %v", paths)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("handshake[%d] = %q, want %q", i, paths[i], p)
		}
	}
}

func TestWellKnownCoreFeedsCompletion(t *testing.T) {
	m, fp := newTestModel(t)

	m.sendGet("/.well-known/core", false)
	req := fp.coapMessages(t)[0]
	res := &coap.Message{
		Type:      coap.Acknowledgement,
		Code:      coap.Content,
		MessageID: req.MessageID,
		Token:     req.Token,
		Payload:   []byte(`</riot/board>;ct=0,</shell/reboot>;title="reboot",</temp>`),
	}
	m.handleBytes(slipmux.Encode(slipmux.CoAP, res.Marshal()))

	got, _ := m.complete.complete("/shell/re")
	if got != "/shell/reboot" {
		t.Errorf("completion after wkc = %q", got)
	}
}

func TestDisconnectFlushesPartialLine(t *testing.T) {
	m, _ := newTestModel(t)

	m.handleBytes(slipmux.Encode(slipmux.Diagnostic, []byte("no newline")))
	if strings.Contains(transcriptText(m), "no newline") {
		t.Fatal("partial line leaked before flush")
	}
	m.handleSerial(serialio.Event{Kind: serialio.Disconnected})
	if !strings.Contains(transcriptText(m), "no newline") {
		t.Error("partial line lost on disconnect")
	}
}

func TestSubmitRoutesInput(t *testing.T) {
	m, fp := newTestModel(t)

	// '/'-prefixed input becomes a GET.
	m.input.SetValue("/riot/ver")
	model, _, _ := m.submit()
	mm := model.(Model)
	msgs := fp.coapMessages(t)
	if len(msgs) != 1 || msgs[0].Code != coap.GET || msgs[0].Path() != "/riot/ver" {
		t.Fatalf("coap submit wrote %v", msgs)
	}

	// Plain input goes out on the diagnostic channel with a newline.
	mm.input.SetValue("ifconfig")
	model, _, _ = mm.submit()
	mm = model.(Model)
	var diagPayload string
	for _, f := range fp.frames {
		if f.Kind == slipmux.Diagnostic {
			diagPayload = string(f.Payload)
		}
	}
	if diagPayload != "ifconfig\n" {
		t.Errorf("diagnostic payload = %q", diagPayload)
	}

	if len(mm.history.entries) != 2 {
		t.Errorf("history = %v", mm.history.entries)
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c produced no command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("ctrl+c command = %v, want tea.Quit", msg)
	}
	if !model.(Model).quitting {
		t.Error("model not marked quitting")
	}
}

func TestHistoryNavigation(t *testing.T) {
	h := newHistory(3)
	h.push("one")
	h.push("two")
	h.push("two") // dedup
	h.push("three")

	if got, _ := h.prev("draft"); got != "three" {
		t.Errorf("prev = %q", got)
	}
	if got, _ := h.prev(""); got != "two" {
		t.Errorf("prev = %q", got)
	}
	if got, _ := h.next(); got != "three" {
		t.Errorf("next = %q", got)
	}
	if got, _ := h.next(); got != "draft" {
		t.Errorf("next past end = %q, want saved draft", got)
	}
	if _, ok := h.next(); ok {
		t.Error("next beyond draft should report false")
	}
}

func TestFrameCapFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Serial.MaxFrame = 64
	m := New(cfg, nil, "/dev/ttyTEST", "dark", quietLogger())
	m.port = &fakePort{}

	m.handleBytes(slipmux.Encode(slipmux.Diagnostic, bytes.Repeat([]byte{'x'}, 1000)))

	if !strings.Contains(transcriptText(&m), "protocol desync") {
		t.Error("frame over the configured cap was accepted")
	}
}

func TestSummarizePayloadKeepsRunesWhole(t *testing.T) {
	payload := []byte("a" + strings.Repeat("界", 50))
	got := summarizePayload(payload)
	if !utf8.ValidString(got) || strings.ContainsRune(got, utf8.RuneError) {
		t.Errorf("truncation split a rune: %q", got)
	}
	if !strings.Contains(got, "(151 bytes)") {
		t.Errorf("byte count missing from summary: %q", got)
	}
}

func TestIPPacketCounted(t *testing.T) {
	m, _ := newTestModel(t)
	m.handleBytes(slipmux.Encode(slipmux.IPPacket, []byte{0x60, 0x00, 0x00, 0x00}))
	if m.ipPackets != 1 {
		t.Errorf("ipPackets = %d", m.ipPackets)
	}
}
