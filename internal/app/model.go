package app

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/slipterm/internal/config"
	"github.com/marcus/slipterm/internal/diag"
	"github.com/marcus/slipterm/internal/keymap"
	"github.com/marcus/slipterm/internal/serialio"
	"github.com/marcus/slipterm/internal/session"
	"github.com/marcus/slipterm/internal/slipmux"
	"github.com/marcus/slipterm/internal/styles"
)

// port is the write side of the serial connection. serialio.Conn
// implements it; tests substitute a recorder.
type port interface {
	Write(p []byte) error
}

// Model is the root Bubble Tea model: the single owner of all
// session state. Every component below it is mutated only from
// Update, one message at a time.
type Model struct {
	cfg *config.Config
	log *slog.Logger
	km  *keymap.Registry

	// Serial side
	port    port
	events  <-chan serialio.Event
	demux   slipmux.Decoder
	tracker *session.Tracker
	shell   diag.Stream

	// Device identity, learned over the handshake
	devName   string
	connected bool
	board     string
	version   string
	ipPackets int

	// Transcript
	lines  []Line
	tab    Tab
	vp     viewport.Model
	follow bool

	// Input line
	input    textinput.Model
	history  *history
	complete *completions

	// UI state
	width, height int
	ready         bool
	showHelp      bool
	clock         time.Time
	toast         string
	toastIsError  bool
	toastExpiry   time.Time
	themeName     string
	quitting      bool
	fatalErr      error

	now func() time.Time
}

// New assembles the application model. conn may be nil in tests as
// long as a port and event channel are injected via options.
func New(cfg *config.Config, conn *serialio.Conn, devName, themeName string, log *slog.Logger) Model {
	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)

	ti := textinput.New()
	ti.Prompt = styles.Prompt.Render("> ")
	ti.Placeholder = "command or /coap/path"
	ti.Focus()

	m := Model{
		cfg:       cfg,
		log:       log,
		km:        km,
		demux:     slipmux.NewDecoder(cfg.Serial.MaxFrame),
		tracker:   session.New(cfg.Session.ExchangeTimeout, nil),
		devName:   devName,
		tab:       TabCombined,
		follow:    true,
		input:     ti,
		history:   newHistory(cfg.Session.HistorySize),
		complete:  newCompletions(),
		themeName: themeName,
		now:       time.Now,
	}
	if conn != nil {
		m.port = conn
		m.events = conn.Events()
	}
	return m
}

// Init starts the clock and the serial event pump.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), textinput.Blink}
	if m.events != nil {
		cmds = append(cmds, waitSerial(m.events))
	}
	return tea.Batch(cmds...)
}

// FatalErr reports the error that ended the session, if any. Read by
// main after the program exits.
func (m Model) FatalErr() error { return m.fatalErr }

// appendLine adds one transcript line and keeps the viewport
// following the tail unless the user scrolled away.
func (m *Model) appendLine(kind LineKind, text string) {
	m.lines = append(m.lines, Line{Kind: kind, Text: text, Time: m.now()})
	m.refreshViewport()
}

func (m *Model) notice(text string) {
	m.appendLine(LineNotice, text)
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.vp.SetContent(renderTranscript(m.lines, m.tab))
	if m.follow {
		m.vp.GotoBottom()
	}
}

// setTab switches the visible transcript slice.
func (m *Model) setTab(tab Tab) {
	if m.tab == tab {
		return
	}
	m.tab = tab
	m.follow = true
	m.refreshViewport()
}

// lastLineText returns the newest visible transcript line, for yank.
func (m *Model) lastLineText() (string, bool) {
	for i := len(m.lines) - 1; i >= 0; i-- {
		if m.lines[i].visibleIn(m.tab) {
			return m.lines[i].Text, true
		}
	}
	return "", false
}
