package app

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/slipterm/internal/serialio"
	"github.com/marcus/slipterm/internal/styles"
)

// Update handles all messages and returns the updated model and
// commands. Exactly one event is consumed per call; ordering is the
// arrival order of the messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		m.follow = m.vp.AtBottom()
		return m, cmd

	case TickMsg:
		m.clock = m.now()
		m.sweepTimeouts()
		if m.toast != "" && m.clock.After(m.toastExpiry) {
			m.toast = ""
		}
		return m, tickCmd()

	case ToastMsg:
		m.toast = msg.Message
		m.toastIsError = msg.IsError
		m.toastExpiry = m.now().Add(msg.Duration)
		return m, nil

	case SerialMsg:
		m.handleSerial(serialio.Event(msg))
		return m, waitSerial(m.events)

	case SerialClosedMsg:
		// The connection was torn down under us; nothing left to read.
		if m.quitting {
			return m, tea.Quit
		}
		m.notice("serial connection closed")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help.
		m.showHelp = false
		return m, nil
	}

	key := msg.String()
	if cmd := m.km.Lookup("input", key); cmd != "" {
		if model, teaCmd, handled := m.runCommand(cmd); handled {
			return model, teaCmd
		}
	}

	// Everything else edits the input line.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runCommand executes one bound command. The third return is false
// for commands this model does not know, letting the key fall
// through to the input line.
func (m Model) runCommand(cmd string) (tea.Model, tea.Cmd, bool) {
	switch cmd {
	case "quit":
		return m.quit(nil)

	case "tab-combined":
		m.setTab(TabCombined)
	case "tab-shell":
		m.setTab(TabShell)
	case "tab-messages":
		m.setTab(TabMessages)

	case "toggle-help":
		m.showHelp = true

	case "clear-screen":
		m.lines = nil
		m.refreshViewport()

	case "cycle-theme":
		names := styles.ThemeNames()
		for i, name := range names {
			if name == m.themeName {
				m.themeName = names[(i+1)%len(names)]
				break
			}
		}
		styles.ApplyTheme(m.themeName)
		m.refreshViewport()
		return m, showToast("theme: "+m.themeName, false), true

	case "yank-line":
		line, ok := m.lastLineText()
		if !ok {
			return m, nil, true
		}
		if err := clipboard.WriteAll(line); err != nil {
			return m, showToast("yank failed: "+err.Error(), true), true
		}
		return m, showToast("copied line", false), true

	case "scroll-up":
		m.vp.HalfViewUp()
		m.follow = false
	case "scroll-down":
		m.vp.HalfViewDown()
		m.follow = m.vp.AtBottom()

	case "submit":
		return m.submit()

	case "complete":
		value, matches := m.complete.complete(m.input.Value())
		m.input.SetValue(value)
		m.input.CursorEnd()
		if len(matches) > 1 {
			m.notice(strings.Join(matches, "  "))
		}

	case "history-prev":
		if line, ok := m.history.prev(m.input.Value()); ok {
			m.input.SetValue(line)
			m.input.CursorEnd()
		}

	case "history-next":
		if line, ok := m.history.next(); ok {
			m.input.SetValue(line)
			m.input.CursorEnd()
		}

	default:
		return m, nil, false
	}
	return m, nil, true
}

// submit dispatches the current input line: local commands first,
// then '/'-prefixed CoAP paths, everything else raw shell input.
func (m Model) submit() (tea.Model, tea.Cmd, bool) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil, true
	}
	m.history.push(line)
	m.input.SetValue("")

	switch {
	case line == "quit" || line == "exit":
		return m.quit(nil)
	case line == "clear":
		m.lines = nil
		m.refreshViewport()
	case line == "help":
		m.showHelp = true
	case strings.HasPrefix(line, "/"):
		m.sendGet(line, true)
	default:
		m.sendDiagnostic(line)
	}
	return m, nil, true
}

// quit performs orderly shutdown: flush pending shell output, note
// the cause, and stop the program.
func (m Model) quit(cause error) (tea.Model, tea.Cmd, bool) {
	if tail, ok := m.shell.Flush(); ok {
		m.appendLine(LineShell, tail)
	}
	m.quitting = true
	m.fatalErr = cause
	return m, tea.Quit, true
}

func (m *Model) resizeViewport() {
	contentHeight := m.height - chromeHeight(m.cfg)
	if contentHeight < 1 {
		contentHeight = 1
	}
	if !m.ready {
		m.vp = viewport.New(m.width, contentHeight)
		m.ready = true
	} else {
		m.vp.Width = m.width
		m.vp.Height = contentHeight
	}
	m.input.Width = m.width - 4
	m.refreshViewport()
}
