package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/slipterm/internal/serialio"
)

// Message types for tea.Cmd
type (
	// TickMsg is sent on each clock tick.
	TickMsg time.Time

	// SerialMsg wraps one event from the serial connection.
	SerialMsg serialio.Event

	// SerialClosedMsg is sent when the serial event channel closes.
	SerialClosedMsg struct{}

	// ToastMsg displays a temporary status message.
	ToastMsg struct {
		Message  string
		Duration time.Duration
		IsError  bool
	}
)

// tickInterval drives the clock and the exchange-timeout sweep.
const tickInterval = 500 * time.Millisecond

// tickCmd returns a command that ticks twice a second.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitSerial returns a command that delivers the next serial event.
// Update re-arms it after every SerialMsg, so events are consumed
// one per loop iteration, in arrival order.
func waitSerial(events <-chan serialio.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return SerialClosedMsg{}
		}
		return SerialMsg(ev)
	}
}

// showToast returns a command to show a transient status message.
func showToast(msg string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Message: msg, Duration: 4 * time.Second, IsError: isError}
	}
}
