package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/slipterm/internal/config"
	"github.com/marcus/slipterm/internal/styles"
	"github.com/marcus/slipterm/internal/ui"
)

const (
	headerHeight = 2 // status line + tab row
	inputHeight  = 1
	footerHeight = 1
	minWidth     = 40
	minHeight    = 10
)

// chromeHeight is everything on screen that is not transcript.
func chromeHeight(cfg *config.Config) int {
	h := headerHeight + inputHeight
	if cfg.UI.ShowFooter {
		h += footerHeight
	}
	return h
}

// View renders the entire application UI.
func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}
	if m.width < minWidth || m.height < minHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d",
			m.width, m.height, minWidth, minHeight)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.LineError.Render(msg))
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	if m.cfg.UI.ShowFooter {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	if m.showHelp {
		return ui.Overlay(b.String(), m.renderHelp(), m.width, m.height)
	}
	return b.String()
}

func (m Model) renderHeader() string {
	left := []string{styles.BarTitle.Render("slipterm")}

	status := styles.StatusDisconnected.Render("● " + m.devName)
	if m.connected {
		status = styles.StatusConnected.Render("● " + m.devName)
	}
	left = append(left, status)

	if m.board != "" {
		left = append(left, styles.BarText.Render(m.board))
	}
	if m.version != "" {
		left = append(left, styles.BarText.Render(m.version))
	}
	if n := m.tracker.Outstanding(); n > 0 {
		left = append(left, styles.BarText.Render(fmt.Sprintf("%d pending", n)))
	}
	if m.ipPackets > 0 {
		left = append(left, styles.BarText.Render(fmt.Sprintf("%d ip pkts", m.ipPackets)))
	}

	var right string
	switch {
	case m.toast != "" && m.toastIsError:
		right = styles.LineError.Render(m.toast)
	case m.toast != "":
		right = styles.LineNotice.Render(m.toast)
	case m.cfg.UI.ShowClock && !m.clock.IsZero():
		right = styles.BarText.Render(m.clock.Format("15:04:05"))
	}

	leftStr := strings.Join(left, "  ")
	gap := m.width - lipgloss.Width(leftStr) - lipgloss.Width(right)
	if gap < 1 {
		return leftStr
	}
	return leftStr + strings.Repeat(" ", gap) + right
}

func (m Model) renderTabs() string {
	var chips []string
	for _, tab := range []Tab{TabCombined, TabShell, TabMessages} {
		label := fmt.Sprintf("F%d %s", int(tab)+1, tab)
		if tab == m.tab {
			chips = append(chips, styles.BarChipActive.Render(label))
		} else {
			chips = append(chips, styles.BarChip.Render(label))
		}
	}
	return strings.Join(chips, " ")
}

func (m Model) renderFooter() string {
	hints := []string{
		"enter send",
		"tab complete",
		"↑/↓ history",
		"ctrl+g help",
		"ctrl+c quit",
	}
	return styles.BarText.Render(strings.Join(hints, " · "))
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render("slipterm keys"))
	b.WriteString("\n\n")
	rows := [][2]string{
		{"enter", "send input (shell text, or GET for /paths)"},
		{"tab", "complete commands and learned resources"},
		{"up/down", "input history"},
		{"F1/F2/F3", "combined / shell / messages tab"},
		{"pgup/pgdn", "scroll transcript"},
		{"ctrl+l", "clear transcript"},
		{"ctrl+y", "copy last line"},
		{"ctrl+t", "cycle theme"},
		{"ctrl+c", "quit"},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s  %s\n",
			styles.KeyHint.Render(fmt.Sprintf("%-9s", row[0])),
			row[1]))
	}
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("any key to close"))
	return styles.ModalBox.Render(b.String())
}
