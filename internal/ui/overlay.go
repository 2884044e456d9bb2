// Package ui provides shared rendering helpers for the TUI.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// dimStyle grays out background content behind a modal. Existing ANSI
// codes are stripped first: SGR faint does not combine reliably with
// color codes across terminals.
var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

// Overlay centers modal on top of background, dimming everything the
// modal does not cover. Both strings are multi-line rendered views;
// width and height are the full screen dimensions.
func Overlay(background, modal string, width, height int) string {
	bgLines := strings.Split(background, "\n")
	modalLines := strings.Split(modal, "\n")

	modalWidth := 0
	for _, line := range modalLines {
		if w := ansi.StringWidth(line); w > modalWidth {
			modalWidth = w
		}
	}
	startX := max(0, (width-modalWidth)/2)
	startY := max(0, (height-len(modalLines))/2)

	out := make([]string, 0, height)
	for y := 0; y < height; y++ {
		var bgLine string
		if y < len(bgLines) {
			bgLine = bgLines[y]
		}
		row := y - startY
		if row < 0 || row >= len(modalLines) {
			out = append(out, dimStyle.Render(ansi.Strip(bgLine)))
			continue
		}
		out = append(out, spliceRow(bgLine, modalLines[row], startX, modalWidth))
	}
	return strings.Join(out, "\n")
}

// spliceRow overlays one modal line onto one background line at
// column startX: dimmed-left + modal + dimmed-right.
func spliceRow(bgLine, modalLine string, startX, modalWidth int) string {
	stripped := ansi.Strip(bgLine)
	bgWidth := ansi.StringWidth(stripped)

	var b strings.Builder
	if startX > 0 {
		left := ansi.Truncate(stripped, startX, "")
		b.WriteString(dimStyle.Render(left))
		if pad := startX - ansi.StringWidth(left); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	b.WriteString(modalLine)
	if right := startX + modalWidth; right < bgWidth {
		b.WriteString(dimStyle.Render(ansi.Cut(stripped, right, bgWidth)))
	}
	return b.String()
}
