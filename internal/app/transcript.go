package app

import (
	"strings"
	"time"

	"github.com/marcus/slipterm/internal/styles"
)

// LineKind classifies transcript lines for styling and tab filtering.
type LineKind int

const (
	// LineShell is device diagnostic output.
	LineShell LineKind = iota
	// LineSent is locally-entered input echoed into the transcript.
	LineSent
	// LineExchange is a formatted request or response summary.
	LineExchange
	// LineNotice is a system notice (connects, protocol desync).
	LineNotice
	// LineError is a failure (timeouts, rejections, write errors).
	LineError
)

// Line is one unit of transcript output, append-only and ordered by
// arrival.
type Line struct {
	Kind LineKind
	Text string
	Time time.Time
}

// Tab selects which transcript slice is visible.
type Tab int

const (
	TabCombined Tab = iota
	TabShell
	TabMessages
)

func (t Tab) String() string {
	switch t {
	case TabShell:
		return "Shell"
	case TabMessages:
		return "Messages"
	default:
		return "Combined"
	}
}

// visibleIn reports whether a line belongs on the given tab.
func (l Line) visibleIn(tab Tab) bool {
	switch tab {
	case TabShell:
		return l.Kind == LineShell || l.Kind == LineSent
	case TabMessages:
		return l.Kind == LineExchange || l.Kind == LineError
	default:
		return true
	}
}

func (l Line) render() string {
	switch l.Kind {
	case LineSent:
		return styles.LineSent.Render(l.Text)
	case LineExchange:
		return styles.LineResponse.Render(l.Text)
	case LineNotice:
		return styles.LineNotice.Render(l.Text)
	case LineError:
		return styles.LineError.Render(l.Text)
	default:
		return styles.LineShell.Render(l.Text)
	}
}

// renderTranscript renders the lines visible on tab, newest last.
func renderTranscript(lines []Line, tab Tab) string {
	var b strings.Builder
	first := true
	for _, l := range lines {
		if !l.visibleIn(tab) {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		first = false
		b.WriteString(l.render())
	}
	return b.String()
}
