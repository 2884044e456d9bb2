package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - default dark theme
var (
	Primary = lipgloss.Color("#7C3AED") // Purple
	Accent  = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
	Info    = lipgloss.Color("#3B82F6") // Blue

	// Text colors
	TextPrimary   = lipgloss.Color("#F9FAFB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")

	// Background colors
	BgSecondary = lipgloss.Color("#1F2937")
	BgTertiary  = lipgloss.Color("#374151")

	// Border colors
	BorderNormal = lipgloss.Color("#374151")
	BorderActive = lipgloss.Color("#7C3AED")
)

// Bar element styles (header/footer)
var (
	BarTitle = lipgloss.NewStyle().
			Foreground(TextPrimary).
			Bold(true)

	BarText = lipgloss.NewStyle().
		Foreground(TextMuted)

	BarChip = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)

	BarChipActive = lipgloss.NewStyle().
			Foreground(TextPrimary).
			Background(Primary).
			Padding(0, 1).
			Bold(true)
)

// Transcript line styles
var (
	LineShell = lipgloss.NewStyle().
			Foreground(TextPrimary)

	LineSent = lipgloss.NewStyle().
			Foreground(Info)

	LineResponse = lipgloss.NewStyle().
			Foreground(Success)

	LineNotice = lipgloss.NewStyle().
			Foreground(Warning).
			Italic(true)

	LineError = lipgloss.NewStyle().
			Foreground(Error)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
)

// Status indicator styles
var (
	StatusConnected = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusDisconnected = lipgloss.NewStyle().
				Foreground(Error).
				Bold(true)

	StatusPending = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// Input line styles
var (
	Prompt = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	InputText = lipgloss.NewStyle().
			Foreground(TextPrimary)

	Completion = lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true)
)

// Modal styles
var (
	ModalBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderActive).
			Padding(1, 2)

	ModalTitle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)
)
