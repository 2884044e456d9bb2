package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorPalette holds all themeable colors as hex strings.
type ColorPalette struct {
	Primary string
	Accent  string

	Success string
	Warning string
	Error   string
	Info    string

	TextPrimary   string
	TextSecondary string
	TextMuted     string

	BgSecondary string
	BgTertiary  string

	BorderNormal string
	BorderActive string
}

var themeRegistry = map[string]ColorPalette{
	"dark": {
		Primary:       "#7C3AED",
		Accent:        "#F59E0B",
		Success:       "#10B981",
		Warning:       "#F59E0B",
		Error:         "#EF4444",
		Info:          "#3B82F6",
		TextPrimary:   "#F9FAFB",
		TextSecondary: "#9CA3AF",
		TextMuted:     "#6B7280",
		BgSecondary:   "#1F2937",
		BgTertiary:    "#374151",
		BorderNormal:  "#374151",
		BorderActive:  "#7C3AED",
	},
	"light": {
		Primary:       "#6D28D9",
		Accent:        "#B45309",
		Success:       "#047857",
		Warning:       "#B45309",
		Error:         "#B91C1C",
		Info:          "#1D4ED8",
		TextPrimary:   "#111827",
		TextSecondary: "#4B5563",
		TextMuted:     "#6B7280",
		BgSecondary:   "#E5E7EB",
		BgTertiary:    "#D1D5DB",
		BorderNormal:  "#D1D5DB",
		BorderActive:  "#6D28D9",
	},
}

// ThemeNames returns the registered theme names, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themeRegistry))
	for name := range themeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTheme reports whether name is a registered theme.
func HasTheme(name string) bool {
	_, ok := themeRegistry[name]
	return ok
}

// DetectDefault picks the theme matching the terminal background.
// Theme detection is the terminal's business; everything downstream
// just receives the resolved name.
func DetectDefault() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// ApplyTheme loads a named theme into the package's style variables.
// Unknown names fall back to dark.
func ApplyTheme(name string) {
	p, ok := themeRegistry[name]
	if !ok {
		p = themeRegistry["dark"]
	}
	applyPalette(p)
}

func applyPalette(p ColorPalette) {
	Primary = lipgloss.Color(p.Primary)
	Accent = lipgloss.Color(p.Accent)
	Success = lipgloss.Color(p.Success)
	Warning = lipgloss.Color(p.Warning)
	Error = lipgloss.Color(p.Error)
	Info = lipgloss.Color(p.Info)
	TextPrimary = lipgloss.Color(p.TextPrimary)
	TextSecondary = lipgloss.Color(p.TextSecondary)
	TextMuted = lipgloss.Color(p.TextMuted)
	BgSecondary = lipgloss.Color(p.BgSecondary)
	BgTertiary = lipgloss.Color(p.BgTertiary)
	BorderNormal = lipgloss.Color(p.BorderNormal)
	BorderActive = lipgloss.Color(p.BorderActive)

	rebuildStyles(p)
}

// rebuildStyles recreates the derived style values after the palette
// variables change.
func rebuildStyles(p ColorPalette) {
	BarTitle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	BarText = lipgloss.NewStyle().Foreground(TextMuted)
	BarChip = lipgloss.NewStyle().Foreground(TextMuted).Background(BgTertiary).Padding(0, 1)
	chipFg := lipgloss.Color(ReadableOn(p.TextPrimary, p.Primary))
	BarChipActive = lipgloss.NewStyle().Foreground(chipFg).Background(Primary).Padding(0, 1).Bold(true)

	LineShell = lipgloss.NewStyle().Foreground(TextPrimary)
	LineSent = lipgloss.NewStyle().Foreground(Info)
	LineResponse = lipgloss.NewStyle().Foreground(Success)
	LineNotice = lipgloss.NewStyle().Foreground(Warning).Italic(true)
	LineError = lipgloss.NewStyle().Foreground(Error)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)

	StatusConnected = lipgloss.NewStyle().Foreground(Success).Bold(true)
	StatusDisconnected = lipgloss.NewStyle().Foreground(Error).Bold(true)
	StatusPending = lipgloss.NewStyle().Foreground(TextMuted)

	Prompt = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	InputText = lipgloss.NewStyle().Foreground(TextPrimary)
	Completion = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	ModalBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(BorderActive).Padding(1, 2)
	ModalTitle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	KeyHint = lipgloss.NewStyle().Foreground(TextMuted).Background(BgTertiary).Padding(0, 1)
}
