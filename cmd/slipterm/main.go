package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/slipterm/internal/app"
	"github.com/marcus/slipterm/internal/config"
	"github.com/marcus/slipterm/internal/serialio"
	"github.com/marcus/slipterm/internal/styles"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath  = flag.String("config", "", "path to config file")
	baudFlag    = flag.Int("baud", 0, "serial baud rate (overrides config)")
	themeFlag   = flag.String("theme", "", "color theme (overrides config)")
	logPath     = flag.String("log", "", "write debug log to file")
	debugFlag   = flag.Bool("debug", false, "enable debug logging")
	versionFlag = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("slipterm version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	device := flag.Arg(0)

	logger, closeLog, err := setupLogging(*logPath, *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *baudFlag > 0 {
		cfg.Serial.Baud = *baudFlag
	}

	theme := cfg.UI.Theme
	if *themeFlag != "" {
		theme = *themeFlag
	}
	if theme == "" || theme == "auto" {
		theme = styles.DetectDefault()
	}
	if !styles.HasTheme(theme) {
		fmt.Fprintf(os.Stderr, "Unknown theme %q (have: %v)\n", theme, styles.ThemeNames())
		os.Exit(1)
	}
	styles.ApplyTheme(theme)

	conn := serialio.Open(device, cfg.Serial.Baud, logger)
	defer conn.Close()

	model := app.New(cfg, conn, device, theme, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
	if m, ok := final.(app.Model); ok {
		if err := m.FatalErr(); err != nil {
			fmt.Fprintf(os.Stderr, "Session ended: %v\n", err)
			os.Exit(1)
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// setupLogging routes the debug log to a file; the terminal belongs
// to the TUI, so without -log everything is discarded.
func setupLogging(path string, debugEnabled bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debugEnabled {
		level = slog.LevelDebug
	}

	var w io.Writer = io.Discard
	closeLog := func() {}
	if path != "" {
		f, err := os.OpenFile(config.ExpandPath(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeLog = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, closeLog, nil
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision != "" {
		ver := "devel+" + revision
		if len(ver) > 20 {
			ver = ver[:20]
		}
		if dirty {
			ver += "+dirty"
		}
		return ver
	}
	return "devel"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slipterm [options] <device>\n\n")
		fmt.Fprintf(os.Stderr, "An interactive terminal for slipmux serial devices.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
