package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/slipterm"
	configFile = "config.json"
)

// rawConfig is the JSON-unmarshaling intermediary. Durations arrive
// as strings ("10s") and booleans as pointers so absent keys keep
// their defaults.
type rawConfig struct {
	Serial  rawSerialConfig  `json:"serial"`
	Session rawSessionConfig `json:"session"`
	UI      rawUIConfig      `json:"ui"`
}

type rawSerialConfig struct {
	Baud     *int `json:"baud"`
	MaxFrame *int `json:"maxFrame"`
}

type rawSessionConfig struct {
	ExchangeTimeout string `json:"exchangeTimeout"`
	HistorySize     *int   `json:"historySize"`
}

type rawUIConfig struct {
	Theme      string `json:"theme"`
	ShowFooter *bool  `json:"showFooter"`
	ShowClock  *bool  `json:"showClock"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path. If path is
// empty, ~/.config/slipterm/config.json is used. A missing file
// yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = Path()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	merge(cfg, &raw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func merge(cfg *Config, raw *rawConfig) {
	if raw.Serial.Baud != nil {
		cfg.Serial.Baud = *raw.Serial.Baud
	}
	if raw.Serial.MaxFrame != nil {
		cfg.Serial.MaxFrame = *raw.Serial.MaxFrame
	}
	if raw.Session.ExchangeTimeout != "" {
		if d, err := time.ParseDuration(raw.Session.ExchangeTimeout); err == nil {
			cfg.Session.ExchangeTimeout = d
		}
	}
	if raw.Session.HistorySize != nil {
		cfg.Session.HistorySize = *raw.Session.HistorySize
	}
	if raw.UI.Theme != "" {
		cfg.UI.Theme = raw.UI.Theme
	}
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.ShowClock != nil {
		cfg.UI.ShowClock = *raw.UI.ShowClock
	}
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Path returns the default config file path, or "" if the home
// directory cannot be determined.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}
