package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Serial.Baud != def.Serial.Baud || cfg.Session.ExchangeTimeout != def.Session.ExchangeTimeout {
		t.Errorf("missing file did not yield defaults: %+v", cfg)
	}
}

func TestLoadFromMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"serial": {"baud": 9600},
		"session": {"exchangeTimeout": "3s"},
		"ui": {"theme": "light", "showFooter": false}
	}`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Serial.Baud != 9600 {
		t.Errorf("baud = %d", cfg.Serial.Baud)
	}
	if cfg.Serial.MaxFrame != Default().Serial.MaxFrame {
		t.Errorf("maxFrame default lost: %d", cfg.Serial.MaxFrame)
	}
	if cfg.Session.ExchangeTimeout != 3*time.Second {
		t.Errorf("timeout = %s", cfg.Session.ExchangeTimeout)
	}
	if cfg.UI.Theme != "light" || cfg.UI.ShowFooter {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if !cfg.UI.ShowClock {
		t.Error("absent showClock overrode default")
	}
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad json", `{`},
		{"bad baud", `{"serial": {"baud": -1}}`},
		{"bad maxFrame", `{"serial": {"maxFrame": 1}}`},
		{"bad history", `{"session": {"historySize": -5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFrom(writeConfig(t, tt.content)); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandPath("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("ExpandPath(~/x) = %q", got)
	}
	if got := ExpandPath("/abs/x"); got != "/abs/x" {
		t.Errorf("ExpandPath(/abs/x) = %q", got)
	}
}
