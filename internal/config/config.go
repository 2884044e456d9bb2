package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Serial  SerialConfig  `json:"serial"`
	Session SessionConfig `json:"session"`
	UI      UIConfig      `json:"ui"`
}

// SerialConfig configures the serial link.
type SerialConfig struct {
	// Baud is used when the device path is a character device;
	// unix-socket bridges ignore it.
	Baud int `json:"baud"`
	// MaxFrame bounds the SLIP decoder's frame buffer in bytes.
	MaxFrame int `json:"maxFrame"`
}

// SessionConfig configures exchange tracking.
type SessionConfig struct {
	// ExchangeTimeout is how long a request may await its response.
	ExchangeTimeout time.Duration `json:"exchangeTimeout"`
	// HistorySize caps the input history kept in memory.
	HistorySize int `json:"historySize"`
}

// UIConfig configures appearance.
type UIConfig struct {
	// Theme selects a named palette; empty picks by terminal
	// background.
	Theme      string `json:"theme"`
	ShowFooter bool   `json:"showFooter"`
	ShowClock  bool   `json:"showClock"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Baud:     115200,
			MaxFrame: 10240,
		},
		Session: SessionConfig{
			ExchangeTimeout: 10 * time.Second,
			HistorySize:     200,
		},
		UI: UIConfig{
			ShowFooter: true,
			ShowClock:  true,
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Serial.MaxFrame < 64 {
		return fmt.Errorf("serial.maxFrame must be at least 64, got %d", c.Serial.MaxFrame)
	}
	if c.Session.ExchangeTimeout <= 0 {
		return fmt.Errorf("session.exchangeTimeout must be positive, got %s", c.Session.ExchangeTimeout)
	}
	if c.Session.HistorySize < 0 {
		return fmt.Errorf("session.historySize must not be negative, got %d", c.Session.HistorySize)
	}
	return nil
}
