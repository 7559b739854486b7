package config

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	Bind        string
	Port        int
	DatabaseURL string
	RevealDelay time.Duration // pause between "all decided" and the next scenario
	MaxPlayers  int
	StaleAfter  time.Duration // rooms older than this are swept
	LogLevel    string
}

func Default() Config {
	return Config{
		Bind:        "0.0.0.0",
		Port:        3001,
		RevealDelay: 11 * time.Second,
		MaxPlayers:  4,
		StaleAfter:  2 * time.Hour,
		LogLevel:    "info",
	}
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.MaxPlayers < 1 {
		return fmt.Errorf("invalid max players: %d", c.MaxPlayers)
	}
	if c.RevealDelay <= 0 {
		return errors.New("reveal delay must be positive")
	}
	if c.StaleAfter <= 0 {
		return errors.New("stale room TTL must be positive")
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
