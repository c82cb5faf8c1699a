package generateadvice

import (
	"time"

	"advisory-workers/internal/common/config"
)

type Config struct {
	Provider      string
	CallTimeout   time.Duration
	ProbeTimeout  time.Duration
	ProbeInterval time.Duration
	RetryInterval time.Duration
	MaxRetries    int
	HistoryLimit  int
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Provider:      "ollama",
		CallTimeout:   60 * time.Second,
		ProbeTimeout:  5 * time.Second,
		ProbeInterval: 30 * time.Second,
		RetryInterval: 500 * time.Millisecond,
		MaxRetries:    1,
		HistoryLimit:  6,
		Timeout:       90 * time.Second,
	}
}

// ConfigFrom overlays application settings on the defaults.
func ConfigFrom(cfg *config.Config) *Config {
	c := LoadConfig()
	gen := cfg.APIs.Generation
	c.Provider = gen.Provider
	if gen.Timeout > 0 {
		c.CallTimeout = config.GetDuration(gen.Timeout)
		c.Timeout = c.CallTimeout*time.Duration(gen.MaxRetries+1) + 5*time.Second
	}
	if gen.ProbeInterval > 0 {
		c.ProbeInterval = config.GetDuration(gen.ProbeInterval)
	}
	c.MaxRetries = gen.MaxRetries
	if cfg.Advisory.HistoryLimit > 0 {
		c.HistoryLimit = cfg.Advisory.HistoryLimit
	}
	return c
}
