package fetchmarketdata

import (
	"time"

	"advisory-workers/internal/common/config"
)

type Config struct {
	MaxSymbols int
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxSymbols: 3,
		Timeout:    10 * time.Second,
	}
}

func ConfigFrom(cfg *config.Config) *Config {
	c := LoadConfig()
	c.MaxSymbols = cfg.Advisory.MaxQuoteSymbols
	if cfg.APIs.MarketData.Timeout > 0 {
		c.Timeout = config.GetDuration(cfg.APIs.MarketData.Timeout) * 2
	}
	return c
}
