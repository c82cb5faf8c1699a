package adviseuser

import (
	"time"

	"advisory-workers/internal/common/config"
	extractsymbols "advisory-workers/internal/workers/advisory/extract-symbols"
)

type Config struct {
	Allowlist      []string
	MaxSymbols     int
	TopK           int
	HistoryLimit   int
	RetrievalWait  time.Duration
	MarketWait     time.Duration
	PersistTimeout time.Duration
	PersistChat    bool
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Allowlist:      extractsymbols.DefaultAllowlist,
		MaxSymbols:     3,
		TopK:           3,
		HistoryLimit:   6,
		RetrievalWait:  10 * time.Second,
		MarketWait:     10 * time.Second,
		PersistTimeout: 3 * time.Second,
		PersistChat:    true,
		Timeout:        120 * time.Second,
	}
}

func ConfigFrom(cfg *config.Config) *Config {
	c := LoadConfig()
	adv := cfg.Advisory
	if len(adv.SymbolAllowlist) > 0 {
		c.Allowlist = adv.SymbolAllowlist
	}
	c.MaxSymbols = adv.MaxQuoteSymbols
	c.TopK = adv.TopK
	c.HistoryLimit = adv.HistoryLimit
	c.PersistChat = adv.PersistChat
	if t := cfg.APIs.Embedding.Timeout; t > 0 {
		c.RetrievalWait = config.GetDuration(t) * 2
	}
	if t := cfg.APIs.MarketData.Timeout; t > 0 {
		c.MarketWait = config.GetDuration(t) * 2
	}
	if t := cfg.APIs.Generation.Timeout; t > 0 {
		c.Timeout = config.GetDuration(t)*time.Duration(cfg.APIs.Generation.MaxRetries+1) + c.RetrievalWait + c.MarketWait
	}
	return c
}
