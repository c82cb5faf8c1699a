package retrieveknowledge

import (
	"time"

	"advisory-workers/internal/common/config"
)

type Config struct {
	Index          string
	TopK           int
	ScoreThreshold float64
	CacheTTL       time.Duration
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Index:          "financial_knowledge",
		TopK:           3,
		ScoreThreshold: 0.3,
		CacheTTL:       24 * time.Hour,
		Timeout:        5 * time.Second,
	}
}

func ConfigFrom(cfg *config.Config) *Config {
	c := LoadConfig()
	c.Index = cfg.Advisory.KnowledgeIndex
	c.TopK = cfg.Advisory.TopK
	c.ScoreThreshold = cfg.Advisory.ScoreThreshold
	c.CacheTTL = time.Duration(cfg.Advisory.EmbeddingCacheTTL) * time.Second
	if cfg.APIs.Embedding.Timeout > 0 {
		c.Timeout = config.GetDuration(cfg.APIs.Embedding.Timeout) * 2
	}
	return c
}
