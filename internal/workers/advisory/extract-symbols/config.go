package extractsymbols

import "time"

type Config struct {
	Allowlist  []string
	MaxSymbols int
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Allowlist:  DefaultAllowlist,
		MaxSymbols: 3,
		Timeout:    2 * time.Second,
	}
}
