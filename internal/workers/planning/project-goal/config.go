package projectgoal

import (
	"time"

	"advisory-workers/internal/common/config"
)

type Config struct {
	Timeout     time.Duration
	AlertOnGoal bool
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second, AlertOnGoal: true}
}

func ConfigFrom(cfg *config.Config) *Config {
	c := LoadConfig()
	c.AlertOnGoal = cfg.Integrations.AWS.SNS.Enabled
	return c
}
