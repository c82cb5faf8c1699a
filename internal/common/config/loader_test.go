package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: advisory-workers
camunda:
  broker_address: localhost:26500
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.APIs.Generation.Provider)
	assert.Equal(t, 1, cfg.APIs.Generation.MaxRetries)
	assert.InDelta(t, 0.7, cfg.APIs.Generation.Temperature, 1e-9)
	assert.Equal(t, 3, cfg.Advisory.TopK)
	assert.InDelta(t, 0.3, cfg.Advisory.ScoreThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Advisory.MaxQuoteSymbols)
	assert.Equal(t, 6, cfg.Advisory.HistoryLimit)
	assert.Equal(t, "financial_knowledge", cfg.Advisory.KnowledgeIndex)
	assert.Equal(t, "advisory:responses", cfg.Advisory.EventsStream)
	assert.True(t, cfg.Advisory.PersistChat)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoadFile_EnvOverridesAndExpansion(t *testing.T) {
	t.Setenv("ADVISORY_TOP_K", "5")
	t.Setenv("AV_KEY", "secret-key")
	path := writeConfig(t, `
advisory:
  top_k: 3
apis:
  market_data:
    api_key: "${AV_KEY}"
workers:
  advise-user:
    enabled: true
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Advisory.TopK)
	assert.Equal(t, "secret-key", cfg.APIs.MarketData.APIKey)

	w := GetWorkerConfig(cfg, "advise-user")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30*time.Second, GetDuration(w.Timeout))
}

func TestLoadFile_RejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
apis:
  generation:
    provider: carrier-pigeon
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apis.generation.provider")
}

func TestValidateForWorkers(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, ValidateForWorkers(cfg))

	cfg.Camunda.BrokerAddress = "zeebe:26500"
	cfg.Database.Postgres = PostgresConfig{Host: "pg", Database: "advisor", User: "app"}
	cfg.Database.Elasticsearch.URL = "http://es:9200"
	cfg.Database.Redis.Address = "redis:6379"
	assert.NoError(t, ValidateForWorkers(cfg))
}

func TestIsWorkerEnabled_DefaultsToTrueForUnknown(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"smart-fallback": {Enabled: false}}}
	assert.False(t, IsWorkerEnabled(cfg, "smart-fallback"))
	assert.True(t, IsWorkerEnabled(cfg, "project-goal"))
}
