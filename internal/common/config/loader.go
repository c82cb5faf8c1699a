// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// then lets environment variables override any key (advisory.top_k -> ADVISORY_TOP_K).
func Load() (*Config, error) {
	return load("")
}

// LoadFile is Load with an explicit base config file.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../../configs")
		if root := findProjectRoot(); root != "" {
			v.AddConfigPath(filepath.Join(root, "configs"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	if path == "" {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		_ = v.MergeInConfig() // optional overlay
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// setDefaults covers keys where zero is a meaningful value and applyDefaults cannot tell them apart.
func setDefaults(v *viper.Viper) {
	v.SetDefault("apis.generation.max_retries", 1)
	v.SetDefault("apis.generation.temperature", 0.7)
	v.SetDefault("advisory.persist_chat", true)
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "advisory-workers"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	gen := &cfg.APIs.Generation
	if gen.Provider == "" {
		gen.Provider = "ollama"
	}
	if gen.BaseURL == "" && gen.Provider == "ollama" {
		gen.BaseURL = "http://localhost:11434"
	}
	if gen.Model == "" {
		gen.Model = "llama3.2:3b"
	}
	if gen.Timeout == 0 {
		gen.Timeout = 60000
	}
	if gen.MaxTokens == 0 {
		gen.MaxTokens = 2048
	}
	if gen.ProbeInterval == 0 {
		gen.ProbeInterval = 30000
	}

	emb := &cfg.APIs.Embedding
	if emb.BaseURL == "" {
		emb.BaseURL = "http://localhost:11434"
	}
	if emb.Model == "" {
		emb.Model = "all-minilm"
	}
	if emb.Timeout == 0 {
		emb.Timeout = 5000
	}

	md := &cfg.APIs.MarketData
	if md.BaseURL == "" {
		md.BaseURL = "https://www.alphavantage.co"
	}
	if md.Timeout == 0 {
		md.Timeout = 5000
	}
	if md.RequestsPerMinute == 0 {
		md.RequestsPerMinute = 5
	}

	adv := &cfg.Advisory
	if adv.KnowledgeIndex == "" {
		adv.KnowledgeIndex = "financial_knowledge"
	}
	if adv.TopK == 0 {
		adv.TopK = 3
	}
	if adv.ScoreThreshold == 0 {
		adv.ScoreThreshold = 0.3
	}
	if adv.MaxQuoteSymbols == 0 {
		adv.MaxQuoteSymbols = 3
	}
	if adv.EventsStream == "" {
		adv.EventsStream = "advisory:responses"
	}
	if adv.EmbeddingCacheTTL == 0 {
		adv.EmbeddingCacheTTL = 86400
	}
	if adv.HistoryLimit == 0 {
		adv.HistoryLimit = 6
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.APIs.Generation.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("apis.generation.provider must be ollama or openai, got %q", cfg.APIs.Generation.Provider)
	}
	if cfg.Advisory.TopK < 1 {
		return fmt.Errorf("advisory.top_k must be positive")
	}
	if cfg.Advisory.ScoreThreshold < 0 || cfg.Advisory.ScoreThreshold > 1 {
		return fmt.Errorf("advisory.score_threshold must be within [0,1]")
	}
	if cfg.Integrations.AWS.SNS.Enabled && cfg.Integrations.AWS.SNS.GoalAlertsTopic == "" {
		return fmt.Errorf("integrations.aws.sns.goal_alerts_topic is required when sns is enabled")
	}
	return nil
}

// ValidateForWorkers checks the settings only the Zeebe worker process needs.
func ValidateForWorkers(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" || cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres host, database and user are required")
	}
	if len(cfg.Database.Elasticsearch.GetAddresses()) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses or url is required")
	}
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}
	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, taskType string) WorkerConfig {
	if worker, exists := cfg.Workers[taskType]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, taskType string) bool {
	return GetWorkerConfig(cfg, taskType).Enabled
}
