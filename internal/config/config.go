package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OpenAIConfig controls the embedding provider.
type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`     // e.g., text-embedding-3-small
	BaseURL   string `mapstructure:"base_url"`  // optional
	Dimension int    `mapstructure:"dimension"` // embedding vector length
}

// ScoringConfig controls the importance scoring engine.
type ScoringConfig struct {
	TermCacheSize int `mapstructure:"term_cache_size"` // per-process term embedding cache
	PageSize      int `mapstructure:"page_size"`       // recalculation page size
}

// RetentionConfig controls the retention sweeps.
type RetentionConfig struct {
	MaxAge        string `mapstructure:"max_age"`        // duration string, e.g., "168h"
	MaxReadAge    string `mapstructure:"max_read_age"`   // e.g., "24h"
	SweepInterval string `mapstructure:"sweep_interval"` // e.g., "1h"
	TTLBackstop   string `mapstructure:"ttl_backstop"`   // passive expiry outer bound, e.g., "720h"
}

// StorageConfig controls batching and retry behavior.
type StorageConfig struct {
	BatchSize   int    `mapstructure:"batch_size"`
	MaxRetries  int    `mapstructure:"max_retries"`
	BackoffBase string `mapstructure:"backoff_base"` // e.g., "100ms"
}

// Config is the top-level configuration structure.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Redis     RedisConfig     `mapstructure:"redis"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Retention RetentionConfig `mapstructure:"retention"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "text-embedding-3-small"
	}
	if c.OpenAI.Dimension == 0 {
		c.OpenAI.Dimension = 1024
	}
	if c.Scoring.TermCacheSize == 0 {
		c.Scoring.TermCacheSize = 100
	}
	if c.Scoring.PageSize == 0 {
		c.Scoring.PageSize = 100
	}
	if c.Retention.MaxAge == "" {
		c.Retention.MaxAge = "168h" // one week
	}
	if c.Retention.MaxReadAge == "" {
		c.Retention.MaxReadAge = "24h"
	}
	if c.Retention.SweepInterval == "" {
		c.Retention.SweepInterval = "1h"
	}
	if c.Retention.TTLBackstop == "" {
		c.Retention.TTLBackstop = "720h" // 30 days
	}
	if c.Storage.BatchSize == 0 {
		c.Storage.BatchSize = 25
	}
	if c.Storage.MaxRetries == 0 {
		c.Storage.MaxRetries = 3
	}
	if c.Storage.BackoffBase == "" {
		c.Storage.BackoffBase = "100ms"
	}
}
