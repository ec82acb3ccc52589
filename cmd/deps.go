package cmd

import (
	"fmt"
	"time"

	"feedrank/internal/ai"
	"feedrank/internal/cascade"
	"feedrank/internal/config"
	"feedrank/internal/redisclient"
	"feedrank/internal/scoring"
	"feedrank/internal/storage"

	"github.com/redis/go-redis/v9"
)

// newStore wires a Redis client and the record store from config.
// Callers close the returned client.
func newStore(cfg config.Config) (*redis.Client, *storage.RedisStore, error) {
	backoff, err := time.ParseDuration(cfg.Storage.BackoffBase)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid backoff_base: %w", err)
	}
	ttl, err := time.ParseDuration(cfg.Retention.TTLBackstop)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid ttl_backstop: %w", err)
	}
	rdb := redisclient.New(cfg.Redis)
	store := storage.NewRedisStore(rdb, storage.Options{
		BatchSize:   cfg.Storage.BatchSize,
		MaxRetries:  cfg.Storage.MaxRetries,
		BackoffBase: backoff,
		TTLBackstop: ttl,
	})
	return rdb, store, nil
}

// newScorer wires the scoring engine, or nil when no embedding
// provider is configured (items then keep a zero score).
func newScorer(cfg config.Config, store *storage.RedisStore) *scoring.Engine {
	if cfg.OpenAI.APIKey == "" {
		return nil
	}
	embedder := ai.NewOpenAI(ai.Config{
		APIKey:    cfg.OpenAI.APIKey,
		Model:     cfg.OpenAI.Model,
		BaseURL:   cfg.OpenAI.BaseURL,
		Dimension: cfg.OpenAI.Dimension,
	})
	cache := scoring.NewLRUCache(cfg.Scoring.TermCacheSize)
	return scoring.NewEngine(embedder, store, cache, cfg.OpenAI.Dimension, cfg.Scoring.PageSize)
}

// newCascade wires the cascade deletion engine.
func newCascade(cfg config.Config, store *storage.RedisStore) *cascade.Engine {
	return cascade.NewEngine(store, cfg.Storage.BatchSize)
}
