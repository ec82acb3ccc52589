package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"feedrank/internal/cascade"
	"feedrank/internal/model"
	"feedrank/internal/storage"
)

func newTestStore(t *testing.T) *storage.RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return storage.NewRedisStore(rdb, storage.Options{BatchSize: 5})
}

func newTestCascade(store *storage.RedisStore) *cascade.Engine {
	return cascade.NewEngine(store, 5)
}

func seedItem(t *testing.T, store *storage.RedisStore, id string, publishedAt time.Time, score float64) *model.ContentItem {
	t.Helper()
	item := &model.ContentItem{
		ID:          id,
		SourceID:    "src-1",
		Link:        fmt.Sprintf("https://example.com/%s", id),
		Title:       id,
		PublishedAt: publishedAt.UTC(),
		IngestedAt:  time.Now().UTC(),
		Score:       score,
	}
	require.NoError(t, store.CreateItem(context.Background(), item, nil))
	return item
}
