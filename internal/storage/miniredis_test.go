package storage

import (
	"fmt"
	"testing"
	"time"

	"feedrank/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestStore spins up a miniredis-backed store for a single test.
func newTestStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return mr, NewRedisStore(rdb, Options{BatchSize: 5})
}

// makeItem builds an item with fully controlled timestamps and score,
// bypassing ingestion so tests can pin index positions exactly.
func makeItem(id, sourceID string, publishedAt, ingestedAt time.Time, score float64) *model.ContentItem {
	return &model.ContentItem{
		ID:          id,
		SourceID:    sourceID,
		Link:        fmt.Sprintf("https://example.com/%s", id),
		Title:       "item " + id,
		PublishedAt: publishedAt.UTC(),
		IngestedAt:  ingestedAt.UTC(),
		Score:       score,
	}
}
