// Package cascade removes a source together with every record that
// exists only because the source exists: its content items, their
// score contributions and their link index entries.
package cascade

import (
	"context"
	"fmt"
	"log/slog"

	"feedrank/internal/storage"
)

// Engine drives source cascade deletion through the parent index.
type Engine struct {
	store    *storage.RedisStore
	pageSize int
}

func NewEngine(store *storage.RedisStore, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Engine{store: store, pageSize: pageSize}
}

// DeleteSource drains the source's item listing fully, deleting each
// page's item families in bounded batches, then removes the source
// record last. Once it returns nil, nothing owned by the source is
// reachable through any access pattern.
//
// There is no cross-record transaction: a crash mid-cascade leaves
// orphaned children behind. Every step is a delete-if-exists, so
// re-running the cascade (or letting the sweeps and TTL backstop catch
// the leftovers) finishes the job.
func (e *Engine) DeleteSource(ctx context.Context, sourceID string) (int, error) {
	if sourceID == "" {
		return 0, fmt.Errorf("source id must not be empty")
	}
	deleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		// Always restart from the first page: deletions invalidate any
		// cursor into the index.
		items, _, err := e.store.ListBySource(ctx, sourceID, e.pageSize, "")
		if err != nil {
			return deleted, err
		}
		if len(items) == 0 {
			break
		}
		n, err := e.store.DeleteItems(ctx, items)
		deleted += n
		if err != nil {
			return deleted, fmt.Errorf("cascade delete source %s: %w", sourceID, err)
		}
	}
	if err := e.store.DeleteSource(ctx, sourceID); err != nil {
		return deleted, err
	}
	slog.Info("source cascade deleted", "source_id", sourceID, "items", deleted)
	return deleted, nil
}
