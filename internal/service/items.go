package service

import (
	"context"
	"fmt"
	"time"

	"feedrank/internal/model"
	"feedrank/internal/storage"
)

// Sort selects the index backing a listing.
type Sort string

const (
	SortRecency   Sort = "recency"
	SortRelevance Sort = "relevance"
)

// Filter narrows a listing by read/saved state.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
	FilterRead   Filter = "read"
	FilterSaved  Filter = "saved"
)

// ListOptions parameterize an item listing.
type ListOptions struct {
	Sort     Sort
	Filter   Filter
	PageSize int
	Cursor   string
}

// Items serves item reads and flag toggles.
type Items struct {
	store *storage.RedisStore
}

func NewItems(store *storage.RedisStore) *Items {
	return &Items{store: store}
}

// List pages items by recency or relevance. The filter is applied to
// each index page after the read, so a filtered page may hold fewer
// than PageSize items while the cursor still advances through the
// index; callers keep paging until the cursor comes back empty.
func (s *Items) List(ctx context.Context, opts ListOptions) ([]*model.ContentItem, string, error) {
	var (
		items []*model.ContentItem
		next  string
		err   error
	)
	switch opts.Sort {
	case SortRelevance:
		items, next, err = s.store.ListByRelevance(ctx, opts.PageSize, opts.Cursor)
	case SortRecency, "":
		items, next, err = s.store.ListByRecency(ctx, opts.PageSize, opts.Cursor)
	default:
		return nil, "", fmt.Errorf("invalid sort %q", opts.Sort)
	}
	if err != nil {
		return nil, "", err
	}

	switch opts.Filter {
	case FilterAll, "":
		return items, next, nil
	case FilterUnread, FilterRead, FilterSaved:
	default:
		return nil, "", fmt.Errorf("invalid filter %q", opts.Filter)
	}
	filtered := items[:0]
	for _, item := range items {
		switch opts.Filter {
		case FilterUnread:
			if !item.Read {
				filtered = append(filtered, item)
			}
		case FilterRead:
			if item.Read {
				filtered = append(filtered, item)
			}
		case FilterSaved:
			if item.Saved {
				filtered = append(filtered, item)
			}
		}
	}
	return filtered, next, nil
}

// Get returns one item with its score contributions.
func (s *Items) Get(ctx context.Context, id string) (*model.ContentItem, []model.ScoreContribution, error) {
	return s.store.GetItem(ctx, id)
}

// MarkRead toggles the read flag; the read-state index moves with it.
func (s *Items) MarkRead(ctx context.Context, id string, read bool) (*model.ContentItem, error) {
	return s.store.SetReadState(ctx, id, read, time.Now())
}

// MarkSaved toggles the saved flag.
func (s *Items) MarkSaved(ctx context.Context, id string, saved bool) (*model.ContentItem, error) {
	return s.store.SetSavedState(ctx, id, saved)
}
