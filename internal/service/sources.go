// Package service exposes the operations consumed by the API/UI layer:
// source and term management, candidate ingestion, and item listing
// with read/saved toggles. Callers are assumed authenticated and hand
// in already-parsed values.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"feedrank/internal/cascade"
	"feedrank/internal/model"
	"feedrank/internal/storage"
)

// ErrEmptyUpdate rejects update calls that change nothing.
var ErrEmptyUpdate = errors.New("update payload cannot be empty")

// Sources manages subscribed content origins.
type Sources struct {
	store   *storage.RedisStore
	cascade *cascade.Engine
}

func NewSources(store *storage.RedisStore, cascadeEngine *cascade.Engine) *Sources {
	return &Sources{store: store, cascade: cascadeEngine}
}

// Create registers a source.
func (s *Sources) Create(ctx context.Context, url, title, group string) (*model.Source, error) {
	src, err := model.NewSource(url, title, group)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutSource(ctx, src); err != nil {
		return nil, err
	}
	return src, nil
}

func (s *Sources) List(ctx context.Context) ([]*model.Source, error) {
	return s.store.ListSources(ctx)
}

func (s *Sources) Get(ctx context.Context, id string) (*model.Source, error) {
	return s.store.GetSource(ctx, id)
}

// SourceUpdate carries the mutable source fields; nil means unchanged.
type SourceUpdate struct {
	Title  *string
	Group  *string
	Active *bool
}

// Update applies a partial edit to a source.
func (s *Sources) Update(ctx context.Context, id string, upd SourceUpdate) (*model.Source, error) {
	if upd.Title == nil && upd.Group == nil && upd.Active == nil {
		return nil, ErrEmptyUpdate
	}
	src, err := s.store.GetSource(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if t == "" {
			return nil, model.ErrEmptyTitle
		}
		src.Title = t
	}
	if upd.Group != nil {
		src.Group = strings.TrimSpace(*upd.Group)
	}
	if upd.Active != nil {
		src.Active = *upd.Active
	}
	src.Touch()
	if err := s.store.PutSource(ctx, src); err != nil {
		return nil, err
	}
	return src, nil
}

// MarkFetched records a successful fetch completion on the source.
func (s *Sources) MarkFetched(ctx context.Context, id string, at time.Time) error {
	src, err := s.store.GetSource(ctx, id)
	if err != nil {
		return err
	}
	src.MarkFetched(at)
	return s.store.PutSource(ctx, src)
}

// Delete deregisters a source and cascades over everything it owns.
// Returns the number of items removed.
func (s *Sources) Delete(ctx context.Context, id string) (int, error) {
	if _, err := s.store.GetSource(ctx, id); err != nil {
		return 0, err
	}
	return s.cascade.DeleteSource(ctx, id)
}
