package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"feedrank/internal/model"
	"feedrank/internal/scoring"
	"feedrank/internal/storage"
)

// Candidate is an already-parsed content item handed in by the
// ingestion source. Fetching and feed parsing happen upstream.
type Candidate struct {
	Link        string
	Title       string
	Body        string
	PublishedAt time.Time
}

// Ingestor turns candidates into stored content items, deduplicating
// by normalized link and scoring when an engine is wired.
type Ingestor struct {
	store  *storage.RedisStore
	scorer *scoring.Engine // nil leaves new items unscored
}

func NewIngestor(store *storage.RedisStore, scorer *scoring.Engine) *Ingestor {
	return &Ingestor{store: store, scorer: scorer}
}

// Ingest validates and stores one candidate. A candidate whose
// normalized link is already indexed is reported as not created, with
// the existing item returned; two concurrent ingests of the same link
// leave exactly one item behind because the link claim is a
// conditional create. A claim whose item is gone is taken over and
// ingested fresh, so a crash between claim and item write does not
// leave the link unreingestable. On a nil error the returned item is
// never nil.
func (i *Ingestor) Ingest(ctx context.Context, sourceID string, cand Candidate) (*model.ContentItem, bool, error) {
	item, err := model.NewContentItem(sourceID, cand.Link, cand.Title, cand.Body, cand.PublishedAt)
	if err != nil {
		return nil, false, err
	}

	// Claim the link before writing anything else: the loser of a
	// duplicate race must leave no trace.
	if err := i.store.CreateLinkIndex(ctx, item.Link, item.ID); err != nil {
		if !errors.Is(err, storage.ErrDuplicateLink) {
			return nil, false, err
		}
		existing, lookupErr := i.store.GetByLink(ctx, item.Link)
		if lookupErr == nil {
			slog.Debug("skipped duplicate candidate", "link", item.Link)
			return existing, false, nil
		}
		if !errors.Is(lookupErr, storage.ErrNotFound) {
			return nil, false, lookupErr
		}
		// The claim points at an item that no longer exists: an earlier
		// ingest crashed between claim and item write, or the item
		// expired. Take the claim over and ingest normally.
		if err := i.store.ReclaimLinkIndex(ctx, item.Link, item.ID); err != nil {
			return nil, false, err
		}
		slog.Debug("reclaimed dangling link", "link", item.Link)
	}

	var contribs []model.ScoreContribution
	if i.scorer != nil {
		terms, err := i.store.ListTerms(ctx)
		if err != nil {
			return nil, false, err
		}
		item.Score, contribs = i.scorer.Score(ctx, item, terms)
	}

	if err := i.store.CreateItem(ctx, item, contribs); err != nil {
		return nil, false, err
	}
	return item, true, nil
}
