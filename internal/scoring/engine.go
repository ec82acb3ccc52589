// Package scoring computes importance scores for content items by
// comparing their text against weighted interest terms with embedding
// cosine similarity, and persists the per-term breakdown alongside the
// total.
package scoring

import (
	"context"
	"errors"
	"log/slog"

	"feedrank/internal/ai"
	"feedrank/internal/model"
	"feedrank/internal/storage"
)

// Engine scores content items against interest terms.
type Engine struct {
	embedder ai.Embedder
	store    *storage.RedisStore
	cache    EmbeddingCache
	dim      int
	pageSize int
}

func NewEngine(embedder ai.Embedder, store *storage.RedisStore, cache EmbeddingCache, dim, pageSize int) *Engine {
	if cache == nil {
		cache = NewLRUCache(100)
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Engine{embedder: embedder, store: store, cache: cache, dim: dim, pageSize: pageSize}
}

// embed fetches a vector, degrading to a zero vector on provider
// failure so one bad call never aborts a whole scoring run. Zero
// vectors yield zero similarity downstream.
func (e *Engine) embed(ctx context.Context, text string) []float32 {
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		slog.Error("embedding failed, using zero vector", "len", len(text), "error", err)
		return make([]float32, e.dim)
	}
	return vec
}

// termEmbedding returns a term's vector through the per-process cache.
// On a miss the vector is computed outside the cache lock; a racing
// duplicate computation is harmless and the last write wins.
func (e *Engine) termEmbedding(ctx context.Context, text string) []float32 {
	if vec, ok := e.cache.Get(text); ok {
		return vec
	}
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		// Not cached: a later run should retry the provider.
		slog.Error("term embedding failed, using zero vector", "term", text, "error", err)
		return make([]float32, e.dim)
	}
	e.cache.Add(text, vec)
	return vec
}

// Score computes the item's total score and per-term contributions
// against the active subset of terms. The total is the plain sum of
// contributions, deliberately unclamped.
func (e *Engine) Score(ctx context.Context, item *model.ContentItem, terms []*model.InterestTerm) (float64, []model.ScoreContribution) {
	itemVec := e.embed(ctx, item.Title+" "+item.Body)

	total := 0.0
	contribs := make([]model.ScoreContribution, 0, len(terms))
	for _, term := range terms {
		if !term.Active {
			continue
		}
		sim := cosine(itemVec, e.termEmbedding(ctx, term.Text))
		contribution := sim * term.Weight
		total += contribution
		contribs = append(contribs, model.ScoreContribution{
			ItemID:       item.ID,
			TermID:       term.ID,
			TermText:     term.Text,
			Similarity:   sim,
			Contribution: contribution,
		})
	}
	return total, contribs
}

// Rescore recomputes one item's score against the current terms and
// persists it, replacing all prior contributions.
func (e *Engine) Rescore(ctx context.Context, itemID string) error {
	item, _, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	terms, err := e.store.ListTerms(ctx)
	if err != nil {
		return err
	}
	score, contribs := e.Score(ctx, item, terms)
	_, err = e.store.UpdateScore(ctx, itemID, score, contribs)
	return err
}

// RecalculateAll rescores every item reachable through the recency
// index, page at a time, checking for cancellation between pages.
// Rescoring an item twice yields the same result, so the operation is
// idempotent and may be re-run after an interruption.
func (e *Engine) RecalculateAll(ctx context.Context) (int, error) {
	terms, err := e.store.ListTerms(ctx)
	if err != nil {
		return 0, err
	}
	rescored := 0
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return rescored, err
		}
		items, next, err := e.store.ListByRecency(ctx, e.pageSize, cursor)
		if err != nil {
			return rescored, err
		}
		for _, item := range items {
			score, contribs := e.Score(ctx, item, terms)
			if _, err := e.store.UpdateScore(ctx, item.ID, score, contribs); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue // deleted underneath us
				}
				return rescored, err
			}
			rescored++
		}
		if next == "" {
			break
		}
		cursor = next
	}
	slog.Info("recalculated importance scores", "items", rescored, "terms", len(terms))
	return rescored, nil
}
