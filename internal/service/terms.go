package service

import (
	"context"
	"strings"

	"feedrank/internal/model"
	"feedrank/internal/scoring"
	"feedrank/internal/storage"
)

// Terms manages interest terms and the recalculation they trigger.
type Terms struct {
	store  *storage.RedisStore
	scorer *scoring.Engine
}

func NewTerms(store *storage.RedisStore, scorer *scoring.Engine) *Terms {
	return &Terms{store: store, scorer: scorer}
}

// Add registers a term. A zero weight defaults to 1.0.
func (s *Terms) Add(ctx context.Context, text string, weight float64) (*model.InterestTerm, error) {
	term, err := model.NewInterestTerm(text, weight)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutTerm(ctx, term); err != nil {
		return nil, err
	}
	return term, nil
}

func (s *Terms) List(ctx context.Context) ([]*model.InterestTerm, error) {
	return s.store.ListTerms(ctx)
}

func (s *Terms) Get(ctx context.Context, id string) (*model.InterestTerm, error) {
	return s.store.GetTerm(ctx, id)
}

// TermUpdate carries the mutable term fields; nil means unchanged.
type TermUpdate struct {
	Text   *string
	Weight *float64
	Active *bool
}

// Update applies a partial edit. The second return value reports
// whether stored scores are now stale: any weight or active change
// invalidates every item's score, and the caller decides when to run
// RecalculateAll (it can take minutes on a large store, so updates
// never block on it).
func (s *Terms) Update(ctx context.Context, id string, upd TermUpdate) (*model.InterestTerm, bool, error) {
	if upd.Text == nil && upd.Weight == nil && upd.Active == nil {
		return nil, false, ErrEmptyUpdate
	}
	term, err := s.store.GetTerm(ctx, id)
	if err != nil {
		return nil, false, err
	}
	needsRecalc := false
	if upd.Text != nil {
		t := strings.TrimSpace(*upd.Text)
		if t == "" {
			return nil, false, model.ErrEmptyText
		}
		if t != term.Text {
			term.Text = t
			needsRecalc = true
		}
	}
	if upd.Weight != nil {
		if err := model.ValidateWeight(*upd.Weight); err != nil {
			return nil, false, err
		}
		if *upd.Weight != term.Weight {
			term.Weight = *upd.Weight
			needsRecalc = true
		}
	}
	if upd.Active != nil && *upd.Active != term.Active {
		term.Active = *upd.Active
		needsRecalc = true
	}
	term.Touch()
	if err := s.store.PutTerm(ctx, term); err != nil {
		return nil, false, err
	}
	return term, needsRecalc, nil
}

// Delete removes a term. Existing contributions referencing it remain
// until the next rescore replaces them.
func (s *Terms) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetTerm(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteTerm(ctx, id)
}

// RecalculateAll rescores every stored item against the current terms.
func (s *Terms) RecalculateAll(ctx context.Context) (int, error) {
	return s.scorer.RecalculateAll(ctx)
}
