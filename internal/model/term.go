package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InterestTerm is a user-supplied weighted term used for scoring.
type InterestTerm struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Weight    float64    `json:"weight"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewInterestTerm builds a term. A zero weight defaults to 1.0.
func NewInterestTerm(text string, weight float64) (*InterestTerm, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if weight == 0 {
		weight = 1.0
	}
	if err := ValidateWeight(weight); err != nil {
		return nil, err
	}
	return &InterestTerm{
		ID:        uuid.NewString(),
		Text:      text,
		Weight:    weight,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ValidateWeight enforces the (0, 10] weight bounds.
func ValidateWeight(w float64) error {
	if w <= MinWeight || w > MaxWeight {
		return ErrInvalidWeight
	}
	return nil
}

// Touch records a mutation time.
func (t *InterestTerm) Touch() {
	now := time.Now().UTC()
	t.UpdatedAt = &now
}
