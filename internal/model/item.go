package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentItem is an individual piece of content pulled from a Source.
// Score is additive and unbounded: stacking strong term matches can
// push it past 1, and that is how ranking is meant to work here.
type ContentItem struct {
	ID          string     `json:"id"`
	SourceID    string     `json:"source_id"`
	Link        string     `json:"link"`
	Title       string     `json:"title"`
	Body        string     `json:"body,omitempty"`
	PublishedAt time.Time  `json:"published_at"`
	IngestedAt  time.Time  `json:"ingested_at"`
	Read        bool       `json:"read"`
	Saved       bool       `json:"saved"`
	Score       float64    `json:"score"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// NewContentItem validates and builds an item from ingestion input.
func NewContentItem(sourceID, link, title, body string, publishedAt time.Time) (*ContentItem, error) {
	if strings.TrimSpace(sourceID) == "" {
		return nil, ErrEmptyID
	}
	u, err := url.ParseRequestURI(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return nil, ErrInvalidLink
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len([]rune(title)) > maxTitleLen {
		return nil, ErrTitleTooLong
	}
	if len([]rune(body)) > maxBodyLen {
		body = string([]rune(body)[:maxBodyLen])
	}
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}
	return &ContentItem{
		ID:          uuid.NewString(),
		SourceID:    sourceID,
		Link:        u.String(),
		Title:       title,
		Body:        body,
		PublishedAt: publishedAt.UTC(),
		IngestedAt:  time.Now().UTC(),
	}, nil
}

// Touch records a mutation time.
func (c *ContentItem) Touch() {
	now := time.Now().UTC()
	c.UpdatedAt = &now
}

// SetRead flips the read flag. Clearing it also clears the read time.
func (c *ContentItem) SetRead(read bool, at time.Time) {
	if c.Read == read {
		return
	}
	c.Read = read
	if read {
		t := at.UTC()
		c.ReadAt = &t
	} else {
		c.ReadAt = nil
	}
	c.Touch()
}

// SetSaved flips the saved flag.
func (c *ContentItem) SetSaved(saved bool) {
	if c.Saved == saved {
		return
	}
	c.Saved = saved
	c.Touch()
}

// ScoreContribution is one interest term's share of an item's score,
// kept as the auditable breakdown of how the total was computed.
type ScoreContribution struct {
	ItemID       string  `json:"item_id"`
	TermID       string  `json:"term_id"`
	TermText     string  `json:"term_text"`
	Similarity   float64 `json:"similarity"`
	Contribution float64 `json:"contribution"`
}
