package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source is a subscribed content origin.
type Source struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Group         string     `json:"group,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
}

// NewSource registers a source. An empty title defaults to one derived
// from the URL's host.
func NewSource(rawURL, title, group string) (*Source, error) {
	u, err := url.ParseRequestURI(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return nil, ErrInvalidLink
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Feed from %s", u.Host)
	}
	if len([]rune(title)) > maxTitleLen {
		return nil, ErrTitleTooLong
	}
	return &Source{
		ID:        uuid.NewString(),
		URL:       u.String(),
		Title:     title,
		Group:     strings.TrimSpace(group),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Touch records a mutation time.
func (s *Source) Touch() {
	now := time.Now().UTC()
	s.UpdatedAt = &now
}

// MarkFetched records a successful fetch completion.
func (s *Source) MarkFetched(at time.Time) {
	t := at.UTC()
	s.LastFetchedAt = &t
	s.Touch()
}
