package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContentItemValidation(t *testing.T) {
	published := time.Now().Add(-time.Hour)

	t.Run("valid", func(t *testing.T) {
		item, err := NewContentItem("src-1", "https://example.com/post", "  A post  ", "body", published)
		require.NoError(t, err)
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, "A post", item.Title)
		assert.False(t, item.Read)
		assert.False(t, item.Saved)
		assert.Zero(t, item.Score)
		assert.False(t, item.IngestedAt.IsZero())
	})

	t.Run("empty source", func(t *testing.T) {
		_, err := NewContentItem("  ", "https://example.com/post", "t", "", published)
		assert.ErrorIs(t, err, ErrEmptyID)
	})

	t.Run("bad link", func(t *testing.T) {
		_, err := NewContentItem("src-1", "example.com/no-scheme", "t", "", published)
		assert.ErrorIs(t, err, ErrInvalidLink)
	})

	t.Run("empty title", func(t *testing.T) {
		_, err := NewContentItem("src-1", "https://example.com/post", "   ", "", published)
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("title at limit", func(t *testing.T) {
		_, err := NewContentItem("src-1", "https://example.com/post", strings.Repeat("x", 500), "", published)
		assert.NoError(t, err)
	})

	t.Run("title over limit", func(t *testing.T) {
		_, err := NewContentItem("src-1", "https://example.com/post", strings.Repeat("x", 501), "", published)
		assert.ErrorIs(t, err, ErrTitleTooLong)
	})

	t.Run("body truncated not rejected", func(t *testing.T) {
		item, err := NewContentItem("src-1", "https://example.com/post", "t", strings.Repeat("x", 50001), published)
		require.NoError(t, err)
		assert.Len(t, []rune(item.Body), 50000)
	})

	t.Run("zero publish time defaults to now", func(t *testing.T) {
		item, err := NewContentItem("src-1", "https://example.com/post", "t", "", time.Time{})
		require.NoError(t, err)
		assert.False(t, item.PublishedAt.IsZero())
	})
}

func TestContentItemReadFlag(t *testing.T) {
	item, err := NewContentItem("src-1", "https://example.com/post", "t", "", time.Now())
	require.NoError(t, err)

	at := time.Now()
	item.SetRead(true, at)
	assert.True(t, item.Read)
	require.NotNil(t, item.ReadAt)
	assert.Equal(t, at.UTC().UnixNano(), item.ReadAt.UnixNano())

	// Setting the same state again keeps the original read time.
	item.SetRead(true, at.Add(time.Hour))
	assert.Equal(t, at.UTC().UnixNano(), item.ReadAt.UnixNano())

	item.SetRead(false, time.Now())
	assert.False(t, item.Read)
	assert.Nil(t, item.ReadAt)
}

func TestNewSource(t *testing.T) {
	t.Run("default title from host", func(t *testing.T) {
		src, err := NewSource("https://blog.example.com/feed.xml", "", "news")
		require.NoError(t, err)
		assert.Equal(t, "Feed from blog.example.com", src.Title)
		assert.Equal(t, "news", src.Group)
		assert.True(t, src.Active)
	})

	t.Run("explicit title kept", func(t *testing.T) {
		src, err := NewSource("https://blog.example.com/feed.xml", "My Blog", "")
		require.NoError(t, err)
		assert.Equal(t, "My Blog", src.Title)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := NewSource("://nope", "", "")
		assert.ErrorIs(t, err, ErrInvalidLink)
	})
}

func TestNewInterestTerm(t *testing.T) {
	t.Run("zero weight defaults", func(t *testing.T) {
		term, err := NewInterestTerm("golang", 0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, term.Weight)
		assert.True(t, term.Active)
	})

	t.Run("weight bounds", func(t *testing.T) {
		_, err := NewInterestTerm("t", -0.1)
		assert.ErrorIs(t, err, ErrInvalidWeight)
		_, err = NewInterestTerm("t", 10.01)
		assert.ErrorIs(t, err, ErrInvalidWeight)
		_, err = NewInterestTerm("t", 10.0)
		assert.NoError(t, err)
		_, err = NewInterestTerm("t", 0.001)
		assert.NoError(t, err)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := NewInterestTerm("   ", 1)
		assert.ErrorIs(t, err, ErrEmptyText)
	})
}

func TestNormalizeLink(t *testing.T) {
	cases := map[string]string{
		"https://Example.com/Post/":  "https://example.com/post",
		"  https://example.com/a  ":  "https://example.com/a",
		"https://example.com":        "https://example.com",
		"https://example.com/":       "https://example.com",
		"https://example.com/a?q=1&": "https://example.com/a?q=1&",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLink(in), in)
	}
}

func TestLinkHashCollapsesVariants(t *testing.T) {
	a := LinkHash("https://example.com/post")
	b := LinkHash("https://EXAMPLE.com/post/")
	c := LinkHash("https://example.com/other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // sha256 hex
}
