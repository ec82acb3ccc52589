package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedrank/internal/model"
)

func TestSourceRoundTrip(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	src, err := model.NewSource("https://blog.example.com/feed", "Example Blog", "tech")
	require.NoError(t, err)
	require.NoError(t, store.PutSource(ctx, src))

	got, err := store.GetSource(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, src.ID, got.ID)
	assert.Equal(t, "Example Blog", got.Title)
	assert.Equal(t, "tech", got.Group)
	assert.True(t, got.Active)

	sources, err := store.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)

	require.NoError(t, store.DeleteSource(ctx, src.ID))
	_, err = store.GetSource(ctx, src.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	sources, err = store.ListSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestTermRoundTrip(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	term, err := model.NewInterestTerm("distributed systems", 2.5)
	require.NoError(t, err)
	require.NoError(t, store.PutTerm(ctx, term))

	got, err := store.GetTerm(ctx, term.ID)
	require.NoError(t, err)
	assert.Equal(t, "distributed systems", got.Text)
	assert.Equal(t, 2.5, got.Weight)

	terms, err := store.ListTerms(ctx)
	require.NoError(t, err)
	require.Len(t, terms, 1)

	require.NoError(t, store.DeleteTerm(ctx, term.ID))
	_, err = store.GetTerm(ctx, term.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkIndexDedup(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateLinkIndex(ctx, "https://example.com/post", "item-1"))

	err := store.CreateLinkIndex(ctx, "https://example.com/post", "item-2")
	assert.ErrorIs(t, err, ErrDuplicateLink)

	// Normalization: case and trailing slash collapse to the same entry.
	err = store.CreateLinkIndex(ctx, "https://EXAMPLE.com/Post/", "item-3")
	assert.ErrorIs(t, err, ErrDuplicateLink)
}

func TestReclaimLinkIndex(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	item := makeItem("item-1", "src-1", now, now, 0)
	require.NoError(t, store.CreateItem(ctx, item, nil))

	// A stale claim from a crashed ingest blocks the conditional
	// create; reclaiming overwrites it unconditionally.
	require.NoError(t, store.CreateLinkIndex(ctx, item.Link, "ghost-item"))
	err := store.CreateLinkIndex(ctx, item.Link, item.ID)
	require.ErrorIs(t, err, ErrDuplicateLink)

	require.NoError(t, store.ReclaimLinkIndex(ctx, item.Link, item.ID))

	got, err := store.GetByLink(ctx, item.Link)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
}

func TestGetByLinkDangling(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	// Link entry exists but the item it points at was never written.
	require.NoError(t, store.CreateLinkIndex(ctx, "https://example.com/gone", "item-gone"))

	_, err := store.GetByLink(ctx, "https://example.com/gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAndGetItem(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	item := makeItem("item-1", "src-1", now, now, 0.7)
	contribs := []model.ScoreContribution{
		{ItemID: item.ID, TermID: "term-a", TermText: "go", Similarity: 0.5, Contribution: 0.5},
		{ItemID: item.ID, TermID: "term-b", TermText: "redis", Similarity: 0.1, Contribution: 0.2},
	}
	require.NoError(t, store.CreateLinkIndex(ctx, item.Link, item.ID))
	require.NoError(t, store.CreateItem(ctx, item, contribs))

	got, gotContribs, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, item.Score, got.Score)
	require.Len(t, gotContribs, 2)

	byTerm := map[string]model.ScoreContribution{}
	for _, c := range gotContribs {
		byTerm[c.TermID] = c
	}
	assert.Equal(t, 0.5, byTerm["term-a"].Contribution)
	assert.Equal(t, 0.2, byTerm["term-b"].Contribution)

	viaLink, err := store.GetByLink(ctx, item.Link)
	require.NoError(t, err)
	assert.Equal(t, item.ID, viaLink.ID)

	_, _, err = store.GetItem(ctx, "no-such-item")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetReadStateMovesIndex(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	item := makeItem("item-1", "src-1", now, now, 0)
	require.NoError(t, store.CreateItem(ctx, item, nil))

	future := now.Add(time.Hour)

	// Unread items are never in the read index.
	listed, _, err := store.ListReadBefore(ctx, future, 10, "")
	require.NoError(t, err)
	assert.Empty(t, listed)

	readAt := now.Add(time.Minute)
	got, err := store.SetReadState(ctx, item.ID, true, readAt)
	require.NoError(t, err)
	assert.True(t, got.Read)
	require.NotNil(t, got.ReadAt)

	listed, _, err = store.ListReadBefore(ctx, future, 10, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, item.ID, listed[0].ID)

	// Marking read again is a no-op, not a second index entry.
	again, err := store.SetReadState(ctx, item.ID, true, readAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, got.ReadAt.UnixNano(), again.ReadAt.UnixNano())
	listed, _, err = store.ListReadBefore(ctx, future.Add(2*time.Hour), 10, "")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// Clearing the flag removes the entry and the read time.
	cleared, err := store.SetReadState(ctx, item.ID, false, time.Now())
	require.NoError(t, err)
	assert.False(t, cleared.Read)
	assert.Nil(t, cleared.ReadAt)

	listed, _, err = store.ListReadBefore(ctx, future.Add(2*time.Hour), 10, "")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestSetSavedState(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	item := makeItem("item-1", "src-1", now, now, 0)
	require.NoError(t, store.CreateItem(ctx, item, nil))

	got, err := store.SetSavedState(ctx, item.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Saved)

	got, _, err = store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Saved)

	got, err = store.SetSavedState(ctx, item.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Saved)
}

func TestUpdateScoreMovesRelevanceEntry(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	a := makeItem("item-a", "src-1", now, now, 0.1)
	b := makeItem("item-b", "src-1", now, now, 0.5)
	require.NoError(t, store.CreateItem(ctx, a, nil))
	require.NoError(t, store.CreateItem(ctx, b, nil))

	ranked, _, err := store.ListByRelevance(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "item-b", ranked[0].ID)

	newContribs := []model.ScoreContribution{
		{ItemID: a.ID, TermID: "term-x", TermText: "x", Similarity: 0.9, Contribution: 0.9},
	}
	updated, err := store.UpdateScore(ctx, a.ID, 0.9, newContribs)
	require.NoError(t, err)
	assert.Equal(t, 0.9, updated.Score)
	require.NotNil(t, updated.UpdatedAt)

	// The old index entry is gone: exactly two entries, new order.
	ranked, _, err = store.ListByRelevance(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "item-a", ranked[0].ID)
	assert.Equal(t, "item-b", ranked[1].ID)

	_, contribs, err := store.GetItem(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, contribs, 1)
	assert.Equal(t, "term-x", contribs[0].TermID)
}

func TestUpdateScoreReplacesContributions(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	item := makeItem("item-1", "src-1", now, now, 0.4)
	old := []model.ScoreContribution{
		{ItemID: item.ID, TermID: "term-old", TermText: "old", Similarity: 0.4, Contribution: 0.4},
	}
	require.NoError(t, store.CreateItem(ctx, item, old))

	// A rescore after the term was deleted carries no contribution for
	// it; the stale field must not survive.
	updated, err := store.UpdateScore(ctx, item.ID, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Score)

	_, contribs, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, contribs)
}

func TestDeleteItemsRemovesFamily(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	var items []*model.ContentItem
	for _, id := range []string{"item-1", "item-2", "item-3"} {
		item := makeItem(id, "src-1", now, now, 0.5)
		require.NoError(t, store.CreateLinkIndex(ctx, item.Link, item.ID))
		require.NoError(t, store.CreateItem(ctx, item, []model.ScoreContribution{
			{ItemID: item.ID, TermID: "term-a", TermText: "go", Similarity: 0.5, Contribution: 0.5},
		}))
		items = append(items, item)
	}
	// One item is read; its read index entry must go too.
	read, err := store.SetReadState(ctx, "item-2", true, now)
	require.NoError(t, err)
	items[1] = read

	n, err := store.DeleteItems(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, item := range items {
		_, _, err := store.GetItem(ctx, item.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetByLink(ctx, item.Link)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	for name, list := range map[string]func() ([]*model.ContentItem, string, error){
		"recency":   func() ([]*model.ContentItem, string, error) { return store.ListByRecency(ctx, 10, "") },
		"relevance": func() ([]*model.ContentItem, string, error) { return store.ListByRelevance(ctx, 10, "") },
		"source":    func() ([]*model.ContentItem, string, error) { return store.ListBySource(ctx, "src-1", 10, "") },
		"ingested": func() ([]*model.ContentItem, string, error) {
			return store.ListIngestedBefore(ctx, now.Add(time.Hour), 10, "")
		},
		"read": func() ([]*model.ContentItem, string, error) {
			return store.ListReadBefore(ctx, now.Add(time.Hour), 10, "")
		},
	} {
		got, _, err := list()
		require.NoError(t, err, name)
		assert.Empty(t, got, name)
	}

	// Deleting already-deleted items is a no-op.
	n, err = store.DeleteItems(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDeleteItemsBatches(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	// 12 items against a batch size of 5 exercises the chunk loop.
	now := time.Now()
	var items []*model.ContentItem
	for i := 0; i < 12; i++ {
		item := makeItem(itemID(i), "src-1", now, now, 0)
		require.NoError(t, store.CreateItem(ctx, item, nil))
		items = append(items, item)
	}

	n, err := store.DeleteItems(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	got, _, err := store.ListByRecency(ctx, 50, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func itemID(i int) string {
	return string(rune('a'+i)) + "-item"
}
