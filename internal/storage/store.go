// Package storage implements the record store on a single Redis
// keyspace: one hash per entity, five lexicographic sorted sets as
// secondary indexes, and a conditionally created link record for
// deduplication. All keys come from the keyspace package.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedrank/internal/keyspace"
	"feedrank/internal/model"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound reports that no record exists under the given key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateLink reports that a link index entry already exists.
	// It is an expected outcome of ingestion, not a failure.
	ErrDuplicateLink = errors.New("link already indexed")
)

// Options tune batching, retries and the passive expiry backstop.
type Options struct {
	BatchSize   int
	MaxRetries  int
	BackoffBase time.Duration
	// TTLBackstop is applied to item and link keys so the store
	// reclaims them eventually even if every sweep fails. Its
	// enforcement latency is coarse; sweeps remain the timely path.
	TTLBackstop time.Duration
}

func (o *Options) fillDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 25
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 100 * time.Millisecond
	}
}

// RedisStore provides all record access for the reader core.
type RedisStore struct {
	rdb  *redis.Client
	opts Options
}

func NewRedisStore(rdb *redis.Client, opts Options) *RedisStore {
	opts.fillDefaults()
	return &RedisStore{rdb: rdb, opts: opts}
}

// Ping checks store availability.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// --- sources ---

// PutSource upserts a source record and its catalog entry.
func (s *RedisStore) PutSource(ctx context.Context, src *model.Source) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, keyspace.SourceKey(src.ID), keyspace.MetaField, b)
		pipe.ZAdd(ctx, keyspace.SourceCatalog, redis.Z{Score: 0, Member: src.ID})
		return nil
	})
	return err
}

func (s *RedisStore) GetSource(ctx context.Context, id string) (*model.Source, error) {
	b, err := s.rdb.HGet(ctx, keyspace.SourceKey(id), keyspace.MetaField).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var src model.Source
	if err := json.Unmarshal(b, &src); err != nil {
		return nil, fmt.Errorf("decode source %s: %w", id, err)
	}
	return &src, nil
}

// ListSources returns every registered source in ID order.
func (s *RedisStore) ListSources(ctx context.Context) ([]*model.Source, error) {
	ids, err := s.rdb.ZRangeByLex(ctx, keyspace.SourceCatalog, &redis.ZRangeBy{Min: "-", Max: "+"}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*model.Source, 0, len(ids))
	for _, id := range ids {
		src, err := s.GetSource(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue // catalog entry racing a delete
		}
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// DeleteSource removes the source record, its catalog entry and its
// (by then drained) parent index. Absent keys are a no-op.
func (s *RedisStore) DeleteSource(ctx context.Context, id string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keyspace.SourceKey(id))
		pipe.ZRem(ctx, keyspace.SourceCatalog, id)
		pipe.Del(ctx, keyspace.SourceIndex(id))
		return nil
	})
	return err
}

// --- interest terms ---

func (s *RedisStore) PutTerm(ctx context.Context, term *model.InterestTerm) error {
	b, err := json.Marshal(term)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, keyspace.TermKey(term.ID), keyspace.MetaField, b)
		pipe.ZAdd(ctx, keyspace.TermCatalog, redis.Z{Score: 0, Member: term.ID})
		return nil
	})
	return err
}

func (s *RedisStore) GetTerm(ctx context.Context, id string) (*model.InterestTerm, error) {
	b, err := s.rdb.HGet(ctx, keyspace.TermKey(id), keyspace.MetaField).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var term model.InterestTerm
	if err := json.Unmarshal(b, &term); err != nil {
		return nil, fmt.Errorf("decode term %s: %w", id, err)
	}
	return &term, nil
}

func (s *RedisStore) ListTerms(ctx context.Context) ([]*model.InterestTerm, error) {
	ids, err := s.rdb.ZRangeByLex(ctx, keyspace.TermCatalog, &redis.ZRangeBy{Min: "-", Max: "+"}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*model.InterestTerm, 0, len(ids))
	for _, id := range ids {
		term, err := s.GetTerm(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, term)
	}
	return out, nil
}

func (s *RedisStore) DeleteTerm(ctx context.Context, id string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keyspace.TermKey(id))
		pipe.ZRem(ctx, keyspace.TermCatalog, id)
		return nil
	})
	return err
}

// --- link index ---

// CreateLinkIndex conditionally creates the dedup record for a link.
// Returns ErrDuplicateLink when an entry for the normalized link
// already exists.
func (s *RedisStore) CreateLinkIndex(ctx context.Context, link, itemID string) error {
	key := keyspace.LinkKey(model.LinkHash(link))
	ok, err := s.rdb.SetNX(ctx, key, itemID, s.opts.TTLBackstop).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicateLink
	}
	return nil
}

// ReclaimLinkIndex overwrites the dedup record for a link. Used when a
// claim points at an item that no longer exists (an ingest crashed
// between claim and item write, or the item expired), so the link is
// ingestable again instead of staying dead until the key's TTL fires.
func (s *RedisStore) ReclaimLinkIndex(ctx context.Context, link, itemID string) error {
	key := keyspace.LinkKey(model.LinkHash(link))
	return s.rdb.Set(ctx, key, itemID, s.opts.TTLBackstop).Err()
}

// GetByLink resolves a link to its content item. A dangling link entry
// whose item has already been deleted reports ErrNotFound: missing
// parents mean the item no longer exists.
func (s *RedisStore) GetByLink(ctx context.Context, link string) (*model.ContentItem, error) {
	itemID, err := s.rdb.Get(ctx, keyspace.LinkKey(model.LinkHash(link))).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item, _, err := s.GetItem(ctx, itemID)
	return item, err
}

// --- content items ---

// CreateItem persists a new item, its contributions, its link record's
// sibling indexes and all secondary index entries in one MULTI/EXEC.
// The link index entry itself must already have been claimed via
// CreateLinkIndex, so contributions and indexes never exist without a
// winning dedup claim.
func (s *RedisStore) CreateItem(ctx context.Context, item *model.ContentItem, contribs []model.ScoreContribution) error {
	meta, err := json.Marshal(item)
	if err != nil {
		return err
	}
	key := keyspace.ItemKey(item.ID)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// Children first: contribution fields land with or before the
		// scored metadata, never after.
		for _, c := range contribs {
			b, err := json.Marshal(c)
			if err != nil {
				return err
			}
			pipe.HSet(ctx, key, keyspace.ContribField(c.TermID), b)
		}
		pipe.HSet(ctx, key, keyspace.MetaField, meta)
		pipe.ZAdd(ctx, keyspace.RecencyIndex, redis.Z{Member: keyspace.RecencyMember(item.PublishedAt, item.ID)})
		pipe.ZAdd(ctx, keyspace.RelevanceIndex, redis.Z{Member: keyspace.RelevanceMember(item.Score, item.ID)})
		pipe.ZAdd(ctx, keyspace.IngestedIndex, redis.Z{Member: keyspace.IngestedMember(item.IngestedAt, item.ID)})
		pipe.ZAdd(ctx, keyspace.SourceIndex(item.SourceID), redis.Z{Member: item.ID})
		if s.opts.TTLBackstop > 0 {
			pipe.Expire(ctx, key, s.opts.TTLBackstop)
		}
		return nil
	})
	return err
}

// GetItem returns an item together with its score contributions from a
// single range read on the item's hash.
func (s *RedisStore) GetItem(ctx context.Context, id string) (*model.ContentItem, []model.ScoreContribution, error) {
	fields, err := s.rdb.HGetAll(ctx, keyspace.ItemKey(id)).Result()
	if err != nil {
		return nil, nil, err
	}
	meta, ok := fields[keyspace.MetaField]
	if !ok {
		return nil, nil, ErrNotFound
	}
	var item model.ContentItem
	if err := json.Unmarshal([]byte(meta), &item); err != nil {
		return nil, nil, fmt.Errorf("decode item %s: %w", id, err)
	}
	var contribs []model.ScoreContribution
	for field, val := range fields {
		if !keyspace.IsContribField(field) {
			continue
		}
		var c model.ScoreContribution
		if err := json.Unmarshal([]byte(val), &c); err != nil {
			return nil, nil, fmt.Errorf("decode contribution %s/%s: %w", id, field, err)
		}
		contribs = append(contribs, c)
	}
	return &item, contribs, nil
}

// SetReadState updates the read flag and moves the read-state index
// entry in the same transaction, keeping the invariant that the entry
// exists iff the flag is set.
func (s *RedisStore) SetReadState(ctx context.Context, id string, read bool, at time.Time) (*model.ContentItem, error) {
	item, _, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Read == read {
		return item, nil
	}
	oldReadAt := item.ReadAt
	item.SetRead(read, at)
	meta, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, keyspace.ItemKey(id), keyspace.MetaField, meta)
		if read {
			pipe.ZAdd(ctx, keyspace.ReadIndex, redis.Z{Member: keyspace.ReadMember(*item.ReadAt, id)})
		} else if oldReadAt != nil {
			pipe.ZRem(ctx, keyspace.ReadIndex, keyspace.ReadMember(*oldReadAt, id))
		}
		if s.opts.TTLBackstop > 0 {
			pipe.Expire(ctx, keyspace.ItemKey(id), s.opts.TTLBackstop)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SetSavedState updates the saved flag.
func (s *RedisStore) SetSavedState(ctx context.Context, id string, saved bool) (*model.ContentItem, error) {
	item, _, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Saved == saved {
		return item, nil
	}
	item.SetSaved(saved)
	meta, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.HSet(ctx, keyspace.ItemKey(id), keyspace.MetaField, meta).Err(); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateScore replaces the item's stored score and its full set of
// contributions (delete-then-insert) and moves the relevance index
// entry, all in one transaction.
func (s *RedisStore) UpdateScore(ctx context.Context, id string, score float64, contribs []model.ScoreContribution) (*model.ContentItem, error) {
	item, oldContribs, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	oldScore := item.Score
	item.Score = score
	item.Touch()
	meta, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	key := keyspace.ItemKey(id)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, c := range oldContribs {
			pipe.HDel(ctx, key, keyspace.ContribField(c.TermID))
		}
		for _, c := range contribs {
			b, err := json.Marshal(c)
			if err != nil {
				return err
			}
			pipe.HSet(ctx, key, keyspace.ContribField(c.TermID), b)
		}
		pipe.HSet(ctx, key, keyspace.MetaField, meta)
		pipe.ZRem(ctx, keyspace.RelevanceIndex, keyspace.RelevanceMember(oldScore, id))
		pipe.ZAdd(ctx, keyspace.RelevanceIndex, redis.Z{Member: keyspace.RelevanceMember(score, id)})
		if s.opts.TTLBackstop > 0 {
			pipe.Expire(ctx, key, s.opts.TTLBackstop)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItems removes item families (contributions, link record, item
// record, every index entry) in bounded pipelined batches with retry.
// Deleting an item someone else already removed is a no-op, so the
// operation is safe to race with sweeps and cascades.
func (s *RedisStore) DeleteItems(ctx context.Context, items []*model.ContentItem) (int, error) {
	deleted := 0
	for start := 0; start < len(items); start += s.opts.BatchSize {
		end := start + s.opts.BatchSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]
		err := s.withRetry(ctx, "delete items", func() error {
			_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, item := range chunk {
					// Children and auxiliaries before the parent
					// record: link entry, then the item hash (which
					// carries the contribution fields), then indexes.
					pipe.Del(ctx, keyspace.LinkKey(model.LinkHash(item.Link)))
					pipe.Del(ctx, keyspace.ItemKey(item.ID))
					pipe.ZRem(ctx, keyspace.RecencyIndex, keyspace.RecencyMember(item.PublishedAt, item.ID))
					pipe.ZRem(ctx, keyspace.RelevanceIndex, keyspace.RelevanceMember(item.Score, item.ID))
					pipe.ZRem(ctx, keyspace.IngestedIndex, keyspace.IngestedMember(item.IngestedAt, item.ID))
					if item.ReadAt != nil {
						pipe.ZRem(ctx, keyspace.ReadIndex, keyspace.ReadMember(*item.ReadAt, item.ID))
					}
					pipe.ZRem(ctx, keyspace.SourceIndex(item.SourceID), item.ID)
				}
				return nil
			})
			return err
		})
		if err != nil {
			return deleted, err
		}
		deleted += len(chunk)
	}
	return deleted, nil
}
