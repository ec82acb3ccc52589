package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedrank/internal/keyspace"
	"feedrank/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrBadCursor reports a cursor that did not come from this store.
var ErrBadCursor = errors.New("malformed cursor")

const defaultPageSize = 100

// Cursors are opaque to callers: a base64 wrapping of the last index
// member served. The next page resumes with an exclusive lex range
// after that member, which keeps pagination deterministic because
// members embed the item ID as a tie-breaker.
func encodeCursor(member string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(member))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	return string(b), nil
}

// pageMembers reads one page of an index.
func (s *RedisStore) pageMembers(ctx context.Context, indexKey, max string, pageSize int, cursor string) ([]string, string, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	min := "-"
	if cursor != "" {
		last, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		min = "(" + last
	}
	if max == "" {
		max = "+"
	}
	members, err := s.rdb.ZRangeByLex(ctx, indexKey, &redis.ZRangeBy{
		Min:   min,
		Max:   max,
		Count: int64(pageSize),
	}).Result()
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(members) == pageSize {
		next = encodeCursor(members[len(members)-1])
	}
	return members, next, nil
}

// pageItems resolves one index page to item records. Members whose
// item record is already gone (a delete racing this read, or the TTL
// backstop expiring the hash) are skipped and pruned from the index,
// so dangling members cannot pin the head of an index forever.
func (s *RedisStore) pageItems(ctx context.Context, indexKey, max string, pageSize int, cursor string) ([]*model.ContentItem, string, error) {
	members, next, err := s.pageMembers(ctx, indexKey, max, pageSize, cursor)
	if err != nil || len(members) == 0 {
		return nil, next, err
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.StringCmd, len(members))
	for i, m := range members {
		cmds[i] = pipe.HGet(ctx, keyspace.ItemKey(keyspace.MemberID(m)), keyspace.MetaField)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, "", err
	}

	items := make([]*model.ContentItem, 0, len(members))
	var dangling []interface{}
	for i, cmd := range cmds {
		b, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			dangling = append(dangling, members[i])
			continue
		}
		if err != nil {
			return nil, "", err
		}
		var item model.ContentItem
		if err := json.Unmarshal(b, &item); err != nil {
			return nil, "", fmt.Errorf("decode item %s: %w", keyspace.MemberID(members[i]), err)
		}
		items = append(items, &item)
	}
	if len(dangling) > 0 {
		if err := s.rdb.ZRem(ctx, indexKey, dangling...).Err(); err != nil {
			return nil, "", err
		}
	}
	return items, next, nil
}

// ListByRecency pages all items newest first.
func (s *RedisStore) ListByRecency(ctx context.Context, pageSize int, cursor string) ([]*model.ContentItem, string, error) {
	return s.pageItems(ctx, keyspace.RecencyIndex, "", pageSize, cursor)
}

// ListByRelevance pages all items highest score first.
func (s *RedisStore) ListByRelevance(ctx context.Context, pageSize int, cursor string) ([]*model.ContentItem, string, error) {
	return s.pageItems(ctx, keyspace.RelevanceIndex, "", pageSize, cursor)
}

// ListBySource pages the items owned by one source, ID ascending.
// Cascade deletion drains it fully.
func (s *RedisStore) ListBySource(ctx context.Context, sourceID string, pageSize int, cursor string) ([]*model.ContentItem, string, error) {
	return s.pageItems(ctx, keyspace.SourceIndex(sourceID), "", pageSize, cursor)
}

// ListIngestedBefore pages items ingested strictly before cutoff,
// oldest first.
func (s *RedisStore) ListIngestedBefore(ctx context.Context, cutoff time.Time, pageSize int, cursor string) ([]*model.ContentItem, string, error) {
	return s.pageItems(ctx, keyspace.IngestedIndex, keyspace.TimeCutoff(cutoff), pageSize, cursor)
}

// ListReadBefore pages items marked read strictly before cutoff,
// oldest read first. Unread items are never in this index.
func (s *RedisStore) ListReadBefore(ctx context.Context, cutoff time.Time, pageSize int, cursor string) ([]*model.ContentItem, string, error) {
	return s.pageItems(ctx, keyspace.ReadIndex, keyspace.TimeCutoff(cutoff), pageSize, cursor)
}
