// Package keyspace is the single place where record keys, index
// members and their encodings are built. Callers never construct raw
// keys themselves.
package keyspace

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Record hashes. The hash key plays the role of a partition key and
// the hash fields play the role of sort keys: one HGETALL on an item
// key returns the item metadata together with every contribution.
func SourceKey(id string) string { return "reader:src:" + id }
func ItemKey(id string) string   { return "reader:item:" + id }
func TermKey(id string) string   { return "reader:term:" + id }

// LinkKey addresses the dedup record for a link hash. The value is the
// owning item ID and is only ever created with SET NX.
func LinkKey(hash string) string { return "reader:link:" + hash }

// MetaField holds the entity JSON inside a record hash.
const MetaField = "meta"

const contribPrefix = "contrib:"

// ContribField is the hash field holding one term's score contribution.
func ContribField(termID string) string { return contribPrefix + termID }

// IsContribField reports whether a hash field holds a contribution.
func IsContribField(field string) bool { return strings.HasPrefix(field, contribPrefix) }

// Catalogs list every source / term ID, ordered lexicographically.
const (
	SourceCatalog = "reader:idx:sources"
	TermCatalog   = "reader:idx:terms"
)

// Secondary indexes. All are lexicographic sorted sets (every member
// has score 0) whose members are "{encodedKey}#{itemID}", so equal
// encoded keys tie-break by item ID ascending and a bounded
// ZRANGEBYLEX serves each access pattern.
const (
	RecencyIndex   = "reader:idx:recency"   // inverted publish time: newest first
	RelevanceIndex = "reader:idx:relevance" // inverted score: highest first
	IngestedIndex  = "reader:idx:ingested"  // ingestion time ascending
	ReadIndex      = "reader:idx:read"      // read time ascending; entry exists iff read
)

// SourceIndex lists the item IDs owned by one source.
func SourceIndex(sourceID string) string { return "reader:idx:src:" + sourceID }

// Score key encoding. The underlying index only scans ascending, so
// descending-by-score order is achieved by encoding MAX-score as a
// fixed-width integer key. The encoding clamps into [-ScoreCeiling,
// ScoreCeiling]; the stored score itself is never clamped.
const (
	ScoreCeiling   = 1000.0
	scorePrecision = 1e6
)

// EncodeScore returns the inverted, zero-padded relevance sort key.
// Higher scores yield lexicographically smaller keys.
func EncodeScore(score float64) string {
	s := score
	if s > ScoreCeiling {
		s = ScoreCeiling
	}
	if s < -ScoreCeiling {
		s = -ScoreCeiling
	}
	scaled := int64(math.Round((ScoreCeiling - s) * scorePrecision))
	return fmt.Sprintf("%016d", scaled)
}

// EncodeTime returns a fixed-width ascending time key.
func EncodeTime(t time.Time) string {
	return fmt.Sprintf("%020d", t.UTC().UnixNano())
}

// EncodeTimeInverted returns a fixed-width key that orders newest
// first under an ascending scan.
func EncodeTimeInverted(t time.Time) string {
	return fmt.Sprintf("%020d", math.MaxInt64-t.UTC().UnixNano())
}

const memberSep = "#"

// Index member builders.
func RecencyMember(publishedAt time.Time, itemID string) string {
	return EncodeTimeInverted(publishedAt) + memberSep + itemID
}

func RelevanceMember(score float64, itemID string) string {
	return EncodeScore(score) + memberSep + itemID
}

func IngestedMember(ingestedAt time.Time, itemID string) string {
	return EncodeTime(ingestedAt) + memberSep + itemID
}

func ReadMember(readAt time.Time, itemID string) string {
	return EncodeTime(readAt) + memberSep + itemID
}

// MemberID extracts the item ID from an index member.
func MemberID(member string) string {
	if i := strings.LastIndex(member, memberSep); i >= 0 {
		return member[i+1:]
	}
	return member
}

// TimeCutoff is the exclusive ZRANGEBYLEX upper bound selecting every
// member whose encoded time is strictly before t. A member encoded
// exactly at t sorts after the bare encoded key, so it is excluded.
func TimeCutoff(t time.Time) string {
	return "(" + EncodeTime(t)
}
