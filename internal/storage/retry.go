package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// withRetry re-runs fn on transient store errors with exponential
// backoff plus jitter, bounded by MaxRetries. Every write it guards is
// idempotent (upsert or delete-if-exists), so re-running is safe.
func (s *RedisStore) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.opts.BackoffBase * (1 << (attempt - 1))
			delay += time.Duration(rand.Int63n(int64(s.opts.BackoffBase)))
			slog.Debug("retrying store operation", "op", op, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
	}
	return fmt.Errorf("%s: retries exhausted: %w", op, err)
}

// isTransient classifies errors worth retrying: network failures and
// server-side throttling states. Missing keys and cancellation are
// final.
func isTransient(err error) bool {
	if errors.Is(err, redis.Nil) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "LOADING") ||
		strings.Contains(msg, "READONLY") ||
		strings.Contains(msg, "connection") ||
		strings.Contains(msg, "i/o timeout")
}
