// Package cache holds session lookup caches keyed by session token hash.
package cache

import (
	"context"
	"time"
)

// SessionCache maps session token hashes to user IDs. A miss is not an
// error; callers fall back to storage.
type SessionCache interface {
	Get(ctx context.Context, tokenHash string) (uint, bool, error)
	Set(ctx context.Context, tokenHash string, userID uint, ttl time.Duration) error
	Delete(ctx context.Context, tokenHashes ...string) error
	Close() error
}
