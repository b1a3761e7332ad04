package ports

import (
	"context"
	"time"
)

// SharedCacheStore is an optional second cache tier shared between
// processes.
type SharedCacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Close() error
}
