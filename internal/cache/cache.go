package cache

import (
	"context"
	"time"
)

// Cache is a read-through cache for catalogue lookups. Implementations must
// treat a miss as ("", nil), never as an error.
type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Key(kind, id string) string
}
