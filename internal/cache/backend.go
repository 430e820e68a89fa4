package cache

import (
	"context"
	"time"
)

// KeepTTL passed to Backend.Set overwrites the value and keeps the
// remaining lifetime of the existing entry.
const KeepTTL time.Duration = -1

// Backend stores raw cache entries and the tag registry that maps a tag to
// the keys registered under it. Failures read as misses.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Tag(ctx context.Context, tag, key string)
	Untag(ctx context.Context, tag, key string)
	Tagged(ctx context.Context, tag string) []string
}
