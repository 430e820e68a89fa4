package cache

import (
	"assignmentgateway/internal/logging"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	TagAssignments = "assignments"
	TagStudents    = "students"
	TagContent     = "content"
	TagMe          = "me"

	DefaultTTL = 5 * time.Minute

	keyPrefix = "assignmentgateway:"
)

// Key identifies one cached query. Entries are invalidated by Tag, Params
// only distinguish queries within a tag.
type Key struct {
	Tag    string
	Params string
}

func NewKey(tag string, params ...any) Key {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return Key{Tag: tag, Params: strings.Join(parts, ":")}
}

func (k Key) String() string {
	return keyPrefix + k.Tag + ":" + k.Params
}

func (k Key) flight(gen uint64) string {
	return fmt.Sprintf("%s#%d", k, gen)
}

// Result is a cached query value. Stale is set when the value predates the
// last invalidation of its tag.
type Result[T any] struct {
	Data      T
	Stale     bool
	FetchedAt time.Time
}

type entry struct {
	Data      json.RawMessage `json:"data"`
	Stale     bool            `json:"stale"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// QueryCache memoizes query results on a Backend and invalidates them by tag.
// Concurrent reads of one key share a single fetch. Every invalidation bumps
// the tag generation, so a read started afterwards never joins an older
// fetch and an older fetch finishing late is stored stale.
type QueryCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time

	// mu orders generation checks and backend writes against Invalidate.
	mu          sync.Mutex
	generations map[string]uint64
}

func NewQueryCache(backend Backend, ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{
		backend:     backend,
		ttl:         ttl,
		now:         time.Now,
		generations: make(map[string]uint64),
	}
}

func (q *QueryCache) generation(tag string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.generations[tag]
}

func (q *QueryCache) load(ctx context.Context, key string) (*entry, bool) {
	raw, ok := q.backend.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		}
		q.backend.Delete(ctx, key)
		return nil, false
	}
	return &e, true
}

func (q *QueryCache) store(ctx context.Context, key Key, gen uint64, ttl time.Duration, value any) (*entry, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	e := &entry{Data: data, FetchedAt: q.now()}

	q.mu.Lock()
	defer q.mu.Unlock()

	e.Stale = q.generations[key.Tag] != gen
	if e.Stale {
		// A newer fetch may already have stored fresh data.
		if current, ok := q.load(ctx, key.String()); ok && !current.Stale {
			return e, nil
		}
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	q.backend.Tag(ctx, key.Tag, key.String())
	q.backend.Set(ctx, key.String(), raw, ttl)
	return e, nil
}

// Invalidate marks every entry registered under the tags stale. The data is
// kept until its original expiry so a later failing read can still return it.
// Keys whose entry is already gone are dropped from the tag.
func (q *QueryCache) Invalidate(ctx context.Context, tags ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, tag := range tags {
		q.generations[tag]++
		for _, key := range q.backend.Tagged(ctx, tag) {
			e, ok := q.load(ctx, key)
			if !ok {
				q.backend.Untag(ctx, tag, key)
				continue
			}
			if e.Stale {
				continue
			}
			e.Stale = true
			raw, err := json.Marshal(e)
			if err != nil {
				q.backend.Delete(ctx, key)
				continue
			}
			q.backend.Set(ctx, key, raw, KeepTTL)
		}
	}

	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Debug(ctx, "cache invalidated", zap.Strings("tags", tags))
	}
}

// Fetch returns the cached value for key, calling fn on a miss or a stale
// entry. fn runs detached from ctx so one caller giving up does not fail the
// others sharing the fetch. When fn fails, the error is returned together
// with the stale value, if any, and the entry is left as it was.
func Fetch[T any](ctx context.Context, q *QueryCache, key Key, fn func(ctx context.Context) (T, error)) (Result[T], error) {
	return FetchTTL(ctx, q, key, q.ttl, fn)
}

// FetchTTL is Fetch with a per-query lifetime. A non-positive ttl uses the
// cache default.
func FetchTTL[T any](ctx context.Context, q *QueryCache, key Key, ttl time.Duration, fn func(ctx context.Context) (T, error)) (Result[T], error) {
	var res Result[T]
	if ttl <= 0 {
		ttl = q.ttl
	}

	cached, hit := q.load(ctx, key.String())
	if hit && !cached.Stale {
		return decode[T](cached)
	}

	gen := q.generation(key.Tag)
	detached := context.WithoutCancel(ctx)
	ch := q.group.DoChan(key.flight(gen), func() (any, error) {
		value, err := fn(detached)
		if err != nil {
			return nil, err
		}
		return q.store(detached, key, gen, ttl, value)
	})

	select {
	case <-ctx.Done():
		return res, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			if hit {
				stale, err := decode[T](cached)
				if err == nil {
					return stale, r.Err
				}
			}
			return res, r.Err
		}
		return decode[T](r.Val.(*entry))
	}
}

func decode[T any](e *entry) (Result[T], error) {
	res := Result[T]{Stale: e.Stale, FetchedAt: e.FetchedAt}
	if err := json.Unmarshal(e.Data, &res.Data); err != nil {
		return Result[T]{}, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return res, nil
}
