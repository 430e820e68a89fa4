package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryItem struct {
	data    []byte
	expires time.Time
}

// MemoryCache is the in-process backend used when no redis is configured.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	tags  map[string]map[string]struct{}
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		tags:  make(map[string]map[string]struct{}),
		now:   time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if m.expired(item) {
		m.drop(key)
		return nil, false
	}
	out := make([]byte, len(item.data))
	copy(out, item.data)
	return out, true
}

func (m *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := memoryItem{data: make([]byte, len(data))}
	copy(item.data, data)
	switch {
	case ttl == KeepTTL:
		item.expires = m.items[key].expires
	case ttl > 0:
		item.expires = m.now().Add(ttl)
	}
	m.items[key] = item
}

func (m *MemoryCache) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drop(key)
}

func (m *MemoryCache) expired(item memoryItem) bool {
	return !item.expires.IsZero() && !m.now().Before(item.expires)
}

// drop removes key together with its tag registrations. Callers hold mu.
func (m *MemoryCache) drop(key string) {
	delete(m.items, key)
	for tag, keys := range m.tags {
		delete(keys, key)
		if len(keys) == 0 {
			delete(m.tags, tag)
		}
	}
}

func (m *MemoryCache) Tag(_ context.Context, tag, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys, ok := m.tags[tag]
	if !ok {
		keys = make(map[string]struct{})
		m.tags[tag] = keys
	}
	keys[key] = struct{}{}
}

func (m *MemoryCache) Untag(_ context.Context, tag, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if keys, ok := m.tags[tag]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(m.tags, tag)
		}
	}
}

// Tagged lists the live keys of tag. Expired entries are dropped on the way.
func (m *MemoryCache) Tagged(_ context.Context, tag string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.tags[tag]))
	for k := range m.tags[tag] {
		item, ok := m.items[k]
		if ok && m.expired(item) {
			m.drop(k)
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
