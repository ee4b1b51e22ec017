// Package cache provides the small TTL cache used in front of table reads.
// Keys are namespaced by table name so that any write to a table can evict
// every cached read derived from it, keeping reads-after-writes consistent
// within the process.
package cache

import (
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// TTL is a mutex-guarded key→value cache with per-table time-to-live and
// prefix invalidation. There is no size bound; entries die by TTL or eviction.
type TTL struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	tableTTL   map[string]time.Duration
	now        func() time.Time
}

func New(defaultTTL time.Duration) *TTL {
	return &TTL{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		tableTTL:   make(map[string]time.Duration),
		now:        time.Now,
	}
}

// SetTableTTL overrides the TTL for keys belonging to the given table.
func (c *TTL) SetTableTTL(table string, ttl time.Duration) {
	c.mu.Lock()
	c.tableTTL[table] = ttl
	c.mu.Unlock()
}

// SetClock replaces the time source; tests use this to age entries.
func (c *TTL) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Key builds a table-scoped cache key. Filter arguments are folded into an
// FNV hash so equal queries share an entry regardless of argument length.
func Key(table string, parts ...string) string {
	if len(parts) == 0 {
		return table + ":all"
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(parts, "\x1f")))
	return table + ":" + strconv.FormatUint(h.Sum64(), 16)
}

// Get returns the cached value if present and not expired.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	now := c.now()
	c.mu.RUnlock()
	if !ok || now.After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under the table TTL derived from the key prefix.
func (c *TTL) Set(key string, value any) {
	table := key
	if i := strings.IndexByte(key, ':'); i >= 0 {
		table = key[:i]
	}
	c.mu.Lock()
	ttl, ok := c.tableTTL[table]
	if !ok {
		ttl = c.defaultTTL
	}
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// InvalidatePrefix removes every entry whose key starts with the prefix.
// Called with a table name after any write to that table.
func (c *TTL) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// InvalidateAll clears the cache.
func (c *TTL) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
