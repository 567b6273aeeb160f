package boundary

import (
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/coregx/acbridge/automaton"
)

// Cache remembers automatons compiled from pattern text so that repeated
// Construct calls with the same text and configuration skip compilation.
// Each call still registers a new handle; only the immutable automaton is
// shared.
//
// A Cache may be shared by engines, including engines with different
// automaton configurations. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[uint64][]cacheEntry
	order   []uint64 // keys in insertion order, one per entry
	stats   CacheStats
}

type cacheEntry struct {
	text   string
	config automaton.Config
	a      *automaton.Automaton
}

// CacheStats reports cache activity.
type CacheStats struct {
	Entries   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewCache creates a cache holding at most maxEntries automatons. The oldest
// entry is evicted first. maxEntries < 1 is treated as 1.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		max:     max(maxEntries, 1),
		entries: make(map[uint64][]cacheEntry),
	}
}

// Get returns the automaton compiled from text under config, if cached.
func (c *Cache) Get(text string, config automaton.Config) (*automaton.Automaton, bool) {
	key := xxh3.HashString(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries[key] {
		if e.config == config && e.text == text {
			c.stats.Hits++
			return e.a, true
		}
	}
	c.stats.Misses++
	return nil, false
}

// Put stores a. An entry already cached for the same text and config is
// kept.
func (c *Cache) Put(text string, config automaton.Config, a *automaton.Automaton) {
	key := xxh3.HashString(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries[key] {
		if e.config == config && e.text == text {
			return
		}
	}
	for len(c.order) >= c.max {
		c.evictOldest()
	}
	c.entries[key] = append(c.entries[key], cacheEntry{text: text, config: config, a: a})
	c.order = append(c.order, key)
}

// evictOldest drops the first entry of the oldest key. Entries within a
// bucket are appended in insertion order, so that entry is the oldest one.
func (c *Cache) evictOldest() {
	key := c.order[0]
	c.order = c.order[1:]

	bucket := c.entries[key]
	if len(bucket) <= 1 {
		delete(c.entries, key)
	} else {
		c.entries[key] = bucket[1:]
	}
	c.stats.Evictions++
}

// Len returns the number of cached automatons.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Stats returns a snapshot of cache activity.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.order)
	return s
}
