// Package cache holds the in-process LRU for retrieval results, so
// repeated or near-identical queries skip the embedding round-trip.
package cache

import (
	"container/list"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lovepop1/emotiaisupport/schema"
)

// RetrievalCache maps a query key to a ranked result set, evicting the
// least recently used entry when full and expiring entries after a TTL.
type RetrievalCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*retrievalEntry
	order    *list.List
}

type retrievalEntry struct {
	key     string
	results []schema.SearchResult
	expires time.Time
	element *list.Element
}

// NewRetrievalCache creates a cache with the given capacity and entry
// TTL. Non-positive values take defaults (512 entries, one minute).
func NewRetrievalCache(capacity int, ttl time.Duration) *RetrievalCache {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RetrievalCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*retrievalEntry, capacity),
		order:    list.New(),
	}
}

// Key derives the cache key for a query. Case and surrounding space are
// folded so trivially restated queries hit the same entry.
func Key(query string, topK int) string {
	norm := strings.ToLower(strings.TrimSpace(query))
	sum := sha1.Sum([]byte(norm))
	return fmt.Sprintf("q:%d:%s", topK, hex.EncodeToString(sum[:]))
}

// Get returns a copy of the cached result set, if present and fresh.
func (c *RetrievalCache) Get(key string) ([]schema.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !ent.expires.IsZero() && !time.Now().Before(ent.expires) {
		c.removeEntry(ent)
		return nil, false
	}
	c.order.MoveToFront(ent.element)
	out := make([]schema.SearchResult, len(ent.results))
	copy(out, ent.results)
	return out, true
}

// Set stores a result set under key, copying it so later mutation by
// the caller cannot corrupt the cached ranking.
func (c *RetrievalCache) Set(key string, results []schema.SearchResult) {
	stored := make([]schema.SearchResult, len(results))
	copy(stored, results)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		ent.results = stored
		ent.expires = time.Now().Add(c.ttl)
		c.order.MoveToFront(ent.element)
		return
	}
	if len(c.items) >= c.capacity {
		c.evictOldest()
	}
	elem := c.order.PushFront(key)
	c.items[key] = &retrievalEntry{
		key:     key,
		results: stored,
		expires: time.Now().Add(c.ttl),
		element: elem,
	}
}

// Purge drops every entry. Called after a corpus backfill so stale
// rankings never outlive the documents they ranked.
func (c *RetrievalCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*retrievalEntry, c.capacity)
	c.order.Init()
}

// Len reports the current entry count.
func (c *RetrievalCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *RetrievalCache) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	if ent, ok := c.items[elem.Value.(string)]; ok {
		c.removeEntry(ent)
	}
}

func (c *RetrievalCache) removeEntry(ent *retrievalEntry) {
	if ent.element != nil {
		c.order.Remove(ent.element)
	}
	delete(c.items, ent.key)
}
