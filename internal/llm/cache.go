package llm

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"
)

// cacheEntry is a cached categorization.
type cacheEntry struct {
	expiry time.Time
	result Result
}

// resultCache keeps successful categorizations for a TTL. A nil cache
// stores nothing.
type resultCache struct {
	entries map[string]cacheEntry
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
}

// newResultCache returns nil when ttl is not positive.
func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		return nil
	}
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *resultCache) get(key string) (Result, bool) {
	if c == nil {
		return Result{}, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Result{}, false
	}

	if c.now().After(entry.expiry) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return Result{}, false
	}
	return entry.result, true
}

func (c *resultCache) set(key string, result Result) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: result, expiry: c.now().Add(c.ttl)}
}

func (c *resultCache) size() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey identifies a request by the transaction and everything else the
// model sees.
func cacheKey(req Request) string {
	hash := req.Transaction.Hash
	if hash == "" {
		hash = req.Transaction.GenerateHash()
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00", hash, strings.Join(req.Categories, "\x1f"), req.UserHints)
	for _, n := range req.NearbyNotes {
		fmt.Fprintf(h, "%s\x1f%d\x1f%s\x00", n.ID, n.Timestamp.UnixNano(), n.Text)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
