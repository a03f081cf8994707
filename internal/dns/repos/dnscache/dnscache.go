// Package dnscache provides an in-memory LRU cache for decoded DNS answers.
package dnscache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/sr-dns/internal/dns/common/clock"
	"github.com/haukened/sr-dns/internal/dns/services/resolver"
)

// entry holds one cached answer set together with its expiry deadline.
type entry struct {
	records []string
	expires time.Time
}

// dnsCache is an in-memory TTL-aware cache using an LRU strategy to store
// decoded DNS answers. Entries expire after a fixed duration and are evicted
// lazily on read.
type dnsCache struct {
	lru   *lru.Cache[string, entry]
	ttl   time.Duration
	clock clock.Clock
}

// Options configures a dnsCache instance.
type Options struct {
	// Size is the maximum number of cached answer sets.
	Size int
	// TTL is how long each entry remains valid after being stored.
	TTL time.Duration
	// Clock supplies the current time. Defaults to the real clock.
	Clock clock.Clock
}

// New returns a new dnsCache of the given size using an LRU backing store.
func New(opts Options) (*dnsCache, error) {
	cache, err := lru.New[string, entry](opts.Size)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &dnsCache{
		lru:   cache,
		ttl:   opts.TTL,
		clock: opts.Clock,
	}, nil
}

// Set replaces the existing records for the given key with the provided
// records. Empty answer sets are not cached.
func (c *dnsCache) Set(key string, records []string) {
	if len(records) == 0 {
		return
	}
	c.lru.Add(key, entry{
		records: records,
		expires: c.clock.Now().Add(c.ttl),
	})
}

// Get retrieves cached records if present and not expired. Expired entries
// are removed on access.
func (c *dnsCache) Get(key string) ([]string, bool) {
	e, found := c.lru.Get(key)
	if !found {
		return nil, false
	}
	if c.clock.Now().After(e.expires) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.records, true
}

// Delete removes the entry for the given key from the cache.
func (c *dnsCache) Delete(key string) {
	c.lru.Remove(key)
}

// Len returns the number of answer sets currently stored in the cache.
func (c *dnsCache) Len() int {
	return c.lru.Len()
}

// Keys returns a slice of all current cache keys.
func (c *dnsCache) Keys() []string {
	return c.lru.Keys()
}

var _ resolver.Cache = (*dnsCache)(nil)
