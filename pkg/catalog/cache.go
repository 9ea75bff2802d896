package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/coolbeans/numisref/pkg/citation"
	"github.com/coolbeans/numisref/pkg/numeral"
)

// DefaultCacheTTL is how long lookup results are kept.
const DefaultCacheTTL = 24 * time.Hour

// DefaultCacheCleanupInterval is how often expired entries are purged.
const DefaultCacheCleanupInterval = time.Hour

// DefaultCacheMaxEntries bounds the cache size; the oldest results are
// pruned once it is exceeded.
const DefaultCacheMaxEntries = 10000

// ResultCache stores lookup results with a TTL. Only success, ambiguous and
// not_found results are stored. Results are copied on the way in and out.
// Thread-safe for concurrent use.
type ResultCache struct {
	store      *gocache.Cache
	maxEntries int
	pruneMu    sync.Mutex
}

// NewResultCache creates a cache. A maxEntries of zero disables pruning.
func NewResultCache(ttl, cleanupInterval time.Duration, maxEntries int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{
		store:      gocache.New(ttl, cleanupInterval),
		maxEntries: maxEntries,
	}
}

// LookupKey is the cache key of a reference lookup.
func LookupKey(system citation.System, key string, hints *LookupHints) string {
	cacheKey := "lookup:" + string(system) + ":" + key
	for _, qualifier := range [][2]string{
		{"authority", hints.authority()},
		{"mint", hints.mint()},
	} {
		if value := strings.ToLower(numeral.CollapseSpace(qualifier[1])); value != "" {
			cacheKey += "|" + qualifier[0] + "=" + value
		}
	}
	return cacheKey
}

// IDKey is the cache key of a fetch by external identifier.
func IDKey(system citation.System, externalID string) string {
	return "id:" + string(system) + ":" + externalID
}

// Get returns a copy of the cached result marked Cached.
func (cache *ResultCache) Get(key string) (*Result, bool) {
	item, found := cache.store.Get(key)
	if !found {
		return nil, false
	}
	result, ok := item.(*Result)
	if !ok {
		return nil, false
	}
	copied := result.clone()
	copied.Cached = true
	return copied, true
}

// Set stores a copy of result when its status is cacheable. It reports
// whether the result was stored.
func (cache *ResultCache) Set(key string, result *Result) bool {
	if result == nil || !result.Status.Cacheable() {
		return false
	}
	stored := result.clone()
	stored.Cached = false
	cache.store.Set(key, stored, gocache.DefaultExpiration)

	if cache.maxEntries > 0 && cache.store.ItemCount() > cache.maxEntries {
		cache.pruneOldest()
	}
	return true
}

// pruneOldest drops the entries with the oldest LookedUpAt until the cache
// is back within maxEntries.
func (cache *ResultCache) pruneOldest() {
	cache.pruneMu.Lock()
	defer cache.pruneMu.Unlock()

	items := cache.store.Items()
	excess := len(items) - cache.maxEntries
	if excess <= 0 {
		return
	}

	type entry struct {
		key        string
		lookedUpAt time.Time
	}
	entries := make([]entry, 0, len(items))
	for key, item := range items {
		var lookedUpAt time.Time
		if result, ok := item.Object.(*Result); ok {
			lookedUpAt = result.LookedUpAt
		}
		entries = append(entries, entry{key: key, lookedUpAt: lookedUpAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].lookedUpAt.Equal(entries[j].lookedUpAt) {
			return entries[i].key < entries[j].key
		}
		return entries[i].lookedUpAt.Before(entries[j].lookedUpAt)
	})
	for _, stale := range entries[:excess] {
		cache.store.Delete(stale.key)
	}
}

// Delete removes a cached result.
func (cache *ResultCache) Delete(key string) {
	cache.store.Delete(key)
}

// Clear removes every cached result.
func (cache *ResultCache) Clear() {
	cache.store.Flush()
}

// Cleanup purges expired entries immediately.
func (cache *ResultCache) Cleanup() {
	cache.store.DeleteExpired()
}

// Len returns the number of cached results, including expired entries not
// yet purged.
func (cache *ResultCache) Len() int {
	return cache.store.ItemCount()
}
