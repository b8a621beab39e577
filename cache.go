package requesty

import (
	gocache "github.com/patrickmn/go-cache"
)

// ResponseCache records the last successfully decoded body per resolved URL.
// Entries never expire and the client never reads them back; the cache is a
// record of what was received, safe for concurrent writers (last write wins).
type ResponseCache struct {
	items *gocache.Cache
}

func newResponseCache() *ResponseCache {
	// A zero cleanup interval keeps go-cache from starting its janitor.
	return &ResponseCache{items: gocache.New(gocache.NoExpiration, 0)}
}

func (rc *ResponseCache) store(url string, data any) {
	rc.items.Set(url, data, gocache.NoExpiration)
}

func (rc *ResponseCache) lookup(url string) (any, bool) {
	return rc.items.Get(url)
}

// Len returns the number of URLs recorded.
func (rc *ResponseCache) Len() int {
	return rc.items.ItemCount()
}
