package infrastructure

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"golang.org/x/sync/singleflight"
)

// DefaultSourceCacheSize is the default number of cached stream handles.
const DefaultSourceCacheSize = 5

// URLHandle is a stream handle that is played straight from its URL.
type URLHandle struct {
	url       string
	expiresAt time.Time
}

// NewURLHandle creates a handle for the URL, reading the expiry from the
// "expire" query parameter that signed media URLs carry.
func NewURLHandle(rawURL string) URLHandle {
	return URLHandle{
		url:       rawURL,
		expiresAt: ParseURLExpiry(rawURL),
	}
}

func (h URLHandle) URL() string          { return h.url }
func (h URLHandle) ExpiresAt() time.Time { return h.expiresAt }

// ParseURLExpiry returns the time encoded in the URL's "expire" query
// parameter as Unix seconds, or the zero time if there is none.
func ParseURLExpiry(rawURL string) time.Time {
	u, err := url.Parse(rawURL)
	if err != nil {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(u.Query().Get("expire"), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// AudioSourceCache holds opened stream handles keyed by URL.
// Once full, new handles are not cached; existing entries are never evicted
// or replaced, except that expired handles are dropped when looked up.
type AudioSourceCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]ports.StreamHandle
	now      func() time.Time
}

// NewAudioSourceCache creates a cache holding at most capacity handles.
func NewAudioSourceCache(capacity int) *AudioSourceCache {
	if capacity <= 0 {
		capacity = DefaultSourceCacheSize
	}
	return &AudioSourceCache{
		capacity: capacity,
		entries:  make(map[string]ports.StreamHandle, capacity),
		now:      time.Now,
	}
}

// Get returns the cached handle for the URL.
func (c *AudioSourceCache) Get(url string) (ports.StreamHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	if exp := h.ExpiresAt(); !exp.IsZero() && !c.now().Before(exp) {
		delete(c.entries, url)
		return nil, false
	}
	return h, true
}

// Put caches the handle unless the cache is full or already holds the URL.
// It reports whether the handle was stored.
func (c *AudioSourceCache) Put(url string, h ports.StreamHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[url]; ok {
		return false
	}
	if len(c.entries) >= c.capacity {
		return false
	}
	c.entries[url] = h
	return true
}

// Len returns the number of cached handles.
func (c *AudioSourceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cap returns the cache capacity.
func (c *AudioSourceCache) Cap() int {
	return c.capacity
}

// CachingStreamOpener serves handles from an AudioSourceCache and opens
// missing ones through the wrapped opener. Concurrent opens of the same URL
// share one underlying call.
type CachingStreamOpener struct {
	cache  *AudioSourceCache
	opener ports.StreamOpener
	group  singleflight.Group
}

// NewCachingStreamOpener wraps opener with cache.
func NewCachingStreamOpener(cache *AudioSourceCache, opener ports.StreamOpener) *CachingStreamOpener {
	return &CachingStreamOpener{
		cache:  cache,
		opener: opener,
	}
}

// Open implements ports.StreamOpener.
func (o *CachingStreamOpener) Open(ctx context.Context, url string) (ports.StreamHandle, error) {
	if h, ok := o.cache.Get(url); ok {
		return h, nil
	}

	v, err, _ := o.group.Do(url, func() (any, error) {
		h, err := o.opener.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		o.cache.Put(url, h)
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(ports.StreamHandle), nil
}

// URLOpener opens handles that stream directly from the URL.
type URLOpener struct{}

// Open implements ports.StreamOpener.
func (URLOpener) Open(_ context.Context, rawURL string) (ports.StreamHandle, error) {
	return NewURLHandle(rawURL), nil
}

var (
	_ ports.StreamOpener = (*CachingStreamOpener)(nil)
	_ ports.StreamOpener = URLOpener{}
	_ ports.StreamHandle = URLHandle{}
)
