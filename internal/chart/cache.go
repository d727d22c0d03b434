package chart

import (
	"sync"
	"time"
)

type imageEntry struct {
	createdAt time.Time
	image     []byte
}

// imageCache keeps rendered PNGs for a short TTL.
type imageCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]imageEntry
}

func newImageCache(ttl time.Duration) *imageCache {
	return &imageCache{ttl: ttl, entries: map[string]imageEntry{}}
}

func (c *imageCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		if time.Now().Before(entry.createdAt.Add(c.ttl)) {
			img := make([]byte, len(entry.image))
			copy(img, entry.image)
			return img, true
		}
	}
	return nil, false
}

func (c *imageCache) set(key string, img []byte) {
	c.mu.Lock()
	c.entries[key] = imageEntry{createdAt: time.Now(), image: img}
	c.mu.Unlock()
}

// prune drops expired images.
func (c *imageCache) prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if !time.Now().Before(e.createdAt.Add(c.ttl)) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
