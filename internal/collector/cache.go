package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"StockDashboard/internal/metrics"
	"StockDashboard/internal/model"
)

// BarCache stores provider responses for a bounded time.
type BarCache interface {
	Get(ctx context.Context, key string) ([]model.PriceBar, bool)
	Set(ctx context.Context, key string, bars []model.PriceBar)
	// Prune drops expired entries and reports how many were removed.
	Prune() int
}

type memoryEntry struct {
	bars      []model.PriceBar
	expiresAt time.Time
}

// MemoryCache is an in-process BarCache.
type MemoryCache struct {
	TTL time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{TTL: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]model.PriceBar, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	bars := make([]model.PriceBar, len(entry.bars))
	copy(bars, entry.bars)
	return bars, true
}

func (c *MemoryCache) Set(_ context.Context, key string, bars []model.PriceBar) {
	stored := make([]model.PriceBar, len(bars))
	copy(stored, bars)
	c.mu.Lock()
	c.entries[key] = memoryEntry{bars: stored, expiresAt: c.now().Add(c.TTL)}
	c.mu.Unlock()
}

func (c *MemoryCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CachedFetcher decorates a Fetcher with a BarCache. Concurrent misses for
// the same key share one upstream call.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   BarCache
	Metrics *metrics.Metrics

	group singleflight.Group
}

// NewCachedFetcher wraps f with cache.
func NewCachedFetcher(f Fetcher, cache BarCache, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{Fetcher: f, Cache: cache, Metrics: m}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() }

func cacheKey(provider, symbol string, start, end time.Time) string {
	return strings.Join([]string{
		"bars", provider, symbol,
		truncateDay(start).Format(model.DateLayout),
		truncateDay(end).Format(model.DateLayout),
	}, "|")
}

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error) {
	key := cacheKey(c.Fetcher.Name(), symbol, start, end)
	if bars, ok := c.Cache.Get(ctx, key); ok {
		c.Metrics.CacheHit()
		return bars, nil
	}
	c.Metrics.CacheMiss()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		began := time.Now()
		bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, start, end)
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.Metrics.ObserveFetch(c.Fetcher.Name(), result, time.Since(began))
		if err != nil {
			return nil, err
		}
		if len(bars) > 0 {
			c.Cache.Set(ctx, key, bars)
		}
		return bars, nil
	})
	if err != nil {
		return nil, err
	}
	bars, ok := v.([]model.PriceBar)
	if !ok {
		return nil, fmt.Errorf("cached fetch: unexpected result type %T", v)
	}
	out := make([]model.PriceBar, len(bars))
	copy(out, bars)
	return out, nil
}
