// Package cache holds the in-memory content cache. Each feed's entry is
// replaced wholesale on a successful fetch; readers never observe a
// partially updated list. The cache itself has no TTL.
package cache

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"glucofeed/internal/model"
)

// Store is an optional persistence hook. Writes are best-effort: a
// failing store degrades durability, never availability.
type Store interface {
	SaveFeed(ctx context.Context, feed string, items []model.ContentItem) error
	LoadAll(ctx context.Context) (map[string][]model.ContentItem, error)
}

// ContentCache maps feed names to their most recent item lists.
type ContentCache struct {
	mu    sync.RWMutex
	feeds map[string][]model.ContentItem
	store Store // nil when persistence is not configured
}

func New(store Store) *ContentCache {
	return &ContentCache{
		feeds: make(map[string][]model.ContentItem),
		store: store,
	}
}

// Put replaces the feed's entry with items. The slice is copied so the
// caller cannot mutate cached state afterwards.
func (c *ContentCache) Put(ctx context.Context, feed string, items []model.ContentItem) {
	cp := make([]model.ContentItem, len(items))
	copy(cp, items)

	c.mu.Lock()
	c.feeds[feed] = cp
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveFeed(ctx, feed, cp); err != nil {
			slog.Warn("cache: snapshot save failed", "feed", feed, "error", err)
		}
	}
}

// Get returns a copy of the feed's cached items.
func (c *ContentCache) Get(feed string) []model.ContentItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.feeds[feed]
	if !ok {
		return nil
	}
	cp := make([]model.ContentItem, len(items))
	copy(cp, items)
	return cp
}

// All returns every cached item sorted newest first. Ties on the
// publish time are broken by source then id, so the order is stable
// across calls regardless of map iteration order.
func (c *ContentCache) All() []model.ContentItem {
	c.mu.RLock()
	var out []model.ContentItem
	for _, items := range c.feeds {
		out = append(out, items...)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Published.Equal(b.Published) {
			return a.Published.After(b.Published)
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.ID < b.ID
	})
	return out
}

// Feeds returns the names of feeds present in the cache.
func (c *ContentCache) Feeds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.feeds))
	for name := range c.feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total cached item count.
func (c *ContentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, items := range c.feeds {
		n += len(items)
	}
	return n
}

// Restore loads persisted snapshots into the cache, so a restart does
// not cold-start empty. No-op without a store.
func (c *ContentCache) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	feeds, err := c.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, items := range feeds {
		if _, exists := c.feeds[name]; !exists {
			c.feeds[name] = items
		}
	}
	return nil
}
