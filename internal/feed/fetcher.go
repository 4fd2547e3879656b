// Package feed retrieves and normalizes content from the registered
// RSS/Atom/JSON feeds.
package feed

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"glucofeed/internal/analysis"
	"glucofeed/internal/httpx"
	"glucofeed/internal/model"
	"glucofeed/internal/registry"
)

// Options tunes fetch behavior; zero values pick the defaults.
type Options struct {
	ItemsPerFeed int
	Attempts     int
	BaseDelay    time.Duration
}

// Fetcher resolves feed descriptors into content items, updating each
// descriptor's status and last-fetched time as it goes.
type Fetcher struct {
	client       *http.Client
	itemsPerFeed int
	attempts     int
	baseDelay    time.Duration
}

func NewFetcher(client *http.Client, opts Options) *Fetcher {
	if client == nil {
		client = httpx.Client()
	}
	if opts.ItemsPerFeed <= 0 {
		opts.ItemsPerFeed = 10
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	return &Fetcher{
		client:       client,
		itemsPerFeed: opts.ItemsPerFeed,
		attempts:     opts.Attempts,
		baseDelay:    opts.BaseDelay,
	}
}

// FetchFeed fetches one feed. A descriptor with an unusable primary URL
// is a configuration error: it is logged and skipped without any
// network attempt and without a status change. Transient failures are
// retried with exponential backoff; exhausted retries flip the feed to
// the error state and yield an empty result.
func (f *Fetcher) FetchFeed(ctx context.Context, fd *model.FeedDescriptor) []model.ContentItem {
	if !registry.ValidURL(fd.URL) {
		slog.Warn("feed: skipping misconfigured feed", "feed", fd.Name, "url", fd.URL)
		return nil
	}

	var items []model.ContentItem
	err := httpx.Retry(ctx, f.attempts, f.baseDelay, func() error {
		its, err := f.fetchOnce(ctx, fd)
		if err != nil {
			return err
		}
		items = its
		return nil
	})
	if err != nil {
		fd.Status = model.FeedError
		slog.Error("feed: fetch failed after retries", "feed", fd.Name, "error", err)
		return nil
	}
	if len(items) > 0 {
		fd.Status = model.FeedActive
		now := time.Now()
		fd.LastFetched = &now
	}
	return items
}

// fetchOnce performs a single fetch attempt. When a JSON listing URL is
// configured it is tried first; any failure there falls through to the
// primary URL, which is parsed as RSS or Atom.
func (f *Fetcher) fetchOnce(ctx context.Context, fd *model.FeedDescriptor) ([]model.ContentItem, error) {
	if strings.TrimSpace(fd.JSONURL) != "" {
		items, err := f.fetchJSON(ctx, fd)
		if err == nil {
			return items, nil
		}
		slog.Debug("feed: json endpoint failed, falling back to xml", "feed", fd.Name, "error", err)
	}
	return f.fetchXML(ctx, fd)
}

func (f *Fetcher) fetchJSON(ctx context.Context, fd *model.FeedDescriptor) ([]model.ContentItem, error) {
	resp, err := httpx.Get(ctx, f.client, fd.JSONURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ParseRedditListing(resp.Body, fd.Name, fd.Category, f.itemsPerFeed)
}

func (f *Fetcher) fetchXML(ctx context.Context, fd *model.FeedDescriptor) ([]model.ContentItem, error) {
	resp, err := httpx.Get(ctx, f.client, fd.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", fd.Name, err)
	}

	now := time.Now()
	items := make([]model.ContentItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if len(items) >= f.itemsPerFeed {
			break
		}
		// Title is the only mandatory field per item.
		if strings.TrimSpace(entry.Title) == "" {
			continue
		}
		items = append(items, convertEntry(entry, fd, now))
	}
	return items, nil
}

// convertEntry maps a parsed feed entry to a ContentItem. Date parse
// failures fall back to the fetch time so Published is never invalid.
func convertEntry(entry *gofeed.Item, fd *model.FeedDescriptor, now time.Time) model.ContentItem {
	published := now
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	author := "anonymous"
	if entry.Author != nil && strings.TrimSpace(entry.Author.Name) != "" {
		author = entry.Author.Name
	}

	id := entry.GUID
	if id == "" {
		id = entry.Link
	}
	if id == "" {
		id = SynthesizeID(fd.Name, entry.Title)
	}

	body := StripHTML(entry.Description)
	if body == "" {
		body = StripHTML(entry.Content)
	}

	text := entry.Title + " " + body
	return model.ContentItem{
		ID:        id,
		Title:     strings.TrimSpace(entry.Title),
		Content:   body,
		Author:    author,
		Published: published,
		Source:    fd.Name,
		Category:  fd.Category,
		URL:       entry.Link,
		Keywords:  analysis.Keywords(text),
		Sentiment: analysis.DetectSentiment(text),
	}
}

// FetchAll runs one refresh cycle: high-priority feeds first, then
// medium, then low. Within a tier feeds are fetched concurrently; the
// next tier starts only after the previous tier settled. Inactive feeds
// are never visited. Per-feed failures degrade coverage, not the cycle.
func (f *Fetcher) FetchAll(ctx context.Context, feeds []*model.FeedDescriptor) map[string][]model.ContentItem {
	results := make(map[string][]model.ContentItem)
	var mu sync.Mutex

	for _, tier := range []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		var wg sync.WaitGroup
		for _, fd := range registry.FilterByPriority(feeds, tier) {
			wg.Add(1)
			go func(fd *model.FeedDescriptor) {
				defer wg.Done()
				items := f.FetchFeed(ctx, fd)
				mu.Lock()
				results[fd.Name] = items
				mu.Unlock()
			}(fd)
		}
		wg.Wait()
	}
	return results
}

// SynthesizeID derives a stable identifier for items whose source
// provides none.
func SynthesizeID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum)[:16]
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`) // best-effort removal

// StripHTML removes markup and common entities from feed text.
func StripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = htmlTagRe.ReplaceAllString(s, "")
	replacer := strings.NewReplacer(
		"&quot;", "\"",
		"&apos;", "'",
		"&#39;", "'",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&nbsp;", " ",
	)
	return strings.TrimSpace(replacer.Replace(s))
}
