// Package apis aggregates diabetes-related content from public REST
// APIs. Each source is an adapter that maps its native response into
// the shared content model so everything downstream is source-agnostic.
package apis

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"glucofeed/internal/analysis"
	"glucofeed/internal/config"
	"glucofeed/internal/httpx"
	"glucofeed/internal/model"
)

// Source is one external API adapter.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.ContentItem, error)
}

// qualityThreshold is the per-source pass rate below which a source is
// flagged in the quality report.
const qualityThreshold = 70.0

// Result is one merged aggregation pass.
type Result struct {
	Items     []model.ScoredItem      `json:"items"`
	Quality   model.DataQualityReport `json:"quality"`
	FetchedAt time.Time               `json:"fetched_at"`
}

type cachedFetch struct {
	items   []model.ContentItem
	fetched time.Time
}

// Aggregator fans out to all sources concurrently and merges their
// output. Successful per-source results are cached with a fixed TTL;
// a stale entry is served when a refresh attempt fails.
type Aggregator struct {
	sources   []Source
	ttl       time.Duration
	attempts  int
	baseDelay time.Duration

	mu    sync.Mutex
	cache map[string]cachedFetch
}

// Options tunes the aggregator; zero values pick the defaults.
type Options struct {
	TTL       time.Duration
	Attempts  int
	BaseDelay time.Duration
}

func NewAggregator(sources []Source, opts Options) *Aggregator {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	return &Aggregator{
		sources:   sources,
		ttl:       opts.TTL,
		attempts:  opts.Attempts,
		baseDelay: opts.BaseDelay,
		cache:     make(map[string]cachedFetch),
	}
}

// FromConfig builds an aggregator with the standard six sources, minus
// any that are disabled.
func FromConfig(cfg config.AggregatorConfig, client *http.Client) *Aggregator {
	if client == nil {
		client = httpx.Client()
	}
	var sources []Source
	if !cfg.HackerNews.Disabled {
		sources = append(sources, NewHackerNews(cfg.HackerNews.BaseURL, client, 10))
	}
	if !cfg.GitHub.Disabled {
		sources = append(sources, NewGitHub(cfg.GitHub.BaseURL, client, 10))
	}
	if !cfg.PubMed.Disabled {
		sources = append(sources, NewPubMed(cfg.PubMed.BaseURL, client, 10))
	}
	if !cfg.ClinicalTrials.Disabled {
		sources = append(sources, NewClinicalTrials(cfg.ClinicalTrials.BaseURL, client, 10))
	}
	if !cfg.Reddit.Disabled {
		sources = append(sources, NewReddit(cfg.Reddit.BaseURL, client, 10))
	}
	if !cfg.OpenFDA.Disabled {
		sources = append(sources, NewOpenFDA(cfg.OpenFDA.BaseURL, client, 10))
	}
	ttl, err := time.ParseDuration(cfg.CacheTTL)
	if err != nil {
		ttl = 0
	}
	return NewAggregator(sources, Options{TTL: ttl})
}

// FetchAll runs one aggregation pass: every source fetched concurrently
// with retry, merged, validated, deduplicated, relevance-scored, and
// accounted for in the quality report. A source that exhausts retries
// contributes an empty list, never an error.
func (a *Aggregator) FetchAll(ctx context.Context) Result {
	type sourceResult struct {
		name  string
		items []model.ContentItem
	}
	results := make(chan sourceResult, len(a.sources))

	var wg sync.WaitGroup
	for _, src := range a.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			results <- sourceResult{name: src.Name(), items: a.fetchSource(ctx, src)}
		}(src)
	}
	wg.Wait()
	close(results)

	var qualities []model.SourceQuality
	var merged []model.ScoredItem
	totalRaw, totalValid := 0, 0
	seen := make(map[string]struct{})

	for r := range results {
		valid := 0
		for _, it := range r.items {
			if !ValidItem(it) {
				continue
			}
			valid++
			key := dedupeKey(it)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, model.ScoredItem{
				Item:      it,
				Relevance: analysis.RelevanceScore(it.Title, "", it.Content, it.Keywords),
			})
		}
		totalRaw += len(r.items)
		totalValid += valid
		qualities = append(qualities, sourceQuality(r.name, len(r.items), valid))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Relevance > merged[j].Relevance
	})
	sort.SliceStable(qualities, func(i, j int) bool {
		return qualities[i].Source < qualities[j].Source
	})

	overall := 0.0
	if totalRaw > 0 {
		overall = float64(totalValid) / float64(totalRaw) * 100
	}
	return Result{
		Items: merged,
		Quality: model.DataQualityReport{
			Sources:     qualities,
			Overall:     overall,
			GeneratedAt: time.Now(),
		},
		FetchedAt: time.Now(),
	}
}

// fetchSource applies the TTL cache and retry policy for one source.
func (a *Aggregator) fetchSource(ctx context.Context, src Source) []model.ContentItem {
	a.mu.Lock()
	cached, hasCached := a.cache[src.Name()]
	a.mu.Unlock()
	if hasCached && time.Since(cached.fetched) < a.ttl {
		return cached.items
	}

	var items []model.ContentItem
	err := httpx.Retry(ctx, a.attempts, a.baseDelay, func() error {
		its, err := src.Fetch(ctx)
		if err != nil {
			return err
		}
		items = its
		return nil
	})
	if err != nil {
		if hasCached {
			slog.Warn("aggregator: refresh failed, serving stale cache", "source", src.Name(), "error", err)
			return cached.items
		}
		slog.Error("aggregator: source failed with no cache to fall back on", "source", src.Name(), "error", err)
		return nil
	}

	a.mu.Lock()
	a.cache[src.Name()] = cachedFetch{items: items, fetched: time.Now()}
	a.mu.Unlock()
	return items
}

// ValidItem is the minimal structural check an aggregated item must
// pass: a non-empty id and a cleaned title of at least 3 characters.
func ValidItem(it model.ContentItem) bool {
	if strings.TrimSpace(it.ID) == "" {
		return false
	}
	return len(strings.TrimSpace(it.Title)) >= 3
}

func dedupeKey(it model.ContentItem) string {
	if u := strings.TrimSpace(it.URL); u != "" {
		return u
	}
	return it.Source + ":" + it.ID
}

func sourceQuality(name string, total, valid int) model.SourceQuality {
	q := model.SourceQuality{
		Source:  name,
		Total:   total,
		Valid:   valid,
		Invalid: total - valid,
	}
	if total == 0 {
		q.Flagged = true
		q.Recommendation = fmt.Sprintf("source %q returned no items: check availability or query terms", name)
		return q
	}
	q.Score = float64(valid) / float64(total) * 100
	if q.Score < qualityThreshold {
		q.Flagged = true
		q.Recommendation = fmt.Sprintf("source %q pass rate %.0f%% is below %.0f%%: review its response mapping", name, q.Score, qualityThreshold)
	}
	return q
}
