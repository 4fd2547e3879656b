// Package query answers read-side questions over the content cache:
// search, category filtering, trending topics, corpus stats, and feed
// health. All queries operate on the flattened newest-first view and
// never fail under partial upstream outage; they return whatever the
// cache holds.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"glucofeed/internal/cache"
	"glucofeed/internal/model"
	"glucofeed/internal/registry"
)

// errorRateThreshold is the feed error rate above which health output
// carries a fleet-wide recommendation.
const errorRateThreshold = 0.20

type Engine struct {
	cache *cache.ContentCache
	reg   *registry.Registry
}

func New(c *cache.ContentCache, reg *registry.Registry) *Engine {
	return &Engine{cache: c, reg: reg}
}

// Search returns cached items whose title, content, or keywords contain
// q (case-insensitive). A non-empty category narrows the corpus first.
func (e *Engine) Search(q string, category model.Category) []model.ContentItem {
	q = strings.ToLower(strings.TrimSpace(q))
	items := e.cache.All()
	if category != "" {
		items = lo.Filter(items, func(it model.ContentItem, _ int) bool {
			return it.Category == category
		})
	}
	if q == "" {
		return items
	}
	return lo.Filter(items, func(it model.ContentItem, _ int) bool {
		haystack := strings.ToLower(it.Title + " " + it.Content + " " + strings.Join(it.Keywords, " "))
		return strings.Contains(haystack, q)
	})
}

// ByCategory returns cached items of one category, newest first,
// truncated to limit when limit > 0.
func (e *Engine) ByCategory(category model.Category, limit int) []model.ContentItem {
	items := lo.Filter(e.cache.All(), func(it model.ContentItem, _ int) bool {
		return it.Category == category
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// TrendingTopics counts keyword occurrences across the cache and
// returns the top-N keywords with their majority sentiment. A sentiment
// tie resolves to neutral.
func (e *Engine) TrendingTopics(limit int) []model.TrendingTopic {
	type tally struct {
		count                       int
		positive, negative, neutral int
	}
	tallies := make(map[string]*tally)
	for _, it := range e.cache.All() {
		for _, kw := range it.Keywords {
			t, ok := tallies[kw]
			if !ok {
				t = &tally{}
				tallies[kw] = t
			}
			t.count++
			switch it.Sentiment {
			case model.SentimentPositive:
				t.positive++
			case model.SentimentNegative:
				t.negative++
			default:
				t.neutral++
			}
		}
	}

	topics := make([]model.TrendingTopic, 0, len(tallies))
	for kw, t := range tallies {
		topics = append(topics, model.TrendingTopic{
			Keyword:   kw,
			Count:     t.count,
			Sentiment: majority(t.positive, t.negative, t.neutral),
		})
	}
	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Keyword < topics[j].Keyword
	})
	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

func majority(pos, neg, neu int) model.Sentiment {
	switch {
	case pos > neg && pos > neu:
		return model.SentimentPositive
	case neg > pos && neg > neu:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// Stats summarizes the cached corpus, including a 7-day trailing daily
// histogram bucketed by calendar date, oldest first, with zeros for
// missing days.
func (e *Engine) Stats() model.ContentStats {
	items := e.cache.All()

	byDate := lo.CountValuesBy(items, func(it model.ContentItem) string {
		return it.Published.Format("2006-01-02")
	})
	daily := make([]model.DailyCount, 0, 7)
	today := time.Now()
	for i := 6; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		daily = append(daily, model.DailyCount{Date: date, Count: byDate[date]})
	}

	return model.ContentStats{
		Total: len(items),
		ByCategory: lo.CountValuesBy(items, func(it model.ContentItem) model.Category {
			return it.Category
		}),
		BySource: lo.CountValuesBy(items, func(it model.ContentItem) string {
			return it.Source
		}),
		BySentiment: lo.CountValuesBy(items, func(it model.ContentItem) model.Sentiment {
			return it.Sentiment
		}),
		Daily: daily,
	}
}

// Health reports per-feed state counts, the fleet error rate, and
// advisory recommendation strings. Recommendations are hints for an
// operator, not alerts with delivery guarantees.
func (e *Engine) Health() model.FeedHealth {
	feeds := e.reg.Feeds()
	h := model.FeedHealth{TotalFeeds: len(feeds)}
	for _, fd := range feeds {
		switch fd.Status {
		case model.FeedActive:
			h.ActiveFeeds++
		case model.FeedError:
			h.ErrorFeeds++
			h.FailingFeeds = append(h.FailingFeeds, fd.Name)
		case model.FeedInactive:
			h.InactiveFeeds++
		}
	}

	considered := h.ActiveFeeds + h.ErrorFeeds
	if considered > 0 {
		h.ErrorRate = float64(h.ErrorFeeds) / float64(considered)
	}
	if h.ErrorRate > errorRateThreshold {
		h.Recommendations = append(h.Recommendations,
			fmt.Sprintf("feed error rate %.0f%% exceeds %.0f%%: check network connectivity and feed availability",
				h.ErrorRate*100, errorRateThreshold*100))
	}
	for _, name := range h.FailingFeeds {
		h.Recommendations = append(h.Recommendations,
			fmt.Sprintf("feed %q is failing: verify its URL or mark it inactive", name))
	}
	return h
}
