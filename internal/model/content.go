package model

import "time"

// Category classifies a feed and the content items it produces.
type Category string

const (
	CategoryDiabetes   Category = "diabetes"
	CategoryMedical    Category = "medical"
	CategoryResearch   Category = "research"
	CategoryLifestyle  Category = "lifestyle"
	CategoryTechnology Category = "technology"
	CategoryRegional   Category = "regional"
	CategoryGeneral    Category = "general"
)

// Priority controls fetch ordering within one refresh cycle.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// FeedStatus is the fetcher-owned state of a feed. A feed registered as
// inactive stays out of the fetch rotation entirely; active and error
// alternate based on fetch outcomes.
type FeedStatus string

const (
	FeedActive   FeedStatus = "active"
	FeedInactive FeedStatus = "inactive"
	FeedError    FeedStatus = "error"
)

// Sentiment is a lexicon-derived label for an item's text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// FeedDescriptor is the static configuration of one external feed.
// Status and LastFetched are mutated by the fetcher after each attempt;
// everything else is fixed at registration.
type FeedDescriptor struct {
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	JSONURL     string     `json:"json_url,omitempty"`
	Category    Category   `json:"category"`
	Priority    Priority   `json:"priority"`
	Status      FeedStatus `json:"status"`
	LastFetched *time.Time `json:"last_fetched,omitempty"`
}

// Engagement carries source-native interaction counts; zero when the
// source does not report them.
type Engagement struct {
	Upvotes  int `json:"upvotes"`
	Comments int `json:"comments"`
	Score    int `json:"score"`
}

// ContentItem is the normalized unit of retrieved content, independent
// of the originating format. Immutable after creation.
type ContentItem struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Author     string     `json:"author"`
	Published  time.Time  `json:"published"`
	Source     string     `json:"source"`
	Category   Category   `json:"category"`
	URL        string     `json:"url"`
	Engagement Engagement `json:"engagement"`
	Keywords   []string   `json:"keywords"`
	Sentiment  Sentiment  `json:"sentiment"`
}

// ScoredItem decorates a content item with a relevance score.
type ScoredItem struct {
	Item      ContentItem `json:"item"`
	Relevance float64     `json:"relevance"`
}

// TrendingTopic is one keyword ranked by occurrence across the cache.
type TrendingTopic struct {
	Keyword   string    `json:"keyword"`
	Count     int       `json:"count"`
	Sentiment Sentiment `json:"sentiment"`
}

// DailyCount is one bucket of the trailing daily histogram.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ContentStats summarizes the cached corpus.
type ContentStats struct {
	Total       int               `json:"total"`
	ByCategory  map[Category]int  `json:"by_category"`
	BySource    map[string]int    `json:"by_source"`
	BySentiment map[Sentiment]int `json:"by_sentiment"`
	Daily       []DailyCount      `json:"daily"` // last 7 days, oldest first
}

// FeedHealth reports per-feed state counters plus advisory strings.
type FeedHealth struct {
	TotalFeeds      int      `json:"total_feeds"`
	ActiveFeeds     int      `json:"active_feeds"`
	ErrorFeeds      int      `json:"error_feeds"`
	InactiveFeeds   int      `json:"inactive_feeds"`
	ErrorRate       float64  `json:"error_rate"`
	FailingFeeds    []string `json:"failing_feeds,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// AutoRefreshStatus is a snapshot of the refresh scheduler state.
type AutoRefreshStatus struct {
	Active   bool          `json:"active"`
	Interval time.Duration `json:"interval"`
	LastRun  time.Time     `json:"last_run"`
	NextRun  time.Time     `json:"next_run"`
	RunCount int           `json:"run_count"`
	LastErr  string        `json:"last_error,omitempty"`
}

// SourceQuality records validation accounting for one aggregation source.
type SourceQuality struct {
	Source         string  `json:"source"`
	Total          int     `json:"total"`
	Valid          int     `json:"valid"`
	Invalid        int     `json:"invalid"`
	Score          float64 `json:"score"` // 0-100
	Flagged        bool    `json:"flagged"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// DataQualityReport aggregates per-source quality over one pass. It is
// derived on demand and never persisted.
type DataQualityReport struct {
	Sources     []SourceQuality `json:"sources"`
	Overall     float64         `json:"overall"`
	GeneratedAt time.Time       `json:"generated_at"`
}
