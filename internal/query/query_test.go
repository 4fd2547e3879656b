package query

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"glucofeed/internal/cache"
	"glucofeed/internal/model"
	"glucofeed/internal/registry"
)

func seed(t *testing.T) (*Engine, *cache.ContentCache, *registry.Registry) {
	t.Helper()
	c := cache.New(nil)
	reg := registry.New()
	e := New(c, reg)

	now := time.Now()
	c.Put(context.Background(), "community", []model.ContentItem{
		{ID: "1", Title: "Glucose spikes after breakfast", Content: "cereal trouble", Source: "community", Category: model.CategoryDiabetes, Sentiment: model.SentimentNegative, Keywords: []string{"glucose"}, Published: now},
		{ID: "2", Title: "New sensor day", Content: "smooth insertion", Source: "community", Category: model.CategoryDiabetes, Sentiment: model.SentimentPositive, Keywords: []string{"cgm"}, Published: now.Add(-time.Hour)},
	})
	c.Put(context.Background(), "research", []model.ContentItem{
		{ID: "3", Title: "Closed loop trial results", Content: "improved time in range with glucose control", Source: "research", Category: model.CategoryResearch, Sentiment: model.SentimentPositive, Keywords: []string{"closed loop", "glucose"}, Published: now.Add(-2 * time.Hour)},
	})
	return e, c, reg
}

func TestSearchMatchesTitleContentKeywords(t *testing.T) {
	e, _, _ := seed(t)
	if got := e.Search("glucose", ""); len(got) != 2 {
		t.Errorf("title+keyword search: expected 2, got %d", len(got))
	}
	if got := e.Search("cereal", ""); len(got) != 1 {
		t.Errorf("content search: expected 1, got %d", len(got))
	}
	if got := e.Search("cgm", ""); len(got) != 1 {
		t.Errorf("keyword search: expected 1, got %d", len(got))
	}
	if got := e.Search("GLUCOSE", ""); len(got) != 2 {
		t.Errorf("search must be case-insensitive, got %d", len(got))
	}
}

func TestSearchCategoryFilterAppliedFirst(t *testing.T) {
	e, _, _ := seed(t)
	got := e.Search("glucose", model.CategoryResearch)
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("expected only the research item, got %v", got)
	}
}

func TestSearchIdempotent(t *testing.T) {
	e, _, _ := seed(t)
	first := e.Search("glucose", "")
	second := e.Search("glucose", "")
	if !reflect.DeepEqual(first, second) {
		t.Error("identical queries must return identical ordered results")
	}
}

func TestByCategoryLimit(t *testing.T) {
	e, _, _ := seed(t)
	got := e.ByCategory(model.CategoryDiabetes, 1)
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("expected newest diabetes item only, got %v", got)
	}
}

func TestTrendingTopicsOrdering(t *testing.T) {
	c := cache.New(nil)
	e := New(c, registry.New())
	var items []model.ContentItem
	now := time.Now()
	for i := 0; i < 10; i++ {
		items = append(items, model.ContentItem{
			ID: fmt.Sprintf("cgm-%d", i), Title: "x", Source: "s",
			Keywords: []string{"cgm"}, Sentiment: model.SentimentPositive, Published: now,
		})
	}
	for i := 0; i < 3; i++ {
		items = append(items, model.ContentItem{
			ID: fmt.Sprintf("pump-%d", i), Title: "x", Source: "s",
			Keywords: []string{"pump"}, Sentiment: model.SentimentNeutral, Published: now,
		})
	}
	c.Put(context.Background(), "s", items)

	topics := e.TrendingTopics(5)
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}
	if topics[0].Keyword != "cgm" || topics[0].Count != 10 {
		t.Errorf("expected cgm ranked first with 10, got %+v", topics[0])
	}
	if topics[1].Keyword != "pump" || topics[1].Count != 3 {
		t.Errorf("expected pump second with 3, got %+v", topics[1])
	}
	if topics[0].Sentiment != model.SentimentPositive {
		t.Errorf("expected majority positive for cgm, got %s", topics[0].Sentiment)
	}
}

func TestTrendingSentimentTieIsNeutral(t *testing.T) {
	c := cache.New(nil)
	e := New(c, registry.New())
	now := time.Now()
	c.Put(context.Background(), "s", []model.ContentItem{
		{ID: "1", Title: "x", Source: "s", Keywords: []string{"insulin"}, Sentiment: model.SentimentPositive, Published: now},
		{ID: "2", Title: "x", Source: "s", Keywords: []string{"insulin"}, Sentiment: model.SentimentNegative, Published: now},
	})
	topics := e.TrendingTopics(1)
	if topics[0].Sentiment != model.SentimentNeutral {
		t.Errorf("tie must resolve to neutral, got %s", topics[0].Sentiment)
	}
}

func TestStatsHistogramCoversSevenDays(t *testing.T) {
	c := cache.New(nil)
	e := New(c, registry.New())
	now := time.Now()
	c.Put(context.Background(), "s", []model.ContentItem{
		{ID: "1", Title: "today", Source: "s", Category: model.CategoryDiabetes, Sentiment: model.SentimentNeutral, Published: now},
		{ID: "2", Title: "three days ago", Source: "s", Category: model.CategoryDiabetes, Sentiment: model.SentimentNeutral, Published: now.AddDate(0, 0, -3)},
		{ID: "3", Title: "too old", Source: "s", Category: model.CategoryDiabetes, Sentiment: model.SentimentNeutral, Published: now.AddDate(0, 0, -10)},
	})

	stats := e.Stats()
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if len(stats.Daily) != 7 {
		t.Fatalf("expected 7 daily buckets, got %d", len(stats.Daily))
	}
	if stats.Daily[6].Date != now.Format("2006-01-02") || stats.Daily[6].Count != 1 {
		t.Errorf("today bucket wrong: %+v", stats.Daily[6])
	}
	if stats.Daily[3].Count != 1 {
		t.Errorf("three-days-ago bucket wrong: %+v", stats.Daily[3])
	}
	if stats.Daily[0].Count != 0 {
		t.Errorf("oldest bucket should be zero, got %+v", stats.Daily[0])
	}
	total := 0
	for _, d := range stats.Daily {
		total += d.Count
	}
	if total != 2 {
		t.Errorf("histogram must exclude items older than 7 days, got %d", total)
	}
}

func TestHealthRecommendations(t *testing.T) {
	e, _, reg := seed(t)
	feeds := reg.Feeds()
	// Push the error rate above the 20% threshold.
	for i, fd := range feeds {
		if i < len(feeds)/2 {
			fd.Status = model.FeedError
		}
	}

	h := e.Health()
	if h.ErrorFeeds == 0 {
		t.Fatal("expected error feeds")
	}
	if h.ErrorRate <= 0.20 {
		t.Fatalf("test setup: error rate %v not above threshold", h.ErrorRate)
	}
	if len(h.Recommendations) == 0 {
		t.Error("expected recommendations above the threshold")
	}
	if len(h.FailingFeeds) != h.ErrorFeeds {
		t.Errorf("failing feed list (%d) must match error count (%d)", len(h.FailingFeeds), h.ErrorFeeds)
	}
}

func TestHealthQuietWhenAllActive(t *testing.T) {
	e, _, _ := seed(t)
	h := e.Health()
	if h.ErrorRate != 0 {
		t.Errorf("expected zero error rate, got %v", h.ErrorRate)
	}
	if len(h.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", h.Recommendations)
	}
}
