package apis

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"glucofeed/internal/analysis"
	"glucofeed/internal/feed"
	"glucofeed/internal/httpx"
	"glucofeed/internal/model"
)

// HackerNews fetches top stories via the item-by-id API.
// Docs: https://github.com/HackerNews/API
type HackerNews struct {
	baseAPI string
	client  *http.Client
	limit   int
}

func NewHackerNews(baseAPI string, client *http.Client, limit int) *HackerNews {
	if strings.TrimSpace(baseAPI) == "" {
		baseAPI = "https://hacker-news.firebaseio.com/v0"
	}
	if client == nil {
		client = httpx.Client()
	}
	if limit <= 0 {
		limit = 10
	}
	return &HackerNews{baseAPI: strings.TrimRight(baseAPI, "/"), client: client, limit: limit}
}

func (h *HackerNews) Name() string { return "hackernews" }

// hnItem mirrors the subset of HN item fields we care about.
type hnItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Time        int64  `json:"time"`
	Descendants int    `json:"descendants"`
	Score       int    `json:"score"`
}

func (h *HackerNews) Fetch(ctx context.Context) ([]model.ContentItem, error) {
	var ids []int
	if err := httpx.GetJSON(ctx, h.client, h.baseAPI+"/topstories.json", &ids); err != nil {
		return nil, err
	}
	if len(ids) > h.limit {
		ids = ids[:h.limit]
	}
	return h.itemsByIDs(ctx, ids)
}

// itemsByIDs resolves story IDs concurrently with bounded parallelism.
// Individual item failures are skipped, not fatal.
func (h *HackerNews) itemsByIDs(ctx context.Context, ids []int) ([]model.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const maxWorkers = 8
	type result struct {
		idx  int
		item model.ContentItem
		ok   bool
	}
	out := make([]result, len(ids))
	sem := make(chan struct{}, maxWorkers)
	done := make(chan result, len(ids))
	for i, id := range ids {
		i, id := i, id
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			ictx, cancel := context.WithTimeout(ctx, 8*time.Second)
			defer cancel()
			var it hnItem
			err := httpx.GetJSON(ictx, h.client, fmt.Sprintf("%s/item/%d.json", h.baseAPI, id), &it)
			done <- result{idx: i, item: h.convert(it), ok: err == nil && it.Title != ""}
		}()
	}
	for range ids {
		r := <-done
		out[r.idx] = r
	}
	items := make([]model.ContentItem, 0, len(ids))
	for _, r := range out {
		if r.ok {
			items = append(items, r.item)
		}
	}
	return items, nil
}

func (h *HackerNews) convert(it hnItem) model.ContentItem {
	idStr := fmt.Sprintf("%d", it.ID)
	urlStr := strings.TrimSpace(it.URL)
	if urlStr == "" {
		urlStr = "https://news.ycombinator.com/item?id=" + idStr
	}
	author := it.By
	if author == "" {
		author = "anonymous"
	}
	body := feed.StripHTML(it.Text)
	text := it.Title + " " + body
	return model.ContentItem{
		ID:        idStr,
		Title:     it.Title,
		Content:   body,
		Author:    author,
		Published: time.Unix(it.Time, 0),
		Source:    h.Name(),
		Category:  model.CategoryTechnology,
		URL:       urlStr,
		Engagement: model.Engagement{
			Upvotes:  it.Score,
			Comments: it.Descendants,
			Score:    it.Score,
		},
		Keywords:  analysis.Keywords(text),
		Sentiment: analysis.DetectSentiment(text),
	}
}
