package apis

import (
	"context"
	"net/http"
	"strings"

	"glucofeed/internal/feed"
	"glucofeed/internal/httpx"
	"glucofeed/internal/model"
)

// Reddit fetches a community's hot listing directly, independent of the
// feed registry.
type Reddit struct {
	baseURL   string
	client    *http.Client
	subreddit string
	limit     int
}

func NewReddit(baseURL string, client *http.Client, limit int) *Reddit {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://www.reddit.com"
	}
	if client == nil {
		client = httpx.Client()
	}
	if limit <= 0 {
		limit = 10
	}
	return &Reddit{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    client,
		subreddit: "diabetes",
		limit:     limit,
	}
}

func (r *Reddit) Name() string { return "reddit" }

func (r *Reddit) Fetch(ctx context.Context) ([]model.ContentItem, error) {
	resp, err := httpx.Get(ctx, r.client, r.baseURL+"/r/"+r.subreddit+"/hot.json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return feed.ParseRedditListing(resp.Body, r.Name(), model.CategoryDiabetes, r.limit)
}
