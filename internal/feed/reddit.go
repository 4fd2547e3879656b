package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"glucofeed/internal/analysis"
	"glucofeed/internal/model"
)

// redditListing mirrors the subset of a reddit listing response we use:
// {"data":{"children":[{"data":{...post...}}]}}.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	Score       int     `json:"score"`
}

// ParseRedditListing decodes a reddit-style JSON listing into content
// items for the named feed. Posts without a title are dropped; at most
// limit items are returned.
func ParseRedditListing(r io.Reader, feedName string, category model.Category, limit int) ([]model.ContentItem, error) {
	var listing redditListing
	if err := json.NewDecoder(r).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode reddit listing: %w", err)
	}

	items := make([]model.ContentItem, 0, limit)
	for _, child := range listing.Data.Children {
		if len(items) >= limit {
			break
		}
		p := child.Data
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		items = append(items, convertRedditPost(p, feedName, category))
	}
	return items, nil
}

func convertRedditPost(p redditPost, feedName string, category model.Category) model.ContentItem {
	author := strings.TrimSpace(p.Author)
	if author == "" {
		author = "anonymous"
	}

	published := time.Now()
	if p.CreatedUTC > 0 {
		published = time.Unix(int64(p.CreatedUTC), 0)
	}

	link := p.URL
	if p.Permalink != "" {
		link = "https://www.reddit.com" + p.Permalink
	}

	id := p.ID
	if id == "" {
		id = SynthesizeID(feedName, p.Title)
	}

	text := p.Title + " " + p.Selftext
	return model.ContentItem{
		ID:        id,
		Title:     strings.TrimSpace(p.Title),
		Content:   strings.TrimSpace(p.Selftext),
		Author:    author,
		Published: published,
		Source:    feedName,
		Category:  category,
		URL:       link,
		Engagement: model.Engagement{
			Upvotes:  p.Ups,
			Comments: p.NumComments,
			Score:    p.Score,
		},
		Keywords:  analysis.Keywords(text),
		Sentiment: analysis.DetectSentiment(text),
	}
}
