package apis

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"glucofeed/internal/analysis"
	"glucofeed/internal/httpx"
	"glucofeed/internal/model"
)

// GitHub searches repositories related to diabetes tooling.
type GitHub struct {
	baseURL string
	client  *http.Client
	query   string
	limit   int
}

func NewGitHub(baseURL string, client *http.Client, limit int) *GitHub {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.github.com"
	}
	if client == nil {
		client = httpx.Client()
	}
	if limit <= 0 {
		limit = 10
	}
	return &GitHub{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		query:   "diabetes cgm glucose",
		limit:   limit,
	}
}

func (g *GitHub) Name() string { return "github" }

type githubSearchResponse struct {
	Items []struct {
		FullName    string `json:"full_name"`
		Description string `json:"description"`
		HTMLURL     string `json:"html_url"`
		Owner       struct {
			Login string `json:"login"`
		} `json:"owner"`
		UpdatedAt  time.Time `json:"updated_at"`
		Stargazers int       `json:"stargazers_count"`
		Forks      int       `json:"forks_count"`
		Topics     []string  `json:"topics"`
	} `json:"items"`
}

func (g *GitHub) Fetch(ctx context.Context) ([]model.ContentItem, error) {
	q := url.Values{
		"q":        {g.query},
		"sort":     {"updated"},
		"per_page": {"10"},
	}
	var resp githubSearchResponse
	if err := httpx.GetJSON(ctx, g.client, g.baseURL+"/search/repositories?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	items := make([]model.ContentItem, 0, len(resp.Items))
	for _, repo := range resp.Items {
		if len(items) >= g.limit {
			break
		}
		author := repo.Owner.Login
		if author == "" {
			author = "anonymous"
		}
		text := repo.FullName + " " + repo.Description
		items = append(items, model.ContentItem{
			ID:        repo.FullName,
			Title:     repo.FullName,
			Content:   repo.Description,
			Author:    author,
			Published: repo.UpdatedAt,
			Source:    g.Name(),
			Category:  model.CategoryTechnology,
			URL:       repo.HTMLURL,
			Engagement: model.Engagement{
				Upvotes:  repo.Stargazers,
				Comments: repo.Forks,
				Score:    repo.Stargazers,
			},
			Keywords:  analysis.Keywords(text),
			Sentiment: analysis.DetectSentiment(text),
		})
	}
	return items, nil
}
