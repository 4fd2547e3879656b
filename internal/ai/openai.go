package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"glucofeed/internal/model"
)

// Insights produces a short prose digest of what is currently trending.
// It is optional: the service runs fine without a configured client.
type Insights interface {
	TrendDigest(ctx context.Context, topics []model.TrendingTopic, items []model.ContentItem) (string, error)
}

// OpenAIClient implements Insights using the Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		panic("OpenAI model must be specified")
	}
	return &OpenAIClient{client: c, model: model}
}

func (o *OpenAIClient) TrendDigest(ctx context.Context, topics []model.TrendingTopic, items []model.ContentItem) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var b strings.Builder
	b.WriteString("Trending keywords with occurrence counts and dominant sentiment:\n")
	for _, t := range topics {
		fmt.Fprintf(&b, "- %s (%d, %s)\n", t.Keyword, t.Count, t.Sentiment)
	}
	b.WriteString("\nRecent headlines:\n")
	for i, it := range items {
		if i >= 15 {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s\n", it.Source, it.Title)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.4,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You summarize diabetes community and research news. " +
					"Write 3-5 plain sentences describing what is trending and why it matters to people managing diabetes. " +
					"No bullet points, no medical advice.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: b.String(),
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
