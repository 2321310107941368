// Package providers - googlecse.go integrates Google Custom Search as a
// supplementary news source.
package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/news-agent/internal/types"
)

// cseMaxPerCall is the Custom Search API page-size ceiling.
const cseMaxPerCall = 10

// GoogleCSEClient searches a news-scoped Google Programmable Search Engine.
type GoogleCSEClient struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleCSEClient creates a Google Custom Search client using the given
// API key and search engine ID (cx).
func NewGoogleCSEClient(ctx context.Context, apiKey, cx string) (*GoogleCSEClient, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleCSEClient{svc: svc, cx: cx}, nil
}

// Name implements SourceClient.
func (c *GoogleCSEClient) Name() string {
	return "google_cse"
}

// Search implements SourceClient. The CSE result shape is generic web search,
// so published dates come from pagemap metatags when present.
func (c *GoogleCSEClient) Search(ctx context.Context, query string, limit int) ([]types.Article, error) {
	if limit <= 0 || limit > cseMaxPerCall {
		limit = cseMaxPerCall
	}

	resp, err := c.svc.Cse.List().
		Cx(c.cx).
		Q(query + " news").
		Num(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Query: query, Err: err}
	}

	articles := make([]types.Article, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		articles = append(articles, types.Article{
			URL:              item.Link,
			Title:            item.Title,
			SourceName:       sourceNameFromURL(item.Link),
			PublishedAt:      publishedTime(cseDate(item)),
			Snippet:          item.Snippet,
			Provider:         c.Name(),
			ExtractionStatus: types.ExtractionNotAttempted,
		})
	}

	return articles, nil
}

// cseDate digs a publication timestamp out of the pagemap metatags.
// Returns "" when none of the known keys are present.
func cseDate(item *customsearch.Result) string {
	if len(item.Pagemap) == 0 {
		return ""
	}
	var pagemap struct {
		Metatags []map[string]string `json:"metatags"`
	}
	if err := json.Unmarshal(item.Pagemap, &pagemap); err != nil {
		return ""
	}
	keys := []string{"article:published_time", "og:published_time", "date", "dc.date"}
	for _, tags := range pagemap.Metatags {
		for _, key := range keys {
			if v, ok := tags[key]; ok && v != "" {
				return v
			}
		}
	}
	return ""
}
