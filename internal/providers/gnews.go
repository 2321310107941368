// Package providers - gnews.go integrates the GNews.io search endpoint.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonathan/news-agent/internal/types"
)

// DefaultGNewsBaseURL is the production GNews endpoint.
const DefaultGNewsBaseURL = "https://gnews.io/api/v4"

const gnewsTimeout = 10 * time.Second

// GNewsClient searches GNews.io.
type GNewsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGNewsClient creates a GNews client. baseURL is overridable for tests;
// pass "" for the production endpoint.
func NewGNewsClient(apiKey, baseURL string) *GNewsClient {
	if baseURL == "" {
		baseURL = DefaultGNewsBaseURL
	}
	return &GNewsClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: gnewsTimeout},
	}
}

// Name implements SourceClient.
func (c *GNewsClient) Name() string {
	return "gnews"
}

// gnewsResponse mirrors the relevant subset of the GNews JSON payload.
type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"source"`
	} `json:"articles"`
}

// Search implements SourceClient.
func (c *GNewsClient) Search(ctx context.Context, query string, limit int) ([]types.Article, error) {
	endpoint := fmt.Sprintf("%s/search", c.baseURL)

	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", "en")
	params.Set("max", strconv.Itoa(limit))
	params.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Query: query, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Query: query, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: c.Name(), Query: query, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Query: query, Err: err}
	}

	var parsed gnewsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ProviderError{Provider: c.Name(), Query: query, Err: fmt.Errorf("malformed response: %w", err)}
	}

	articles := make([]types.Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if a.URL == "" {
			continue
		}
		sourceName := a.Source.Name
		if sourceName == "" {
			sourceName = sourceNameFromURL(a.URL)
		}
		articles = append(articles, types.Article{
			URL:              a.URL,
			Title:            a.Title,
			SourceName:       sourceName,
			PublishedAt:      publishedTime(a.PublishedAt),
			Snippet:          a.Description,
			Provider:         c.Name(),
			ExtractionStatus: types.ExtractionNotAttempted,
		})
	}

	return articles, nil
}
