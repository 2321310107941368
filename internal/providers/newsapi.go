// Package providers - newsapi.go integrates the NewsAPI.org /v2/everything endpoint.
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

// DefaultNewsAPIBaseURL is the production NewsAPI endpoint.
const DefaultNewsAPIBaseURL = "https://newsapi.org/v2"

// newsAPITimeout bounds a single provider call.
const newsAPITimeout = 10 * time.Second

// NewsAPIClient searches NewsAPI.org.
type NewsAPIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewNewsAPIClient creates a NewsAPI client. baseURL is overridable for tests;
// pass "" for the production endpoint.
func NewNewsAPIClient(apiKey, baseURL string) *NewsAPIClient {
	if baseURL == "" {
		baseURL = DefaultNewsAPIBaseURL
	}
	return &NewsAPIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: newsAPITimeout},
	}
}

// Name implements SourceClient.
func (c *NewsAPIClient) Name() string {
	return "newsapi"
}

// newsAPIResponse mirrors the relevant subset of the NewsAPI JSON payload.
type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Search implements SourceClient.
func (c *NewsAPIClient) Search(ctx context.Context, query string, limit int) ([]types.Article, error) {
	endpoint := fmt.Sprintf("%s/everything", c.baseURL)

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("apiKey", c.apiKey)

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

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ProviderError{Provider: c.Name(), Query: query, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if parsed.Status != "ok" {
		return nil, &ProviderError{Provider: c.Name(), Query: query, Err: fmt.Errorf("provider status %q: %s", parsed.Status, parsed.Message)}
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
