// Package providers contains the news search provider clients. Each client
// normalizes its provider-specific response into the common Article shape.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jonathan/news-agent/internal/types"
)

// SourceClient wraps one external news-search provider.
type SourceClient interface {
	// Name identifies the provider in logs, errors and article records
	Name() string
	// Search issues one query and returns normalized articles.
	// Failures are returned as *ProviderError.
	Search(ctx context.Context, query string, limit int) ([]types.Article, error)
}

// ProviderError represents a single-source failure. It is recorded by the
// aggregator and absorbed; it is never fatal to the run on its own.
type ProviderError struct {
	Provider   string
	Query      string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s: query %q: HTTP %d", e.Provider, e.Query, e.StatusCode)
	}
	return fmt.Sprintf("provider %s: query %q: %v", e.Provider, e.Query, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth a single retry:
// timeouts, connection errors, 429 and 5xx responses.
func (e *ProviderError) Transient() bool {
	if e.StatusCode == 429 || e.StatusCode >= 500 {
		return true
	}
	if e.Err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// publishedTime parses a provider timestamp, returning nil when absent or
// unparseable. Providers disagree on formats, so dateparse handles the
// variety. All times are normalized to UTC.
func publishedTime(raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// sourceNameFromURL derives an outlet name from the article host when the
// provider response carries none.
func sourceNameFromURL(articleURL string) string {
	parsed, err := url.Parse(articleURL)
	if err != nil || parsed.Host == "" {
		return "Unknown"
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
