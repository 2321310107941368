package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gnewsPayload = `{
	"articles": [
		{
			"title": "Chip exports tighten",
			"description": "New restrictions announced.",
			"url": "https://bbc.com/news/chips",
			"publishedAt": "2026-08-21T08:30:00Z",
			"source": {"name": "BBC News", "url": "https://bbc.com"}
		}
	]
}`

func TestGNewsSearch_Normalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "chip exports", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("max"))
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(gnewsPayload))
	}))
	defer server.Close()

	client := NewGNewsClient("test-token", server.URL)
	articles, err := client.Search(context.Background(), "chip exports", 3)

	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "BBC News", articles[0].SourceName)
	assert.Equal(t, "gnews", articles[0].Provider)
	require.NotNil(t, articles[0].PublishedAt)
}

func TestGNewsSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGNewsClient("token", server.URL)
	_, err := client.Search(context.Background(), "chip exports", 3)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.True(t, provErr.Transient())
}

func TestProviderError_TransientTable(t *testing.T) {
	tests := []struct {
		name      string
		err       *ProviderError
		transient bool
	}{
		{"rate limited", &ProviderError{StatusCode: 429}, true},
		{"server error", &ProviderError{StatusCode: 503}, true},
		{"unauthorized", &ProviderError{StatusCode: 401}, false},
		{"bad request", &ProviderError{StatusCode: 400}, false},
		{"deadline", &ProviderError{Err: context.DeadlineExceeded}, true},
		{"no detail", &ProviderError{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, tt.err.Transient())
		})
	}
}

func TestPublishedTime_Formats(t *testing.T) {
	rfc := publishedTime("2026-08-20T10:00:00Z")
	require.NotNil(t, rfc)

	loose := publishedTime("August 20, 2026")
	require.NotNil(t, loose)

	assert.Nil(t, publishedTime(""))
	assert.Nil(t, publishedTime("tomorrow-ish"))
}

func TestSourceNameFromURL(t *testing.T) {
	assert.Equal(t, "reuters.com", sourceNameFromURL("https://www.reuters.com/article/abc"))
	assert.Equal(t, "Unknown", sourceNameFromURL("::bad::"))
}
