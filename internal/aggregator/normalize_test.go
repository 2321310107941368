package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL_StripsTrackingParams(t *testing.T) {
	url := "https://www.example.com/story?utm_source=twitter&utm_campaign=launch&id=42"

	normalized := NormalizeURL(url)

	assert.Equal(t, "example.com/story?id=42", normalized)
}

func TestNormalizeURL_SchemeInsensitive(t *testing.T) {
	httpURL := NormalizeURL("http://example.com/story")
	httpsURL := NormalizeURL("https://example.com/story")

	assert.Equal(t, httpURL, httpsURL)
}

func TestNormalizeURL_Table(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{
			name: "www prefix",
			a:    "https://www.reuters.com/article/abc",
			b:    "https://reuters.com/article/abc",
		},
		{
			name: "trailing slash",
			a:    "https://bbc.com/news/story/",
			b:    "https://bbc.com/news/story",
		},
		{
			name: "fragment",
			a:    "https://bbc.com/news/story#comments",
			b:    "https://bbc.com/news/story",
		},
		{
			name: "default port",
			a:    "https://bbc.com:443/news/story",
			b:    "https://bbc.com/news/story",
		},
		{
			name: "fbclid",
			a:    "https://bbc.com/news/story?fbclid=xyz",
			b:    "https://bbc.com/news/story",
		},
		{
			name: "host case",
			a:    "https://BBC.com/news/story",
			b:    "https://bbc.com/news/story",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, NormalizeURL(tt.b), NormalizeURL(tt.a))
		})
	}
}

func TestNormalizeURL_KeepsSignificantParams(t *testing.T) {
	url := "https://example.com/story?page=2&utm_medium=email"

	normalized := NormalizeURL(url)

	assert.Contains(t, normalized, "page=2")
	assert.NotContains(t, normalized, "utm_medium")
}

func TestNormalizeURL_Idempotent(t *testing.T) {
	url := "https://www.Example.com/Story/?utm_source=x#top"

	once := NormalizeURL(url)
	twice := NormalizeURL(once)

	assert.Equal(t, once, twice)
}

func TestNormalizeURL_Unparseable(t *testing.T) {
	assert.Equal(t, "not a url", NormalizeURL("Not A URL"))
	assert.Equal(t, "", NormalizeURL("  "))
}

func TestNormalizeTitle_StripsPunctuationAndCase(t *testing.T) {
	title := "Breaking:  Fed Raises Rates - Markets React!"

	normalized := NormalizeTitle(title)

	assert.Equal(t, "breaking fed raises rates markets react", normalized)
}

func TestNormalizeTitle_Empty(t *testing.T) {
	assert.Equal(t, "", NormalizeTitle("  ...  "))
}
