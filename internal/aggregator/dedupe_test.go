package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/news-agent/internal/types"
)

const testTitleThreshold = 0.92

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestCandidateSet_CollapsesSameURL(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)

	first := set.Add(types.Article{
		URL:   "https://www.reuters.com/article/abc?utm_source=feed",
		Title: "Fed raises rates",
	})
	second := set.Add(types.Article{
		URL:   "https://reuters.com/article/abc",
		Title: "Fed raises rates",
	})

	assert.False(t, first)
	assert.True(t, second)
	assert.Equal(t, 1, set.Len())
}

func TestCandidateSet_DistinctURLsKept(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)

	set.Add(types.Article{URL: "https://reuters.com/article/abc", Title: "Fed raises rates", SourceName: "Reuters"})
	set.Add(types.Article{URL: "https://bbc.com/news/xyz", Title: "Completely different story", SourceName: "BBC"})

	assert.Equal(t, 2, set.Len())
}

func TestCandidateSet_TitleDuplicateSameOutlet(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)
	published := timePtr(time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC))

	set.Add(types.Article{
		URL:         "https://reuters.com/article/abc",
		Title:       "Fed raises interest rates by quarter point",
		SourceName:  "Reuters",
		PublishedAt: published,
	})
	dup := set.Add(types.Article{
		URL:         "https://reuters.com/syndicated/abc-2",
		Title:       "Fed raises interest rates by quarter point.",
		SourceName:  "Reuters",
		PublishedAt: timePtr(published.Add(2 * time.Hour)),
	})

	assert.True(t, dup)
	assert.Equal(t, 1, set.Len())
}

func TestCandidateSet_SimilarTitleDifferentOutletKept(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)

	set.Add(types.Article{
		URL:        "https://reuters.com/article/abc",
		Title:      "Fed raises interest rates by quarter point",
		SourceName: "Reuters",
	})
	dup := set.Add(types.Article{
		URL:        "https://bbc.com/news/xyz",
		Title:      "Fed raises interest rates by quarter point",
		SourceName: "BBC",
	})

	// Same event from two outlets is corroboration, not duplication
	assert.False(t, dup)
	assert.Equal(t, 2, set.Len())
}

func TestCandidateSet_TitleDuplicateOutsideWindowKept(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	set.Add(types.Article{
		URL:         "https://reuters.com/article/abc",
		Title:       "Fed raises interest rates by quarter point",
		SourceName:  "Reuters",
		PublishedAt: timePtr(base),
	})
	dup := set.Add(types.Article{
		URL:         "https://reuters.com/article/def",
		Title:       "Fed raises interest rates by quarter point",
		SourceName:  "Reuters",
		PublishedAt: timePtr(base.Add(10 * 24 * time.Hour)),
	})

	// Recurring headline a week later is a new story
	assert.False(t, dup)
	assert.Equal(t, 2, set.Len())
}

func TestCandidateSet_MergePrefersRicherRecord(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)
	published := timePtr(time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC))

	set.Add(types.Article{
		URL:   "https://reuters.com/article/abc",
		Title: "Fed raises rates",
	})
	set.Add(types.Article{
		URL:         "https://reuters.com/article/abc",
		Title:       "Fed raises rates",
		SourceName:  "Reuters",
		Snippet:     "The Federal Reserve raised its benchmark rate...",
		PublishedAt: published,
	})

	articles := set.Articles()
	require.Len(t, articles, 1)
	assert.Equal(t, "Reuters", articles[0].SourceName)
	assert.NotEmpty(t, articles[0].Snippet)
	assert.Equal(t, published, articles[0].PublishedAt)
}

func TestCandidateSet_MergeKeepsEarlierTimestamp(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)
	earlier := timePtr(time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC))
	later := timePtr(time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC))

	set.Add(types.Article{
		URL:         "https://reuters.com/article/abc",
		Title:       "Fed raises rates",
		Snippet:     "snippet",
		PublishedAt: later,
	})
	set.Add(types.Article{
		URL:         "https://reuters.com/article/abc",
		Title:       "Fed raises rates",
		PublishedAt: earlier,
	})

	articles := set.Articles()
	require.Len(t, articles, 1)
	assert.Equal(t, earlier, articles[0].PublishedAt)
}

func TestCandidateSet_MergeKeepsStableURL(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)

	set.Add(types.Article{URL: "https://reuters.com/article/abc", Title: "Fed raises rates"})
	set.Add(types.Article{
		URL:        "https://reuters.com/article/abc?utm_source=feed",
		Title:      "Fed raises rates",
		SourceName: "Reuters",
		Snippet:    "richer record",
	})

	articles := set.Articles()
	require.Len(t, articles, 1)
	assert.Equal(t, "https://reuters.com/article/abc", articles[0].URL)
}

func TestCandidateSet_PreservesInsertionOrder(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)

	set.Add(types.Article{URL: "https://a.com/1", Title: "First story here", SourceName: "A"})
	set.Add(types.Article{URL: "https://b.com/2", Title: "Second story entirely", SourceName: "B"})
	set.Add(types.Article{URL: "https://c.com/3", Title: "Third unrelated piece", SourceName: "C"})

	articles := set.Articles()
	require.Len(t, articles, 3)
	assert.Equal(t, "https://a.com/1", articles[0].URL)
	assert.Equal(t, "https://b.com/2", articles[1].URL)
	assert.Equal(t, "https://c.com/3", articles[2].URL)
}

func TestCandidateSet_EmptyURLIgnored(t *testing.T) {
	set := NewCandidateSet(testTitleThreshold)

	dup := set.Add(types.Article{Title: "No URL at all"})

	assert.False(t, dup)
	assert.Equal(t, 0, set.Len())
}
