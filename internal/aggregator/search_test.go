package aggregator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/news-agent/internal/providers"
	"github.com/jonathan/news-agent/internal/types"
)

// fakeClient is a scriptable SourceClient for search fan-out tests.
type fakeClient struct {
	name     string
	articles []types.Article
	err      error
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Search(ctx context.Context, query string, limit int) ([]types.Article, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &providers.ProviderError{Provider: f.name, Query: query, Err: ctx.Err()}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.Article, len(f.articles))
	copy(out, f.articles)
	return out, nil
}

func testQueries() []types.QueryVariation {
	return []types.QueryVariation{
		{Query: "fed rates", Strategy: types.StrategyDirect},
	}
}

func TestSearch_MergesAcrossClients(t *testing.T) {
	a := &fakeClient{name: "a", articles: []types.Article{
		{URL: "https://reuters.com/1", Title: "Story one here", SourceName: "Reuters"},
		{URL: "https://bbc.com/2", Title: "Story two here", SourceName: "BBC"},
	}}
	b := &fakeClient{name: "b", articles: []types.Article{
		{URL: "https://reuters.com/1", Title: "Story one here", SourceName: "Reuters"},
		{URL: "https://wired.com/3", Title: "Story three here", SourceName: "Wired"},
	}}

	res, err := Search(context.Background(), []providers.SourceClient{a, b}, testQueries(), Options{
		Concurrency:    2,
		TitleThreshold: testTitleThreshold,
	})

	require.NoError(t, err)
	assert.Equal(t, 4, res.Found)
	assert.Equal(t, 1, res.Duplicates)
	assert.Len(t, res.Articles, 3)
	assert.Empty(t, res.Errors)
}

func TestSearch_FailureIsolation(t *testing.T) {
	good := &fakeClient{name: "good", articles: []types.Article{
		{URL: "https://reuters.com/1", Title: "Story one here", SourceName: "Reuters"},
	}}
	bad := &fakeClient{name: "bad", err: &providers.ProviderError{Provider: "bad", StatusCode: 401}}

	res, err := Search(context.Background(), []providers.SourceClient{good, bad}, testQueries(), Options{
		Concurrency:    2,
		TitleThreshold: testTitleThreshold,
	})

	require.NoError(t, err)
	assert.Len(t, res.Articles, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "search", res.Errors[0].Stage)
	assert.Equal(t, "bad", res.Errors[0].Source)
}

func TestSearch_AllSourcesUnavailable(t *testing.T) {
	bad1 := &fakeClient{name: "bad1", err: &providers.ProviderError{Provider: "bad1", StatusCode: 401}}
	bad2 := &fakeClient{name: "bad2", err: &providers.ProviderError{Provider: "bad2", StatusCode: 403}}

	res, err := Search(context.Background(), []providers.SourceClient{bad1, bad2}, testQueries(), Options{
		Concurrency:    2,
		TitleThreshold: testTitleThreshold,
	})

	var unavailable *AllSourcesUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 2, unavailable.Attempts)
	assert.Len(t, res.Errors, 2)
}

func TestSearch_NoResultsIsNotAnOutage(t *testing.T) {
	empty := &fakeClient{name: "empty"}

	res, err := Search(context.Background(), []providers.SourceClient{empty}, testQueries(), Options{
		Concurrency:    1,
		TitleThreshold: testTitleThreshold,
	})

	require.NoError(t, err)
	assert.Empty(t, res.Articles)
	assert.Empty(t, res.Errors)
}

func TestSearch_RetriesTransientOnce(t *testing.T) {
	flaky := &fakeClient{name: "flaky", err: &providers.ProviderError{Provider: "flaky", StatusCode: 503}}

	_, err := Search(context.Background(), []providers.SourceClient{flaky}, testQueries(), Options{
		Concurrency:    1,
		TitleThreshold: testTitleThreshold,
	})

	require.Error(t, err)
	assert.Equal(t, int32(2), flaky.calls.Load())
}

func TestSearch_NoRetryOnPermanentFailure(t *testing.T) {
	denied := &fakeClient{name: "denied", err: &providers.ProviderError{Provider: "denied", StatusCode: 401}}

	_, err := Search(context.Background(), []providers.SourceClient{denied}, testQueries(), Options{
		Concurrency:    1,
		TitleThreshold: testTitleThreshold,
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), denied.calls.Load())
}

func TestSearch_CancellationReturnsPartial(t *testing.T) {
	slow := &fakeClient{name: "slow", delay: 5 * time.Second, articles: []types.Article{
		{URL: "https://reuters.com/1", Title: "Story one here", SourceName: "Reuters"},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := Search(ctx, []providers.SourceClient{slow}, testQueries(), Options{
		Concurrency:    1,
		TitleThreshold: testTitleThreshold,
	})

	require.NoError(t, err)
	assert.Empty(t, res.Articles)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSearch_PreRankPrefersTierAndRecency(t *testing.T) {
	now := time.Now().UTC()
	client := &fakeClient{name: "mixed", articles: []types.Article{
		{URL: "https://blog.example.com/1", Title: "Unknown outlet story", SourceName: "Some Blog", PublishedAt: timePtr(now)},
		{URL: "https://reuters.com/2", Title: "Regulators probe data practices", SourceName: "Reuters", PublishedAt: timePtr(now.Add(-72 * time.Hour))},
		{URL: "https://reuters.com/3", Title: "Markets rally on chip breakthrough", SourceName: "Reuters", PublishedAt: timePtr(now)},
	}}

	tierFor := func(name string) types.SourceTier {
		if name == "Reuters" {
			return types.Tier1
		}
		return types.TierUnknown
	}

	res, err := Search(context.Background(), []providers.SourceClient{client}, testQueries(), Options{
		Concurrency:    1,
		TitleThreshold: testTitleThreshold,
		TierFor:        tierFor,
	})

	require.NoError(t, err)
	require.Len(t, res.Articles, 3)
	assert.Equal(t, "https://reuters.com/3", res.Articles[0].URL)
	assert.Equal(t, "https://reuters.com/2", res.Articles[1].URL)
	assert.Equal(t, "https://blog.example.com/1", res.Articles[2].URL)
}

func TestSearch_MaxArticlesCap(t *testing.T) {
	client := &fakeClient{name: "many", articles: []types.Article{
		{URL: "https://a.com/1", Title: "First story here", SourceName: "A"},
		{URL: "https://b.com/2", Title: "Second story entirely", SourceName: "B"},
		{URL: "https://c.com/3", Title: "Third unrelated piece", SourceName: "C"},
	}}

	res, err := Search(context.Background(), []providers.SourceClient{client}, testQueries(), Options{
		Concurrency:    1,
		TitleThreshold: testTitleThreshold,
		MaxArticles:    2,
	})

	require.NoError(t, err)
	assert.Len(t, res.Articles, 2)
	assert.Equal(t, 3, res.Found)
}
