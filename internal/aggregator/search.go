package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/news-agent/internal/providers"
	"github.com/jonathan/news-agent/internal/types"
)

// DefaultCallTimeout bounds one provider call (including its single retry,
// each attempt gets its own timeout).
const DefaultCallTimeout = 10 * time.Second

// DefaultPerQueryLimit is how many results each (client, query) call asks for.
const DefaultPerQueryLimit = 5

// AllSourcesUnavailableError is returned when every configured source failed
// for every query. It is the only fatal outcome of the search stage.
type AllSourcesUnavailableError struct {
	Attempts int
}

func (e *AllSourcesUnavailableError) Error() string {
	return fmt.Sprintf("all sources unavailable: %d search calls failed", e.Attempts)
}

// Options configures the search fan-out.
type Options struct {
	// PerQueryLimit is the result count requested per (client, query) call
	PerQueryLimit int
	// Concurrency bounds parallel provider calls
	Concurrency int
	// CallTimeout bounds a single provider call attempt
	CallTimeout time.Duration
	// TitleThreshold is the Jaro-Winkler dedup threshold
	TitleThreshold float64
	// MaxArticles caps the candidate list after pre-ranking (0 = no cap)
	MaxArticles int
	// TierFor resolves a source name to its trust tier for pre-ranking
	TierFor func(sourceName string) types.SourceTier
	Verbose bool
}

// Result is the merged outcome of the search stage.
type Result struct {
	Articles   []types.Article
	Errors     []types.StageError
	Found      int // raw article count before dedup
	Duplicates int // articles collapsed into existing candidates
}

// callResult carries one (client, query) outcome back to the merge step.
type callResult struct {
	clientIdx int
	queryIdx  int
	articles  []types.Article
	err       error
	provider  string
	query     string
}

// Search fans the query variations out across all clients, bounded by
// opts.Concurrency, and merges the results into a deduplicated, pre-ranked
// candidate list. Per-call failures are recorded and absorbed; the only
// fatal outcome is every call failing while the context is still live.
func Search(ctx context.Context, clients []providers.SourceClient, queries []types.QueryVariation, opts Options) (*Result, error) {
	if opts.PerQueryLimit <= 0 {
		opts.PerQueryLimit = DefaultPerQueryLimit
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}

	total := len(clients) * len(queries)
	results := make([]callResult, 0, total)
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for ci, client := range clients {
		for qi, query := range queries {
			if gCtx.Err() != nil {
				break
			}
			ci, qi, client, query := ci, qi, client, query
			g.Go(func() error {
				articles, err := searchWithRetry(gCtx, client, query.Query, opts.PerQueryLimit, opts.CallTimeout)
				mu.Lock()
				results = append(results, callResult{
					clientIdx: ci,
					queryIdx:  qi,
					articles:  articles,
					err:       err,
					provider:  client.Name(),
					query:     query.Query,
				})
				mu.Unlock()
				return nil // per-call failures never abort the group
			})
		}
	}

	_ = g.Wait()

	// Deterministic merge order: query rank first, then client order, so the
	// candidate insertion order reflects search ranking regardless of which
	// goroutine finished first.
	sort.Slice(results, func(i, j int) bool {
		if results[i].queryIdx != results[j].queryIdx {
			return results[i].queryIdx < results[j].queryIdx
		}
		return results[i].clientIdx < results[j].clientIdx
	})

	res := &Result{}
	set := NewCandidateSet(opts.TitleThreshold)
	failures := 0

	for _, call := range results {
		if call.err != nil {
			failures++
			res.Errors = append(res.Errors, types.StageError{
				Stage:   "search",
				Source:  call.provider,
				Message: fmt.Sprintf("query %q: %v", call.query, call.err),
			})
			continue
		}
		res.Found += len(call.articles)
		for _, article := range call.articles {
			if set.Add(article) {
				res.Duplicates++
			}
		}
	}

	if opts.Verbose {
		log.Printf("[SEARCH] %d calls, %d failures, %d raw articles, %d unique",
			len(results), failures, res.Found, set.Len())
	}

	if set.Len() == 0 {
		if ctx.Err() != nil {
			// Cancelled before anything succeeded: partial (empty) result,
			// the caller decides what the deadline means.
			res.Articles = nil
			return res, nil
		}
		if failures > 0 && failures == len(results) {
			return res, &AllSourcesUnavailableError{Attempts: failures}
		}
		// Providers responded but matched nothing; not a source outage.
		res.Articles = nil
		return res, nil
	}

	res.Articles = preRank(set.Articles(), opts)
	return res, nil
}

// searchWithRetry issues one provider call with a per-attempt timeout,
// retrying exactly once on transient failure.
func searchWithRetry(ctx context.Context, client providers.SourceClient, query string, limit int, timeout time.Duration) ([]types.Article, error) {
	attempt := func() ([]types.Article, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return client.Search(callCtx, query, limit)
	}

	articles, err := attempt()
	if err == nil {
		return articles, nil
	}

	var pe *providers.ProviderError
	if errors.As(err, &pe) && pe.Transient() && ctx.Err() == nil {
		return attempt()
	}
	return nil, err
}

// tierOrder maps tiers to sort preference (lower sorts first).
var tierOrder = map[types.SourceTier]int{
	types.Tier1:       0,
	types.Tier2:       1,
	types.Tier3:       2,
	types.TierUnknown: 3,
}

// preRank stable-sorts candidates by (source tier preference, recency) and
// applies the candidate cap, bounding downstream extraction cost.
func preRank(articles []types.Article, opts Options) []types.Article {
	tierFor := opts.TierFor
	if tierFor == nil {
		tierFor = func(string) types.SourceTier { return types.TierUnknown }
	}

	sort.SliceStable(articles, func(i, j int) bool {
		ti := tierOrder[tierFor(articles[i].SourceName)]
		tj := tierOrder[tierFor(articles[j].SourceName)]
		if ti != tj {
			return ti < tj
		}
		pi, pj := articles[i].PublishedAt, articles[j].PublishedAt
		switch {
		case pi == nil && pj == nil:
			return false // keep insertion order
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})

	if opts.MaxArticles > 0 && len(articles) > opts.MaxArticles {
		articles = articles[:opts.MaxArticles]
	}
	return articles
}
