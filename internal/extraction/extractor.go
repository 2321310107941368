// Package extraction retrieves the full text of candidate articles. A failed
// extraction is an expected outcome, not an error: the article keeps its
// snippet and is marked ExtractionFailed.
package extraction

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/news-agent/internal/fetch"
	"github.com/jonathan/news-agent/internal/types"
)

// paragraphFallbackCount bounds the last-resort paragraph scrape.
const paragraphFallbackCount = 30

// browserRenderTimeout bounds a single headless render.
const browserRenderTimeout = 30 * time.Second

// Extractor fetches article pages and extracts their body text.
type Extractor struct {
	fetchOpts  *fetch.Options
	useBrowser bool
	verbose    bool
}

// NewExtractor creates an Extractor. fetchOpts may be nil for defaults;
// useBrowser enables the headless-browser fallback for pages whose plain
// HTTP fetch yields too little text.
func NewExtractor(fetchOpts *fetch.Options, useBrowser, verbose bool) *Extractor {
	if fetchOpts == nil {
		fetchOpts = fetch.DefaultOptions()
	}
	return &Extractor{fetchOpts: fetchOpts, useBrowser: useBrowser, verbose: verbose}
}

// Extract attempts to pull the full text for one article. It never returns an
// error: on failure the article comes back with ExtractionFailed and the
// reason is returned as a diagnostic.
func (e *Extractor) Extract(ctx context.Context, article types.Article) (types.Article, *types.StageError) {
	result, err := fetch.URL(ctx, article.URL, e.fetchOpts)
	if err != nil {
		return e.failed(article, fmt.Sprintf("fetch failed: %v", err))
	}

	text := e.textFromHTML(result.HTML, article.URL)

	if !AcceptableText(text) && e.useBrowser && fetch.ShouldUseBrowser(text) && ctx.Err() == nil {
		rendered, berr := fetch.WithBrowser(ctx, article.URL, browserRenderTimeout, e.verbose)
		if berr != nil {
			if e.verbose {
				log.Printf("[EXTRACT] browser fallback failed for %s: %v", article.URL, berr)
			}
		} else {
			text = e.textFromHTML(rendered, article.URL)
		}
	}

	if !AcceptableText(text) {
		return e.failed(article, "extracted text below quality threshold")
	}

	article.FullText = strings.TrimSpace(text)
	article.ExtractionStatus = types.ExtractionSuccess
	if e.verbose {
		log.Printf("[EXTRACT] %s: %d chars", article.URL, len(article.FullText))
	}
	return article, nil
}

// textFromHTML runs the extraction strategies in order of fidelity:
// readability, then content selectors, then raw paragraphs. The first result
// passing the quality gate wins; otherwise the longest attempt is returned so
// the caller can judge it.
func (e *Extractor) textFromHTML(html, pageURL string) string {
	best := ""

	if parsed, err := url.Parse(pageURL); err == nil {
		if doc, err := readability.FromReader(strings.NewReader(html), parsed); err == nil {
			text := strings.TrimSpace(doc.TextContent)
			if AcceptableText(text) {
				return text
			}
			if len(text) > len(best) {
				best = text
			}
		}
	}

	if text, err := fetch.ExtractMainText(html, fetch.ArticleSelectors()); err == nil {
		text = strings.TrimSpace(text)
		if AcceptableText(text) {
			return text
		}
		if len(text) > len(best) {
			best = text
		}
	}

	if text, err := fetch.ExtractParagraphs(html, paragraphFallbackCount); err == nil {
		text = strings.TrimSpace(text)
		if len(text) > len(best) {
			best = text
		}
	}

	return best
}

func (e *Extractor) failed(article types.Article, reason string) (types.Article, *types.StageError) {
	article.ExtractionStatus = types.ExtractionFailed
	if e.verbose {
		log.Printf("[EXTRACT] %s: %s", article.URL, reason)
	}
	return article, &types.StageError{
		Stage:   "extract",
		Source:  article.URL,
		Message: reason,
	}
}

// ExtractAll extracts article texts concurrently, bounded by concurrency.
// The returned slice preserves input order. On context cancellation the
// articles not yet attempted keep ExtractionNotAttempted.
func (e *Extractor) ExtractAll(ctx context.Context, articles []types.Article, concurrency int) ([]types.Article, []types.StageError) {
	if concurrency <= 0 {
		concurrency = 1
	}

	out := make([]types.Article, len(articles))
	copy(out, articles)

	var mu sync.Mutex
	var diags []types.StageError

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range out {
		if gCtx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}
			updated, diag := e.Extract(gCtx, out[i])
			mu.Lock()
			out[i] = updated
			if diag != nil {
				diags = append(diags, *diag)
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return out, diags
}
