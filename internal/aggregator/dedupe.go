package aggregator

import (
	"strings"
	"time"

	"github.com/xrash/smetrics"

	"github.com/jonathan/news-agent/internal/types"
)

// sameEventWindow is the publication window within which two similar titles
// from one outlet are treated as the same story.
const sameEventWindow = 48 * time.Hour

// CandidateSet is an insertion-ordered collection of deduplicated articles
// keyed by normalized URL. Insertion order reflects search ranking.
type CandidateSet struct {
	order          []string
	byKey          map[string]types.Article
	titleThreshold float64
}

// NewCandidateSet creates an empty candidate set. titleThreshold is the
// Jaro-Winkler similarity above which same-outlet titles collapse.
func NewCandidateSet(titleThreshold float64) *CandidateSet {
	return &CandidateSet{
		byKey:          make(map[string]types.Article),
		titleThreshold: titleThreshold,
	}
}

// Add merges an article into the set, collapsing duplicates. It reports
// whether the article was a duplicate of an existing record.
func (s *CandidateSet) Add(article types.Article) (duplicate bool) {
	key := NormalizeURL(article.URL)
	if key == "" {
		return false
	}

	if existing, ok := s.byKey[key]; ok {
		s.byKey[key] = mergeArticles(existing, article)
		return true
	}

	// Secondary pass: near-identical title from the same outlet within the
	// same-event window is the same story syndicated under another URL.
	if dupKey := s.findTitleDuplicate(article); dupKey != "" {
		s.byKey[dupKey] = mergeArticles(s.byKey[dupKey], article)
		return true
	}

	s.order = append(s.order, key)
	s.byKey[key] = article
	return false
}

// findTitleDuplicate returns the key of an existing article that duplicates
// the given one by title similarity, or "" when there is none.
func (s *CandidateSet) findTitleDuplicate(article types.Article) string {
	title := NormalizeTitle(article.Title)
	if title == "" {
		return ""
	}

	for _, key := range s.order {
		existing := s.byKey[key]
		if !strings.EqualFold(existing.SourceName, article.SourceName) {
			continue
		}
		existingTitle := NormalizeTitle(existing.Title)
		if existingTitle == "" {
			continue
		}
		if smetrics.JaroWinkler(title, existingTitle, 0.7, 4) < s.titleThreshold {
			continue
		}
		if !withinWindow(existing.PublishedAt, article.PublishedAt, sameEventWindow) {
			continue
		}
		return key
	}
	return ""
}

// withinWindow reports whether two timestamps fall within d of each other.
// A missing timestamp on either side does not block the collapse.
func withinWindow(a, b *time.Time, d time.Duration) bool {
	if a == nil || b == nil {
		return true
	}
	diff := a.Sub(*b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= d
}

// mergeArticles resolves a collision: the record with richer metadata wins,
// with a non-empty snippet preferred and the earlier published timestamp
// kept when both fall within the same-event window.
func mergeArticles(existing, incoming types.Article) types.Article {
	winner, loser := existing, incoming

	switch {
	case existing.Snippet == "" && incoming.Snippet != "":
		winner, loser = incoming, existing
	case existing.Snippet != "" && incoming.Snippet == "":
		// keep existing
	case incoming.MetadataCompleteness() > existing.MetadataCompleteness():
		winner, loser = incoming, existing
	}

	// Backfill fields the winner is missing
	if winner.Title == "" {
		winner.Title = loser.Title
	}
	if winner.SourceName == "" {
		winner.SourceName = loser.SourceName
	}
	if winner.Snippet == "" {
		winner.Snippet = loser.Snippet
	}
	if winner.PublishedAt == nil {
		winner.PublishedAt = loser.PublishedAt
	} else if loser.PublishedAt != nil &&
		withinWindow(winner.PublishedAt, loser.PublishedAt, sameEventWindow) &&
		loser.PublishedAt.Before(*winner.PublishedAt) {
		winner.PublishedAt = loser.PublishedAt
	}

	// The winner keeps its own URL: the existing key stays stable
	winner.URL = existing.URL
	return winner
}

// Articles returns the candidates in insertion order.
func (s *CandidateSet) Articles() []types.Article {
	out := make([]types.Article, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byKey[key])
	}
	return out
}

// Len returns the number of unique candidates.
func (s *CandidateSet) Len() int {
	return len(s.order)
}
