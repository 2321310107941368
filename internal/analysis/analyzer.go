// Package analysis assigns each article a deterministic credibility score
// from its source tier, recency, and content quality, then ranks the batch.
package analysis

import (
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/news-agent/internal/config"
	"github.com/jonathan/news-agent/internal/types"
)

// Tier sub-scores. Unknown outlets are penalized, not excluded.
const (
	tier1Score       = 100.0
	tier2Score       = 80.0
	tier3Score       = 65.0
	tierUnknownScore = 40.0
)

// Recency sub-score breakpoints.
const (
	recencyDayScore     = 100.0
	recencyWeekScore    = 90.0
	recencyMonthScore   = 75.0
	recencyYearScore    = 20.0
	recencyMissingScore = 50.0
)

// Content sub-scores. Full text earns length and evidence bonuses;
// snippet-only articles get a flat penalized value.
const (
	contentFullBase     = 55.0
	contentLengthBonus  = 25.0
	contentFullSaturate = 2000 // chars at which the length bonus maxes out
	contentSignalBonus  = 5.0
	contentSnippetScore = 40.0
	contentEmptyScore   = 10.0
)

// Analyzer scores and ranks articles. now is injectable for deterministic
// recency tests.
type Analyzer struct {
	tierTable map[string]types.SourceTier
	weights   config.ScoreWeights
	now       func() time.Time
	verbose   bool
}

// NewAnalyzer creates an Analyzer from the configured tier table and weights.
func NewAnalyzer(tierTable map[string]types.SourceTier, weights config.ScoreWeights, verbose bool) *Analyzer {
	return &Analyzer{
		tierTable: tierTable,
		weights:   weights,
		now:       time.Now,
		verbose:   verbose,
	}
}

// WithClock overrides the time source. Tests use it to pin recency scoring.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// TierFor resolves a source name against a tier table by case-insensitive
// substring match, so "BBC News" matches the "bbc" entry.
func TierFor(tierTable map[string]types.SourceTier, sourceName string) types.SourceTier {
	name := strings.ToLower(strings.TrimSpace(sourceName))
	if name == "" {
		return types.TierUnknown
	}
	for key, tier := range tierTable {
		if strings.Contains(name, strings.ToLower(key)) {
			return tier
		}
	}
	return types.TierUnknown
}

// Score computes the weighted credibility score for one article, in [0, 100].
func (a *Analyzer) Score(article types.Article) (float64, types.SourceTier) {
	tier := TierFor(a.tierTable, article.SourceName)

	composite := a.weights.Tier*tierScore(tier) +
		a.weights.Recency*a.recencyScore(article.PublishedAt) +
		a.weights.Content*contentScore(article)

	return math.Round(math.Max(0, math.Min(100, composite))*10) / 10, tier
}

func tierScore(tier types.SourceTier) float64 {
	switch tier {
	case types.Tier1:
		return tier1Score
	case types.Tier2:
		return tier2Score
	case types.Tier3:
		return tier3Score
	default:
		return tierUnknownScore
	}
}

// recencyScore maps article age to a score: full marks inside a day, stepped
// down through a week and a month, then decaying linearly to the year floor.
// Missing timestamps get a neutral penalized value.
func (a *Analyzer) recencyScore(publishedAt *time.Time) float64 {
	if publishedAt == nil {
		return recencyMissingScore
	}

	age := a.now().Sub(*publishedAt)
	switch {
	case age < 0:
		// Future-dated metadata is treated as fresh
		return recencyDayScore
	case age < 24*time.Hour:
		return recencyDayScore
	case age < 7*24*time.Hour:
		return recencyWeekScore
	case age < 30*24*time.Hour:
		return recencyMonthScore
	case age < 365*24*time.Hour:
		frac := (age.Hours() - 30*24) / ((365 - 30) * 24)
		return recencyMonthScore - frac*(recencyMonthScore-recencyYearScore)
	default:
		return recencyYearScore
	}
}

func contentScore(article types.Article) float64 {
	if article.ExtractionStatus == types.ExtractionSuccess && article.FullText != "" {
		frac := math.Min(1, float64(len(article.FullText))/contentFullSaturate)
		evidence := float64(evidenceSignals(article.FullText)) * contentSignalBonus
		return contentFullBase + frac*contentLengthBonus + evidence
	}
	if strings.TrimSpace(article.Snippet) != "" {
		return contentSnippetScore
	}
	return contentEmptyScore
}

// evidenceSignals counts coarse markers of sourced reporting in the text:
// direct quotes, attribution phrasing, numeric data, and references to
// research material. Each class counts at most once, so the score only goes
// up as evidence accumulates.
func evidenceSignals(text string) int {
	lower := strings.ToLower(text)
	signals := 0
	if strings.ContainsAny(text, `"“”`) {
		signals++
	}
	for _, phrase := range []string{"according to", " said ", " told ", "reported"} {
		if strings.Contains(lower, phrase) {
			signals++
			break
		}
	}
	if strings.ContainsAny(text, "0123456789") {
		signals++
	}
	for _, phrase := range []string{"study", "survey", "data", "analysis"} {
		if strings.Contains(lower, phrase) {
			signals++
			break
		}
	}
	return signals
}

// AnalyzeBatch scores every article, then assigns dense ranks by descending
// score with ties broken by earlier publication and then input order. The
// returned slice is sorted by rank.
func (a *Analyzer) AnalyzeBatch(articles []types.Article) []types.Article {
	scored := make([]types.Article, len(articles))
	copy(scored, articles)

	for i := range scored {
		score, tier := a.Score(scored[i])
		s := score
		scored[i].CredibilityScore = &s
		scored[i].SourceTier = tier
	}

	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		i, j := order[x], order[y]
		si, sj := *scored[i].CredibilityScore, *scored[j].CredibilityScore
		if si != sj {
			return si > sj
		}
		pi, pj := scored[i].PublishedAt, scored[j].PublishedAt
		switch {
		case pi != nil && pj != nil && !pi.Equal(*pj):
			return pi.Before(*pj)
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return i < j
	})

	out := make([]types.Article, 0, len(scored))
	rank := 0
	var prevScore float64
	for pos, idx := range order {
		article := scored[idx]
		if pos == 0 || *article.CredibilityScore != prevScore {
			rank++
			prevScore = *article.CredibilityScore
		}
		article.Rank = rank
		out = append(out, article)
	}

	if a.verbose && len(out) > 0 {
		log.Printf("[ANALYZE] %d articles scored, top %.1f (%s)",
			len(out), *out[0].CredibilityScore, out[0].SourceName)
	}

	return out
}
