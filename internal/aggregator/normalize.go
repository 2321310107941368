// Package aggregator fans a query set out across the configured source
// clients, merges the results, and deduplicates near-identical articles.
package aggregator

import (
	"net/url"
	"strings"
	"unicode"
)

// trackingParams are query parameters that identify a click, not a document.
// They are stripped so the same article reached via different campaigns
// collapses to one key.
var trackingParams = map[string]bool{
	"fbclid":       true,
	"gclid":        true,
	"msclkid":      true,
	"ref":          true,
	"source":       true,
	"cmpid":        true,
	"smid":         true,
	"partner":      true,
	"mc_cid":       true,
	"mc_eid":       true,
	"_hsenc":       true,
	"_hsmi":        true,
	"igshid":       true,
	"sr_share":     true,
	"ncid":         true,
	"share_type":   true,
	"referrer":     true,
	"rss":          true,
	"ocid":         true,
	"cndid":        true,
	"spm":          true,
	"mbid":         true,
	"xtor":         true,
	"guccounter":   true,
	"guce_referrer": true,
}

// NormalizeURL reduces a URL to its canonical dedup key: scheme-insensitive,
// host lowercased without www, tracking parameters stripped, fragment
// dropped, trailing slash trimmed. Unparseable URLs are returned lowercased
// so they still key consistently.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimSuffix(host, ":80")
	host = strings.TrimSuffix(host, ":443")

	path := strings.TrimSuffix(parsed.EscapedPath(), "/")

	query := parsed.Query()
	for param := range query {
		lower := strings.ToLower(param)
		if trackingParams[lower] || strings.HasPrefix(lower, "utm_") {
			query.Del(param)
		}
	}

	normalized := host + path
	if encoded := query.Encode(); encoded != "" {
		normalized += "?" + encoded
	}
	return normalized
}

// NormalizeTitle lowercases a title and strips punctuation and extra
// whitespace, for similarity comparison.
func NormalizeTitle(title string) string {
	var sb strings.Builder
	lastSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
				lastSpace = true
			}
		}
		// Punctuation and symbols are dropped entirely
	}
	return strings.TrimSpace(sb.String())
}
