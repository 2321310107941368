package extraction

import "strings"

// minFullTextLength is the shortest text accepted as a real article body.
const minFullTextLength = 200

// boilerplateMarkers flag interstitial pages that fetch as HTTP 200 but carry
// no article: consent walls, JS requirements, paywalls, bot checks.
var boilerplateMarkers = []string{
	"enable javascript",
	"javascript is disabled",
	"javascript is required",
	"accept cookies",
	"accept all cookies",
	"we use cookies",
	"cookie settings",
	"subscribe to continue",
	"subscribe to read",
	"sign in to continue",
	"create a free account",
	"are you a robot",
	"verify you are human",
	"access denied",
	"404 not found",
	"page not found",
}

// boilerplateRatioLimit is how early a marker must appear for the page to be
// treated as an interstitial rather than an article that merely mentions one.
const boilerplateRatioLimit = 0.25

// AcceptableText reports whether extracted text passes the quality gate:
// long enough to be an article body and not dominated by boilerplate.
func AcceptableText(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < minFullTextLength {
		return false
	}

	lower := strings.ToLower(text)
	cutoff := int(float64(len(lower)) * boilerplateRatioLimit)
	for _, marker := range boilerplateMarkers {
		idx := strings.Index(lower, marker)
		if idx >= 0 && idx < cutoff {
			return false
		}
	}
	return true
}
