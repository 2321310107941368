package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptableText_RejectsShortText(t *testing.T) {
	assert.False(t, AcceptableText("Too short to be an article."))
	assert.False(t, AcceptableText(""))
	assert.False(t, AcceptableText(strings.Repeat(" ", 500)))
}

func TestAcceptableText_AcceptsArticleBody(t *testing.T) {
	body := strings.Repeat("The central bank announced a policy change on Thursday. ", 20)

	assert.True(t, AcceptableText(body))
}

func TestAcceptableText_RejectsCookieWall(t *testing.T) {
	page := "We use cookies to improve your experience. Accept all cookies to continue. " +
		strings.Repeat("Legal boilerplate about data processing and partners. ", 10)

	assert.False(t, AcceptableText(page))
}

func TestAcceptableText_RejectsJavaScriptWall(t *testing.T) {
	page := "Please enable JavaScript to view this site. " + strings.Repeat("x", 300)

	assert.False(t, AcceptableText(page))
}

func TestAcceptableText_AllowsLateMention(t *testing.T) {
	// An article that merely discusses cookie banners deep in its body is fine
	body := strings.Repeat("Regulators scrutinized advertising technology this year. ", 30) +
		"Sites that say accept cookies were part of the study."

	assert.True(t, AcceptableText(body))
}
