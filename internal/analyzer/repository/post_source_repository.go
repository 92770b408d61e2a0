package repository

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PostSourceRepository searches one social platform for posts mentioning a ticker.
type PostSourceRepository interface {
	Name() string
	SearchPosts(ctx context.Context, ticker string, maxResults int) ([]string, error)
}

// literalAngles keeps '<' and '>' as post text when the post is parsed, so that
// only entities get decoded.
var literalAngles = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// cleanPostText decodes html entities (&amp;, &lt;) and collapses whitespace. Posts are
// plain user text: anything between angle brackets is kept.
func cleanPostText(raw string) string {
	text := raw
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(literalAngles.Replace(raw)))
	if err == nil {
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " ")
}

// cashtag returns the search term for a ticker, e.g. "$ABC".
func cashtag(ticker string) string {
	return "$" + strings.ToUpper(strings.TrimPrefix(ticker, "$"))
}

func clampPageSize(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
