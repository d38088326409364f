package detect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LooksLikeErrorPage reports whether a fetched page is an error page rather
// than a real document. Checks in order:
//  1. statusCode >= 400 (body ignored),
//  2. an error-indicating substring in <title>,
//  3. a robots meta tag containing "noindex" combined with a page-missing
//     phrase in the visible text.
//
// The compound third check exists because many sites serve custom error
// pages with HTTP 200.
func (c *Classifier) LooksLikeErrorPage(html string, statusCode int) bool {
	if statusCode >= 400 {
		return true
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable HTML is not evidence of an error page
		return false
	}

	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	if title != "" {
		for _, hint := range c.lex.ErrorTitleHints {
			if strings.Contains(title, hint) {
				return true
			}
		}
	}

	robotsContent, _ := doc.Find(`meta[name="robots"]`).First().Attr("content")
	if strings.Contains(strings.ToLower(robotsContent), "noindex") {
		doc.Find("script, style, noscript").Remove()
		text := strings.ToLower(strings.Join(strings.Fields(doc.Text()), " "))
		for _, phrase := range c.lex.MissingPhrases {
			if strings.Contains(text, phrase) {
				return true
			}
		}
	}

	return false
}
