package detect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Classifier decides whether fetched content is worth keeping. Both
// predicates are pure functions of their inputs; the same HTML always
// yields the same answer.
type Classifier struct {
	lex *Lexicon
}

// NewClassifier creates a Classifier over the given lexicon. A nil lexicon
// uses the production tables.
func NewClassifier(lex *Lexicon) *Classifier {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Classifier{lex: lex}
}

// IsMenuLike reports whether the visible text of an HTML document exhibits
// menu-typical price/currency/category density. Three tiers, OR-ed:
// price-token count >= 3, currency-symbol count >= 2, or at least one
// price token plus three category-keyword hits. The last tier catches
// pages that spell out sections but list few numerals; the currency tier
// catches symbol-heavy layouts with unparseable prices.
func (c *Classifier) IsMenuLike(html string) bool {
	text := visibleText(html)

	priceHits := len(c.lex.PriceRe.FindAllString(text, -1))
	if priceHits >= 3 {
		return true
	}

	currencyHits := len(c.lex.CurrencyRe.FindAllString(text, -1))
	if currencyHits >= 2 {
		return true
	}

	if priceHits >= 1 {
		lower := strings.ToLower(text)
		catHits := 0
		for _, kw := range c.lex.CategoryKeywords {
			if strings.Contains(lower, kw) {
				catHits++
			}
		}
		if catHits >= 3 {
			return true
		}
	}

	return false
}

// visibleText extracts the rendered text of an HTML document, dropping
// script/style/noscript content. Unparseable input degrades to the raw
// string rather than failing: the classifier must never error on
// arbitrary third-party HTML.
func visibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
