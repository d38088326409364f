package detect

import "regexp"

// Lexicon bundles the patterns and keyword sets the classifier matches
// against. The tables are data, not behavior: tests substitute small
// fixtures, production code uses DefaultLexicon.
type Lexicon struct {
	// PriceRe matches price-like tokens: an optional currency symbol
	// followed by 1-3 digits with optional cents.
	PriceRe *regexp.Regexp
	// CurrencyRe matches bare currency symbols.
	CurrencyRe *regexp.Regexp
	// CategoryKeywords are menu-section words counted as substring hits
	// on the lowercased visible text.
	CategoryKeywords []string
	// ErrorTitleHints mark a page as an error page when found in <title>.
	ErrorTitleHints []string
	// MissingPhrases mark a page as an error page when found in the body
	// text of a noindex page.
	MissingPhrases []string
}

// DefaultLexicon returns the production classification tables.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		PriceRe:    regexp.MustCompile(`\b(?:\$\s*)?\d{1,3}(?:[.,]\d{2})?\b`),
		CurrencyRe: regexp.MustCompile(`[$£€]`),
		CategoryKeywords: []string{
			"appetizer", "appetizers", "starters", "sides", "entrees", "mains",
			"main", "pasta", "pizzas", "pizza", "desserts", "brunch", "lunch",
			"dinner", "drinks", "beverages", "beverage", "wine", "cocktails",
			"beer", "kids", "salads", "soup", "soups",
		},
		ErrorTitleHints: []string{"404", "page not found", "not found", "error"},
		MissingPhrases: []string{
			"page does not exist", "page not found", "this page does not exist", "oops",
		},
	}
}
