package discover

import "strings"

// Heuristics bundles the keyword/path tables that drive candidate scoring.
// Like the detect lexicon, these are data rather than behavior: tests swap
// in fixture tables, production code uses DefaultHeuristics.
type Heuristics struct {
	// PositiveHints add +3 when the hint contains "menu", +2 otherwise.
	PositiveHints []string
	// NegativeHints subtract 3 each (reservations, careers, galleries...).
	NegativeHints []string
	// StrongPathHints add a one-time +3 when present in the href.
	StrongPathHints []string
	// ExternalHosts are ordering/menu platforms trusted to serve menu
	// content; matching links get a large bonus and skip the content gate.
	ExternalHosts []string
	// CommonPaths is the guessed-candidate bank tried against a site root.
	CommonPaths []string
}

// Scoring constants. The per-hint weights live in Score; these are the
// fixed bonuses shared between the scorer, the generator, and the site
// processor.
const (
	externalHostBonus  = 6  // added per anchor resolving to a trusted platform
	homepageSelfScore  = 5  // homepage injected as its own candidate
	guessedPathScore   = 8  // every guessed-bank candidate
	pdfBonus           = 4  // href ends in .pdf
	strongPathBonus    = 3  // href matches a strong menu-path pattern
	maxLinkCandidates  = 12 // cap on the ranked link-derived list
	maxAnchorTextChars = 200
)

// DefaultHeuristics returns the production tables.
func DefaultHeuristics() *Heuristics {
	return &Heuristics{
		PositiveHints: []string{
			"menu", "menus", "our menu", "food", "order", "order online",
			"lunch", "dinner", "brunch", "drinks", "beverages", "happy hour",
		},
		NegativeHints: []string{
			"reservations", "reservation", "gift", "careers", "jobs", "press",
			"gallery", "photos", "contact", "privacy", "terms", "accessibility",
		},
		StrongPathHints: []string{"/menu", "/menus", "food-menu", "our-menu", "menu.html"},
		ExternalHosts: []string{
			"toasttab.com", "clover.com", "square.site", "ubereats.com",
			"doordash.com", "grubhub.com", "opentable.com", "resy.com",
			"tock.com", "olo.com",
		},
		CommonPaths: []string{
			"/menu",
			"/menus",
			"/our-menu",
			"/our-menus",
			"/food-menu",
			"/food-menus",
			"/dinner-menu",
			"/lunch-menu",
			"/brunch-menu",
			"/breakfast-menu",
			"/kids-menu",
			"/kid-menu",
			"/kids",
			"/drinks-menu",
			"/drink-menu",
			"/beverages-menu",
			"/beverage-menu",
			"/wine-menu",
			"/dessert-menu",
			"/specials",
			"/daily-specials",
			"/today-specials",
			"/buffet-menu",
			"/takeaway-menu",
			"/take-out-menu",
			"/delivery-menu",
			"/order-online/menu",
			"/order/menu",

			// HTML file variants
			"/menu.html",
			"/menus.html",
			"/our-menu.html",
			"/food-menu.html",
			"/lunch-menu.html",
			"/dinner-menu.html",

			// PDF variants
			"/menu.pdf",
			"/menus.pdf",
			"/our-menu.pdf",
			"/food-menu.pdf",
			"/dinner-menu.pdf",
			"/lunch-menu.pdf",
			"/brunch-menu.pdf",
			"/breakfast-menu.pdf",
			"/kids-menu.pdf",
			"/drinks-menu.pdf",
			"/drink-menu.pdf",
			"/takeaway-menu.pdf",
			"/take-out-menu.pdf",
			"/dessert-menu.pdf",
			"/wine-menu.pdf",
			"/specials.pdf",
			"/buffet-menu.pdf",

			// Folder patterns common on WordPress restaurant sites
			"/wp-content/uploads/menu.pdf",
			"/wp-content/uploads/menus.pdf",
			"/wp-content/uploads/2023/menu.pdf",
			"/wp-content/uploads/2024/menu.pdf",
			"/wp-content/uploads/2022/menu.pdf",
			"/files/menu.pdf",
			"/uploads/menu.pdf",
			"/download/menu.pdf",
			"/documents/menu.pdf",
			"/docs/menu.pdf",

			// Multi-category menu pages
			"/menu/dinner",
			"/menu/lunch",
			"/menu/brunch",
			"/menu/breakfast",
			"/menu/drinks",
			"/menu/beverages",
			"/menu/kids",
			"/menu/dessert",
			"/menu/specials",

			// Common restaurant CMS patterns
			"/restaurant-menu",
			"/the-menu",
			"/menus-list",
			"/full-menu",
			"/complete-menu",
			"/menu-card",
			"/menu-list",
			"/food",
			"/eat",
			"/order",
			"/order-online",
		},
	}
}

// IsExternalHost reports whether host is (or is a subdomain of) a known
// external ordering/menu platform.
func (h *Heuristics) IsExternalHost(host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	for _, dom := range h.ExternalHosts {
		if host == dom || strings.HasSuffix(host, "."+dom) {
			return true
		}
	}
	return false
}
