package discover

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"menu-scraper/pkg/models"
	"menu-scraper/pkg/parse"
	"menu-scraper/pkg/utils"
)

// Generator produces ranked menu-page candidates for one site by combining
// scored homepage links with the guessed common-path bank.
type Generator struct {
	h      *Heuristics
	scorer *Scorer
	// menuLike classifies the homepage's own rendered text; when it fires,
	// the homepage is injected as a candidate even if no link points to it.
	// Nil disables the homepage self-candidate.
	menuLike func(html string) bool
	log      *logrus.Entry
}

// NewGenerator creates a Generator. A nil Heuristics uses the production
// tables; menuLike may be nil.
func NewGenerator(h *Heuristics, menuLike func(html string) bool, log *logrus.Entry) *Generator {
	if h == nil {
		h = DefaultHeuristics()
	}
	return &Generator{
		h:        h,
		scorer:   NewScorer(h),
		menuLike: menuLike,
		log:      log,
	}
}

// Candidates returns the full fetch list for a site: the ranked link-derived
// candidates followed by guessed-bank entries whose URL is not already
// present. Link-derived entries always precede guessed ones regardless of
// score; provenance is the tie-break, observed links are better evidence
// than guesses.
func (g *Generator) Candidates(baseURL, html string) ([]models.MenuCandidate, error) {
	linked, err := g.FromHomepage(baseURL, html)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(linked))
	for _, c := range linked {
		seen[candidateKey(c.URL)] = true
	}

	out := linked
	for _, c := range g.Guessed(baseURL) {
		if key := candidateKey(c.URL); !seen[key] {
			seen[key] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// FromHomepage extracts every anchor from the homepage HTML, resolves and
// scores it, and returns the surviving candidates ranked by score
// (descending, first-seen order on ties), capped at 12.
func (g *Generator) FromHomepage(baseURL, html string) ([]models.MenuCandidate, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL '%s': %w: %w", baseURL, utils.ErrParsing, err)
	}
	baseKey := parse.CanonicalKey(base)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing homepage HTML for '%s': %w: %w", baseURL, utils.ErrParsing, err)
	}

	best := make(map[string]models.MenuCandidate)
	var order []string // first-seen keys, keeps ranking deterministic on ties

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}

		resolved, parseErr := base.Parse(href)
		if parseErr != nil {
			g.log.Debugf("Skipping unparseable href '%s': %v", href, parseErr)
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return // mailto:, tel:, javascript: and friends
		}

		key := parse.CanonicalKey(resolved)
		if key == baseKey {
			return // self-link; the homepage gets its own injection below
		}

		text := collapseSpace(sel.Text())
		if len(text) > maxAnchorTextChars {
			text = text[:maxAnchorTextChars]
		}

		score := g.scorer.Score(text, href)
		if g.h.IsExternalHost(resolved.Hostname()) {
			score += externalHostBonus
		}
		if score <= 0 {
			return
		}

		cand := models.MenuCandidate{
			URL:   resolved.String(),
			Label: anchorLabel(text),
			Score: score,
		}
		prev, exists := best[key]
		if !exists {
			order = append(order, key)
			best[key] = cand
		} else if cand.Score > prev.Score {
			best[key] = cand
		}
	})

	// A homepage that reads like a menu is a candidate in its own right,
	// even when nothing links back to it.
	if g.menuLike != nil && g.menuLike(html) {
		if _, exists := best[baseKey]; !exists {
			order = append(order, baseKey)
		}
		best[baseKey] = models.MenuCandidate{URL: baseURL, Label: "homepage", Score: homepageSelfScore}
	}

	candidates := make([]models.MenuCandidate, 0, len(order))
	for _, key := range order {
		candidates = append(candidates, best[key])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > maxLinkCandidates {
		candidates = candidates[:maxLinkCandidates]
	}
	return candidates, nil
}

// Guessed constructs one candidate per common-path bank entry against the
// site's root. All guessed candidates share a fixed moderate score and must
// later pass the content gate to be saved.
func (g *Generator) Guessed(baseURL string) []models.MenuCandidate {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		g.log.Debugf("No usable root in base URL '%s', skipping guessed candidates", baseURL)
		return nil
	}
	root := url.URL{Scheme: base.Scheme, Host: base.Host}

	out := make([]models.MenuCandidate, 0, len(g.h.CommonPaths))
	for _, path := range g.h.CommonPaths {
		ref, parseErr := url.Parse(path)
		if parseErr != nil {
			continue
		}
		label := strings.ReplaceAll(strings.Trim(path, "/"), "-", " ")
		out = append(out, models.MenuCandidate{
			URL:     root.ResolveReference(ref).String(),
			Label:   anchorLabel(label),
			Score:   guessedPathScore,
			Guessed: true,
		})
	}
	return out
}

// candidateKey is the identity used for per-site de-duplication.
func candidateKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parse.CanonicalKey(u)
}

// anchorLabel turns anchor text into a short display label.
func anchorLabel(text string) string {
	label := strings.ToLower(strings.TrimSpace(text))
	if label == "" {
		return "menu"
	}
	if len(label) > 60 {
		label = label[:60]
	}
	return label
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
