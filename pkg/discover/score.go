package discover

import "strings"

// Scorer assigns a relevance score to an anchor (text, href) pair. Pure
// and deterministic: the same inputs always produce the same score, and
// empty inputs score 0.
type Scorer struct {
	h *Heuristics
}

// NewScorer creates a Scorer over the given heuristic tables. A nil table
// set uses the production tables.
func NewScorer(h *Heuristics) *Scorer {
	if h == nil {
		h = DefaultHeuristics()
	}
	return &Scorer{h: h}
}

// Score rates how likely the link points at a menu document. Positive
// hints in either the text or the href add +3 for menu-specific keywords
// and +2 for generic food/dining ones; negative hints subtract 3; a strong
// menu-path pattern in the href adds a one-time +3; a .pdf href adds +4.
func (s *Scorer) Score(text, href string) int {
	t := strings.ToLower(strings.TrimSpace(text))
	h := strings.ToLower(strings.TrimSpace(href))

	score := 0

	for _, kw := range s.h.PositiveHints {
		if strings.Contains(t, kw) || strings.Contains(h, kw) {
			if strings.Contains(kw, "menu") {
				score += 3
			} else {
				score += 2
			}
		}
	}
	for _, bad := range s.h.NegativeHints {
		if strings.Contains(t, bad) || strings.Contains(h, bad) {
			score -= 3
		}
	}

	for _, p := range s.h.StrongPathHints {
		if strings.Contains(h, p) {
			score += strongPathBonus
			break
		}
	}

	if strings.HasSuffix(h, ".pdf") {
		score += pdfBonus
	}

	return score
}
