package discover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_EmptyInputs(t *testing.T) {
	s := NewScorer(nil)
	assert.Equal(t, 0, s.Score("", ""))
	assert.Equal(t, 0, s.Score("   ", "   "))
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer(nil)
	first := s.Score("Our Menu", "/menu")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Score("Our Menu", "/menu"))
	}
}

func TestScore_MenuKeywordsOutweighGeneric(t *testing.T) {
	s := NewScorer(nil)

	// "lunch" is a generic food hint (+2); "menu" hints carry +3
	generic := s.Score("Lunch", "/lunch")
	menuish := s.Score("Menu", "/page")
	assert.Greater(t, menuish, generic)
}

func TestScore_MenuAnchorScenario(t *testing.T) {
	s := NewScorer(nil)

	// keyword hits (+3 "menu", +3 "our menu") plus strong path bonus (+3)
	score := s.Score("Our Menu", "/menu")
	assert.GreaterOrEqual(t, score, 5)
}

func TestScore_NegativeHints(t *testing.T) {
	s := NewScorer(nil)

	assert.LessOrEqual(t, s.Score("Careers", "/careers"), 0)
	assert.LessOrEqual(t, s.Score("Photo Gallery", "/gallery"), 0)

	// A negative hint drags down an otherwise positive link
	clean := s.Score("Menu", "/menu")
	tainted := s.Score("Menu Reservations", "/menu")
	assert.Equal(t, clean-3, tainted)
}

func TestScore_PDFBonus(t *testing.T) {
	s := NewScorer(nil)

	plain := s.Score("Dinner", "/dinner")
	pdf := s.Score("Dinner", "/dinner.pdf")
	assert.Equal(t, plain+4, pdf)
}

func TestScore_StrongPathBonusAppliesOnce(t *testing.T) {
	s := NewScorer(nil)

	// href matches both "/menu" and "menu.html"; the bonus is one-time
	one := s.Score("", "/menu")
	both := s.Score("", "/menu/menu.html")
	// identical hint sets fire for each href, only path occurrences differ
	assert.Equal(t, one, both)
}

func TestScore_CaseFolded(t *testing.T) {
	s := NewScorer(nil)
	assert.Equal(t, s.Score("our menu", "/menu"), s.Score("OUR MENU", "/MENU"))
}

func TestScore_FixtureTables(t *testing.T) {
	s := NewScorer(&Heuristics{
		PositiveHints: []string{"carta"},
		NegativeHints: []string{"empleo"},
	})

	assert.Equal(t, 2, s.Score("Carta", "/carta"))
	assert.Equal(t, -3, s.Score("Empleo", "/empleo"))
}

func TestIsExternalHost(t *testing.T) {
	h := DefaultHeuristics()

	assert.True(t, h.IsExternalHost("toasttab.com"))
	assert.True(t, h.IsExternalHost("order.toasttab.com"))
	assert.True(t, h.IsExternalHost("WWW.DOORDASH.COM"))
	assert.False(t, h.IsExternalHost("nottoasttab.com"))
	assert.False(t, h.IsExternalHost("example.com"))
	assert.False(t, h.IsExternalHost(""))
}
