package wager

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/radieske/squares-wager-platform/pkg/oddsmath"
)

func (l Leg) source() LegSource {
	if l.Source == "" {
		return SourceGame
	}
	return l.Source
}

func (l Leg) line() string {
	if l.Point == nil {
		return ""
	}
	return formatPoint(*l.Point)
}

// LegKey identifica a perna: selecionar a mesma chave de novo desmarca.
func LegKey(l Leg) string {
	return strings.Join([]string{string(l.source()), l.Market, l.Player, l.Outcome, l.line()}, "|")
}

// ConflictGroup agrupa pernas mutuamente exclusivas.
// Odds de jogo conflitam por mercado; props por mercado + jogador + linha.
func ConflictGroup(l Leg) string {
	if l.source() == SourceProp {
		return strings.Join([]string{string(SourceProp), l.Market, l.Player, l.line()}, "|")
	}
	return strings.Join([]string{string(l.source()), l.Market}, "|")
}

// Toggle devolve o novo conjunto de pernas sem alterar current.
// Mesma identidade remove a perna; mesmo grupo de conflito é substituído.
func Toggle(current []Leg, candidate Leg) []Leg {
	key := LegKey(candidate)
	out := make([]Leg, 0, len(current)+1)

	removed := false
	for _, l := range current {
		if LegKey(l) == key {
			removed = true
			continue
		}
		out = append(out, l)
	}
	if removed {
		return out
	}

	group := ConflictGroup(candidate)
	kept := out[:0]
	for _, l := range out {
		if ConflictGroup(l) != group {
			kept = append(kept, l)
		}
	}
	return append(kept, candidate)
}

// ParlayQuote é o preço de um conjunto de pernas para uma aposta.
type ParlayQuote struct {
	Legs            int             `json:"legs"`
	CombinedOdds    int             `json:"combinedOdds"`
	CombinedDecimal decimal.Decimal `json:"combinedDecimal"`
	PotentialPayout decimal.Decimal `json:"potentialPayout"`
	MaxWager        decimal.Decimal `json:"maxWager,omitempty"`
}

// CheckParlay valida as pernas e calcula o payout congelado.
// Quando o teto estoura, a cotação volta preenchida junto com *CapError.
func CheckParlay(legs []Leg, wager, maxPayout decimal.Decimal) (ParlayQuote, error) {
	if len(legs) < 2 {
		return ParlayQuote{Legs: len(legs)}, needMoreLegs(len(legs))
	}

	seen := make(map[string]int, len(legs))
	odds := make([]int, 0, len(legs))
	for i, l := range legs {
		if err := l.Selection.check(); err != nil {
			return ParlayQuote{}, invalid("leg %d: %s", i+1, err)
		}
		if l.source() != SourceGame && l.source() != SourceProp {
			return ParlayQuote{}, invalid("leg %d: unknown source %q", i+1, l.Source)
		}
		if l.source() == SourceProp && l.Player == "" {
			return ParlayQuote{}, invalid("leg %d: prop leg needs a player", i+1)
		}
		g := ConflictGroup(l)
		if j, ok := seen[g]; ok {
			return ParlayQuote{}, invalid("legs %d and %d are mutually exclusive", j+1, i+1)
		}
		seen[g] = i
		odds = append(odds, l.Odds)
	}

	american, combined, err := oddsmath.CombineParlayAmericanOdds(odds)
	if err != nil {
		return ParlayQuote{}, invalid("combine odds: %s", err)
	}

	q := ParlayQuote{
		Legs:            len(legs),
		CombinedOdds:    american,
		CombinedDecimal: combined,
		PotentialPayout: oddsmath.ParlayPayout(combined, wager).Round(2),
	}
	if maxPayout.IsPositive() {
		q.MaxWager = oddsmath.MaxWagerForParlay(combined, maxPayout)
		if q.PotentialPayout.GreaterThan(maxPayout) {
			return q, &CapError{Payout: q.PotentialPayout, Cap: maxPayout, MaxWager: q.MaxWager}
		}
	}
	return q, nil
}

func (s Selection) check() error {
	switch {
	case strings.TrimSpace(s.Market) == "":
		return errors.New("market is required")
	case strings.TrimSpace(s.Outcome) == "":
		return errors.New("outcome is required")
	case s.Odds == 0:
		return oddsmath.ErrZeroOdds
	}
	return nil
}
