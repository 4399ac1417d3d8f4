package wager

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/squares-wager-platform/pkg/oddsmath"
)

// PlaceRequest é o pedido de aposta. Sem Legs a aposta é straight.
type PlaceRequest struct {
	GameID         string
	PlayerID       string
	PlayerInitials string
	Description    string
	Wager          decimal.Decimal
	Selection      *Selection
	Legs           []Leg
}

// NewBet valida o pedido contra o jogo e devolve a aposta pendente com o
// payout congelado. Não toca em armazenamento.
func NewBet(g Game, req PlaceRequest, id string, now time.Time) (Bet, error) {
	if strings.TrimSpace(req.PlayerID) == "" {
		return Bet{}, invalid("playerId is required")
	}
	if req.Wager.LessThan(MinWager) {
		return Bet{}, invalid("wager %s below minimum %s", req.Wager, MinWager.StringFixed(2))
	}
	if !req.Wager.Equal(req.Wager.Round(2)) {
		return Bet{}, invalid("wager %s has fractions of a cent", req.Wager)
	}

	b := Bet{
		ID:             id,
		GameID:         g.ID,
		PlayerID:       req.PlayerID,
		PlayerInitials: strings.TrimSpace(req.PlayerInitials),
		Description:    strings.TrimSpace(req.Description),
		Wager:          req.Wager,
		Status:         StatusPending,
		PlacedAt:       now.UTC(),
	}

	switch {
	case len(req.Legs) > 0 && req.Selection != nil:
		return Bet{}, invalid("bet carries both a selection and legs")
	case len(req.Legs) > 0:
		legs := make([]Leg, len(req.Legs))
		for i, l := range req.Legs {
			l.Selection = l.Selection.clone()
			legs[i] = l
		}
		q, err := CheckParlay(legs, req.Wager, g.MaxPayoutParlay)
		if err != nil {
			return Bet{}, err
		}
		b.Kind = KindParlay
		b.ParlayTerms = &ParlayTerms{Legs: legs, CombinedOdds: q.CombinedOdds, CombinedDecimal: q.CombinedDecimal}
		b.PotentialPayout = q.PotentialPayout
	case req.Selection != nil:
		sel := req.Selection.clone()
		payout, err := checkStraight(sel, req.Wager, g.MaxPayoutStraight)
		if err != nil {
			return Bet{}, err
		}
		b.Kind = KindStraight
		b.Selection = &sel
		b.PotentialPayout = payout
	default:
		return Bet{}, invalid("bet needs a selection or legs")
	}

	if b.Description == "" {
		b.Description = Describe(b.Selection, req.Legs)
	}
	return b, nil
}

func checkStraight(sel Selection, wager, maxPayout decimal.Decimal) (decimal.Decimal, error) {
	if err := sel.check(); err != nil {
		return decimal.Zero, invalid("selection: %s", err)
	}
	raw, err := oddsmath.Payout(sel.Odds, wager)
	if err != nil {
		return decimal.Zero, invalid("selection: %s", err)
	}
	payout := raw.Round(2)
	if maxPayout.IsPositive() && payout.GreaterThan(maxPayout) {
		maxWager, _ := oddsmath.MaxWagerForPayoutCap(sel.Odds, maxPayout)
		return decimal.Zero, &CapError{Payout: payout, Cap: maxPayout, MaxWager: maxWager}
	}
	return payout, nil
}
