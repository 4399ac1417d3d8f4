package dto

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

type SelectionRequest struct {
	Market  string   `json:"market" validate:"required"`
	Outcome string   `json:"outcome" validate:"required"`
	Odds    int      `json:"odds" validate:"required"` // americana, nunca 0
	Point   *float64 `json:"point,omitempty"`
}

type LegRequest struct {
	SelectionRequest
	Source      string `json:"source,omitempty" validate:"omitempty,oneof=game prop"`
	Player      string `json:"player,omitempty" validate:"required_if=Source prop"`
	Description string `json:"description,omitempty" validate:"max=200"`
}

// PlaceBetRequest: sem legs a aposta é straight e exige selection.
type PlaceBetRequest struct {
	PlayerID       string            `json:"playerId" validate:"required"`
	PlayerInitials string            `json:"playerInitials" validate:"required,max=8"`
	Description    string            `json:"description,omitempty" validate:"max=200"`
	Wager          decimal.Decimal   `json:"wager"`
	Selection      *SelectionRequest `json:"selection,omitempty"`
	Legs           []LegRequest      `json:"legs,omitempty" validate:"omitempty,dive"`
}

type SettleRequest struct {
	Outcome string `json:"outcome"` // won | lost | push | void
}

type CancelRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
}

type ParlayPreviewRequest struct {
	Wager decimal.Decimal `json:"wager"`
	Legs  []LegRequest    `json:"legs" validate:"dive"`
}

// MarkSettledRequest: sem amount, grava o saldo atual do jogador.
type MarkSettledRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

func (s SelectionRequest) ToSelection() wager.Selection {
	return wager.Selection{Market: s.Market, Outcome: s.Outcome, Odds: s.Odds, Point: s.Point}
}

func ToLegs(in []LegRequest) []wager.Leg {
	if len(in) == 0 {
		return nil
	}
	out := make([]wager.Leg, len(in))
	for i, l := range in {
		out[i] = wager.Leg{
			Selection:   l.ToSelection(),
			Source:      wager.LegSource(l.Source),
			Player:      l.Player,
			Description: l.Description,
		}
	}
	return out
}

func (r PlaceBetRequest) ToPlaceRequest(gameID string) wager.PlaceRequest {
	req := wager.PlaceRequest{
		GameID:         gameID,
		PlayerID:       r.PlayerID,
		PlayerInitials: r.PlayerInitials,
		Description:    r.Description,
		Wager:          r.Wager,
		Legs:           ToLegs(r.Legs),
	}
	if r.Selection != nil {
		sel := r.Selection.ToSelection()
		req.Selection = &sel
	}
	return req
}
