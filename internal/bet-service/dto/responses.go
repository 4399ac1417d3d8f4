package dto

import (
	"github.com/radieske/squares-wager-platform/internal/wager"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

type CapDetails struct {
	Payout   string `json:"payout"`
	Cap      string `json:"cap"`
	MaxWager string `json:"maxWager"`
}

type OddsMovedDetails struct {
	Quoted  int `json:"quoted"`
	Current int `json:"current"`
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type BetListResponse struct {
	GameID string      `json:"gameId"`
	Count  int         `json:"count"`
	Bets   []wager.Bet `json:"bets"`
}

type ParlayPreviewResponse struct {
	wager.ParlayQuote
	WithinCap bool `json:"withinCap"`
}
