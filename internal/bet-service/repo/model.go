package repo

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

const betColumns = `id, game_id, player_id, player_initials, type, description, selection, legs,
	combined_odds, combined_decimal, wager, potential_payout, status, placed_at, settled_at`

const gameColumns = `id, name, bet_amount, prize_distribution, max_payout_straight, max_payout_parlay, squares, quarters`

type scanner interface {
	Scan(dest ...any) error
}

// scanBet lê uma linha de bets e remonta a variante straight/parlay.
func scanBet(s scanner) (wager.Bet, error) {
	var (
		b         wager.Bet
		kind      string
		status    string
		selection []byte
		legs      []byte
		combined  sql.NullInt64
		combinedD decimal.NullDecimal
		settledAt sql.NullTime
	)
	if err := s.Scan(&b.ID, &b.GameID, &b.PlayerID, &b.PlayerInitials, &kind, &b.Description,
		&selection, &legs, &combined, &combinedD, &b.Wager, &b.PotentialPayout, &status, &b.PlacedAt, &settledAt); err != nil {
		return wager.Bet{}, err
	}
	b.Kind = wager.Kind(kind)
	b.Status = wager.Status(status)
	b.PlacedAt = b.PlacedAt.UTC()
	if settledAt.Valid {
		t := settledAt.Time.UTC()
		b.SettledAt = &t
	}

	switch b.Kind {
	case wager.KindParlay:
		terms := &wager.ParlayTerms{CombinedOdds: int(combined.Int64), CombinedDecimal: combinedD.Decimal}
		if err := json.Unmarshal(legs, &terms.Legs); err != nil {
			return wager.Bet{}, fmt.Errorf("bet %s legs: %w", b.ID, err)
		}
		b.ParlayTerms = terms
	default:
		var sel wager.Selection
		if err := json.Unmarshal(selection, &sel); err != nil {
			return wager.Bet{}, fmt.Errorf("bet %s selection: %w", b.ID, err)
		}
		b.Selection = &sel
	}
	// linha inconsistente é erro interno, não erro do cliente
	if err := b.Validate(); err != nil {
		return wager.Bet{}, fmt.Errorf("bet %s: malformed row: %v", b.ID, err)
	}
	return b, nil
}

// betArgs devolve os valores na ordem de betColumns.
func betArgs(b wager.Bet) ([]any, error) {
	var (
		selection, legs any
		combined        any
		combinedD       any
		settledAt       any
	)
	switch b.Kind {
	case wager.KindParlay:
		raw, err := json.Marshal(b.Legs)
		if err != nil {
			return nil, err
		}
		legs = raw
		combined = b.CombinedOdds
		combinedD = b.CombinedDecimal
	default:
		raw, err := json.Marshal(b.Selection)
		if err != nil {
			return nil, err
		}
		selection = raw
	}
	if b.SettledAt != nil {
		settledAt = *b.SettledAt
	}
	return []any{b.ID, b.GameID, b.PlayerID, b.PlayerInitials, string(b.Kind), b.Description, selection, legs,
		combined, combinedD, b.Wager, b.PotentialPayout, string(b.Status), b.PlacedAt, settledAt}, nil
}

func scanGame(s scanner) (wager.Game, error) {
	var (
		g                        wager.Game
		prizes, squares, quarter []byte
	)
	if err := s.Scan(&g.ID, &g.Name, &g.BetAmount, &prizes, &g.MaxPayoutStraight, &g.MaxPayoutParlay, &squares, &quarter); err != nil {
		return wager.Game{}, err
	}
	for _, f := range []struct {
		raw  []byte
		dst  any
		name string
	}{
		{prizes, &g.PrizeDistribution, "prize_distribution"},
		{squares, &g.Squares, "squares"},
		{quarter, &g.Quarters, "quarters"},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return wager.Game{}, fmt.Errorf("game %s %s: %w", g.ID, f.name, err)
		}
	}
	return g, nil
}
