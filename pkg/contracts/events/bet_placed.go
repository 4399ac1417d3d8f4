package events

// Valores monetários trafegam como string decimal ("12.50") para não perder precisão.
type BetPlaced struct {
	BetID           string `json:"bet_id"`
	GameID          string `json:"game_id"`
	PlayerID        string `json:"player_id"`
	PlayerInitials  string `json:"player_initials"`
	Type            string `json:"type"` // "straight" | "parlay"
	Description     string `json:"description"`
	Odds            int    `json:"odds"` // americanas; combinadas no parlay
	Legs            int    `json:"legs,omitempty"`
	Wager           string `json:"wager"`
	PotentialPayout string `json:"potential_payout"`
	TsUnixMs        int64  `json:"ts_unix_ms"`
}

// GameRef extrai só o jogo de qualquer evento de aposta; usado pelo ledger-worker.
type GameRef struct {
	GameID string `json:"game_id"`
}
