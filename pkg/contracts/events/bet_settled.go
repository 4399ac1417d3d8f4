package events

import "time"

// Evento emitido pelo bet-service quando uma aposta sai de pending
// (settle, bulk settle ou cancelamento).
type BetSettled struct {
	BetID           string    `json:"bet_id"`
	GameID          string    `json:"game_id"`
	PlayerID        string    `json:"player_id"`
	PlayerInitials  string    `json:"player_initials"`
	From            string    `json:"from"`
	Status          string    `json:"status"` // "won" | "lost" | "push" | "void" | "cancelled"
	Wager           string    `json:"wager"`
	PotentialPayout string    `json:"potential_payout"`
	SettledAt       time.Time `json:"settled_at"`
	TsUnixMs        int64     `json:"ts_unix_ms"`
}
