package ws

import "encoding/json"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// GameID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type   string `json:"type"`   // subscribe | unsubscribe | ping
	GameID string `json:"gameId"` // requerido em subscribe/unsubscribe
}

// LedgerUpdate é o snapshot do ledger de um jogo enviado aos telões.
// Payload segue opaco: o hub só repassa o JSON recebido do ledger-worker.
type LedgerUpdate struct {
	GameID  string          `json:"gameId"`
	Payload json.RawMessage `json:"payload"`
}
