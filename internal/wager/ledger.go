package wager

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PlayerStats é o resumo de um jogador dentro de um jogo.
type PlayerStats struct {
	PlayerID     string          `json:"playerId"`
	Initials     string          `json:"initials"`
	TotalBets    int             `json:"totalBets"`
	Pending      int             `json:"pending"`
	TotalWagered decimal.Decimal `json:"totalWagered"`
	TotalWon     decimal.Decimal `json:"totalWon"`
	TotalLost    decimal.Decimal `json:"totalLost"`
	Net          decimal.Decimal `json:"net"`
}

// GameStats é o ledger da casa para um jogo, sempre recalculado das apostas.
type GameStats struct {
	GameID                string          `json:"gameId"`
	TotalBets             int             `json:"totalBets"`
	ByStatus              map[Status]int  `json:"byStatus"`
	TotalWagered          decimal.Decimal `json:"totalWagered"`
	TotalPendingLiability decimal.Decimal `json:"totalPendingLiability"`
	HouseProfit           decimal.Decimal `json:"houseProfit"`
	Players               []PlayerStats   `json:"players"`
}

// ComputeGameStats agrega as apostas de um jogo. push, void e cancelled
// não entram em apostado, lucro da casa nem no net do jogador.
func ComputeGameStats(gameID string, bets []Bet) GameStats {
	st := GameStats{
		GameID:                gameID,
		ByStatus:              make(map[Status]int),
		TotalWagered:          decimal.Zero,
		TotalPendingLiability: decimal.Zero,
		HouseProfit:           decimal.Zero,
	}

	players := make(map[string]*PlayerStats)
	for _, b := range bets {
		st.TotalBets++
		st.ByStatus[b.Status]++

		p, ok := players[b.PlayerID]
		if !ok {
			p = &PlayerStats{
				PlayerID:     b.PlayerID,
				Initials:     b.PlayerInitials,
				TotalWagered: decimal.Zero,
				TotalWon:     decimal.Zero,
				TotalLost:    decimal.Zero,
			}
			players[b.PlayerID] = p
		}
		p.TotalBets++

		if b.Status.AtRisk() {
			st.TotalWagered = st.TotalWagered.Add(b.Wager)
			p.TotalWagered = p.TotalWagered.Add(b.Wager)
		}
		switch b.Status {
		case StatusPending:
			st.TotalPendingLiability = st.TotalPendingLiability.Add(b.PotentialPayout)
			p.Pending++
		case StatusWon:
			st.HouseProfit = st.HouseProfit.Sub(b.PotentialPayout)
			p.TotalWon = p.TotalWon.Add(b.PotentialPayout)
		case StatusLost:
			st.HouseProfit = st.HouseProfit.Add(b.Wager)
			p.TotalLost = p.TotalLost.Add(b.Wager)
		}
	}

	st.Players = make([]PlayerStats, 0, len(players))
	for _, p := range players {
		p.Net = p.TotalWon.Sub(p.TotalLost)
		st.Players = append(st.Players, *p)
	}
	sort.Slice(st.Players, func(i, j int) bool {
		if st.Players[i].Initials != st.Players[j].Initials {
			return st.Players[i].Initials < st.Players[j].Initials
		}
		return st.Players[i].PlayerID < st.Players[j].PlayerID
	})
	return st
}
