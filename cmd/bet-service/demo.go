package main

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

// demoGame monta um jogo de exemplo para STORE=memory: grade de 100 quadrados
// parcialmente vendida, Q1 encerrado e tetos padrão de pagamento.
func demoGame() wager.Game {
	owners := []string{"AB", "CD", "EF", "GH", "JK"}
	squares := make([]*string, 100)
	for i := 0; i < 80; i++ {
		o := owners[i%len(owners)]
		squares[i] = &o
	}

	pot := decimal.NewFromInt(80) // 80 quadrados vendidos a 1.00
	dist := map[string]decimal.Decimal{
		"q1": decimal.RequireFromString("0.2"),
		"q2": decimal.RequireFromString("0.2"),
		"q3": decimal.RequireFromString("0.2"),
		"q4": decimal.RequireFromString("0.4"),
	}
	quarters := make(map[string]wager.Quarter, len(dist))
	for q, share := range dist {
		quarters[q] = wager.Quarter{Prize: pot.Mul(share)}
	}
	q1 := quarters["q1"]
	q1.Completed = true
	q1.Winner = &wager.QuarterWinner{Player: "CD"}
	quarters["q1"] = q1

	return wager.Game{
		ID:                "demo",
		Name:              "Super Bowl (demo)",
		BetAmount:         decimal.NewFromInt(1),
		PrizeDistribution: dist,
		MaxPayoutStraight: decimal.NewFromInt(500),
		MaxPayoutParlay:   decimal.NewFromInt(2500),
		Squares:           squares,
		Quarters:          quarters,
	}
}
