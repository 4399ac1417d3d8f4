package oddsmath

import "github.com/shopspring/decimal"

// CombineParlayDecimalOdds multiplica as odds decimais de cada perna.
// Exige ao menos um elemento; quem chama é responsável por rejeitar parlays
// com menos de duas pernas.
func CombineParlayDecimalOdds(legs []int) (decimal.Decimal, error) {
	if len(legs) == 0 {
		return decimal.Zero, ErrNoLegs
	}
	combined := one
	for _, american := range legs {
		d, err := AmericanToDecimal(american)
		if err != nil {
			return decimal.Zero, err
		}
		combined = combined.Mul(d)
	}
	return combined, nil
}

// CombineParlayAmericanOdds é a mesma combinação expressa em odds americanas.
func CombineParlayAmericanOdds(legs []int) (int, decimal.Decimal, error) {
	combined, err := CombineParlayDecimalOdds(legs)
	if err != nil {
		return 0, decimal.Zero, err
	}
	american, err := DecimalToAmerican(combined)
	if err != nil {
		return 0, decimal.Zero, err
	}
	return american, combined, nil
}

// ParlayPayout retorna o lucro de um parlay: wager * (decimal - 1).
func ParlayPayout(combinedDecimal, wager decimal.Decimal) decimal.Decimal {
	return wager.Mul(combinedDecimal.Sub(one))
}

// MaxWagerForParlay aplica a mesma regra de teto de MaxWagerForPayoutCap sobre
// o lucro combinado. Odds combinadas degeneradas (lucro <= 0) retornam zero.
func MaxWagerForParlay(combinedDecimal, maxPayout decimal.Decimal) decimal.Decimal {
	profit := combinedDecimal.Sub(one)
	if !profit.IsPositive() || !maxPayout.IsPositive() {
		return decimal.Zero
	}
	w := maxPayout.Div(profit).RoundFloor(2)
	if w.Mul(profit).GreaterThanOrEqual(maxPayout) {
		w = w.Sub(cent)
	}
	if w.IsNegative() {
		return decimal.Zero
	}
	return w
}
