// Package oddsmath concentra a matemática de odds usada pelo motor de apostas:
// conversão americana <-> decimal, cálculo de retorno e limites de aposta.
//
// Todas as funções são puras. Valores monetários e odds decimais usam
// decimal.Decimal para evitar deriva de ponto flutuante; o arredondamento para
// centavos acontece só nas bordas (payout final e aposta máxima).
package oddsmath

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrZeroOdds       = errors.New("invalid american odds: cannot be 0")
	ErrInvalidDecimal = errors.New("invalid decimal odds: must be > 1.0")
	ErrNoLegs         = errors.New("parlay odds require at least one leg")
	ErrOddsOutOfRange = errors.New("american odds out of range")
)

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
	maxOdds = decimal.NewFromInt(math.MaxInt32)
	cent    = decimal.New(1, -2)
)

// AmericanToDecimal converte odds americanas em decimais.
// +150 -> 2.50, -110 -> 1.9090...
func AmericanToDecimal(american int) (decimal.Decimal, error) {
	if american == 0 {
		return decimal.Zero, ErrZeroOdds
	}
	a := decimal.NewFromInt(int64(american))
	if american < 0 {
		return one.Add(hundred.Div(a.Abs())), nil
	}
	return one.Add(a.Div(hundred)), nil
}

// DecimalToAmerican converte odds decimais em americanas, arredondando para o
// inteiro mais próximo. Odds decimais muito próximas de 1 geram favoritos com
// magnitude enorme; exatamente 1 (ou menos) é erro, assim como resultados
// além de ±MaxInt32.
func DecimalToAmerican(d decimal.Decimal) (int, error) {
	if d.LessThanOrEqual(one) {
		return 0, ErrInvalidDecimal
	}
	profit := d.Sub(one)
	var american decimal.Decimal
	if d.GreaterThanOrEqual(two) {
		american = profit.Mul(hundred).Round(0)
	} else {
		american = hundred.Neg().Div(profit).Round(0)
	}
	// odds americanas cabem em int32 (coluna INTEGER)
	if american.Abs().GreaterThan(maxOdds) {
		return 0, ErrOddsOutOfRange
	}
	return int(american.IntPart()), nil
}

// Payout retorna apenas o lucro (sem devolver a aposta) em precisão total.
func Payout(american int, wager decimal.Decimal) (decimal.Decimal, error) {
	if american == 0 {
		return decimal.Zero, ErrZeroOdds
	}
	a := decimal.NewFromInt(int64(american))
	if american < 0 {
		return wager.Mul(hundred).Div(a.Abs()), nil
	}
	return wager.Mul(a).Div(hundred), nil
}

// MaxWagerForPayoutCap devolve a maior aposta, em centavos, cujo lucro fica
// estritamente abaixo de maxPayout.
func MaxWagerForPayoutCap(american int, maxPayout decimal.Decimal) (decimal.Decimal, error) {
	if american == 0 {
		return decimal.Zero, ErrZeroOdds
	}
	if !maxPayout.IsPositive() {
		return decimal.Zero, nil
	}
	a := decimal.NewFromInt(int64(american))
	var w decimal.Decimal
	if american < 0 {
		w = maxPayout.Mul(a.Abs()).Div(hundred)
	} else {
		w = maxPayout.Mul(hundred).Div(a)
	}
	w = w.RoundFloor(2)

	// o floor pode cair exatamente no teto (ex.: -100 com teto 100)
	if p, _ := Payout(american, w); p.GreaterThanOrEqual(maxPayout) {
		w = w.Sub(cent)
	}
	if w.IsNegative() {
		return decimal.Zero, nil
	}
	return w, nil
}
