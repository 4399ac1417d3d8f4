package wager

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidBet        = errors.New("invalid bet")
	ErrNeedMoreLegs      = errors.New("add more legs: parlay needs at least 2")
	ErrPayoutCapExceeded = errors.New("payout cap exceeded")
	ErrNotFound          = errors.New("not found")
	ErrAlreadySettled    = errors.New("bet already settled")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidOutcome    = errors.New("invalid outcome")
)

// CapError carrega o detalhe necessário para o cliente reduzir a aposta.
type CapError struct {
	Payout   decimal.Decimal
	Cap      decimal.Decimal
	MaxWager decimal.Decimal
}

func (e *CapError) Error() string {
	return fmt.Sprintf("%s: payout %s over cap %s (max wager %s)",
		ErrPayoutCapExceeded, e.Payout.StringFixed(2), e.Cap.StringFixed(2), e.MaxWager.StringFixed(2))
}

func (e *CapError) Unwrap() error { return ErrPayoutCapExceeded }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidBet, fmt.Sprintf(format, args...))
}

func needMoreLegs(n int) error {
	return fmt.Errorf("%w: %w (got %d)", ErrInvalidBet, ErrNeedMoreLegs, n)
}

// Code traduz um erro do domínio em um código estável para API e métricas.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNeedMoreLegs):
		return "add_more_legs"
	case errors.Is(err, ErrInvalidBet):
		return "invalid_bet"
	case errors.Is(err, ErrPayoutCapExceeded):
		return "payout_cap_exceeded"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadySettled):
		return "already_settled"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidOutcome):
		return "invalid_outcome"
	default:
		return "internal"
	}
}
