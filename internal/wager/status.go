package wager

import (
	"fmt"
	"strings"
)

// Status é o estado de uma aposta. pending é o único estado não terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusPush      Status = "push"
	StatusVoid      Status = "void"
	StatusCancelled Status = "cancelled"
)

// transitions lista, por estado de origem, os destinos permitidos.
// Estados terminais não têm saída.
var transitions = map[Status][]Status{
	StatusPending: {StatusWon, StatusLost, StatusPush, StatusVoid, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusWon, StatusLost, StatusPush, StatusVoid, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool { return s.Valid() && s != StatusPending }

// IsOutcome indica se o status pode ser usado como resultado de settle.
func (s Status) IsOutcome() bool {
	switch s {
	case StatusWon, StatusLost, StatusPush, StatusVoid:
		return true
	}
	return false
}

// AtRisk indica se o valor apostado conta como dinheiro em risco no ledger da casa.
// push, void e cancelled devolvem a aposta e ficam de fora.
func (s Status) AtRisk() bool {
	switch s {
	case StatusPending, StatusWon, StatusLost:
		return true
	}
	return false
}

func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ParseOutcome valida o resultado recebido em settle.
func ParseOutcome(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsOutcome() {
		return "", outcomeError(raw)
	}
	return s, nil
}

func outcomeError(raw string) error {
	return fmt.Errorf("%w: %q (want won, lost, push or void)", ErrInvalidOutcome, raw)
}
