package settlement

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMarkerNotFound = errors.New("settlement marker not found")
	ErrInvalidMarker  = errors.New("invalid settlement marker")
)

// Marker registra que o saldo de um jogador foi pago ou recebido.
// É um reconhecimento pontual: o jogo pode continuar mudando depois.
type Marker struct {
	Initials  Identity        `json:"initials"`
	Amount    decimal.Decimal `json:"amount"`
	SettledAt time.Time       `json:"settledAt"`
}

type MarkerStore interface {
	Mark(ctx context.Context, m Marker) error
	Unmark(ctx context.Context, id Identity) error
	List(ctx context.Context) (map[Identity]Marker, error)
}

// MemMarkers é o MarkerStore em memória (STORE=memory e testes).
type MemMarkers struct {
	mu sync.Mutex
	m  map[Identity]Marker
}

func NewMemMarkers() *MemMarkers {
	return &MemMarkers{m: make(map[Identity]Marker)}
}

func (s *MemMarkers) Mark(_ context.Context, m Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[m.Initials] = m
	return nil
}

func (s *MemMarkers) Unmark(_ context.Context, id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return ErrMarkerNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *MemMarkers) List(_ context.Context) (map[Identity]Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Identity]Marker, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out, nil
}
