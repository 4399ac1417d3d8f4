package wager

import (
	"context"
	"fmt"
	"sync"
)

// Store é a persistência de jogos e apostas. UpdateBet e UpdatePendingBets
// executam fn como read-modify-write atômico: se fn falhar nada é gravado.
type Store interface {
	Game(ctx context.Context, gameID string) (Game, error)
	InsertBet(ctx context.Context, b Bet) error
	Bet(ctx context.Context, betID string) (Bet, error)
	ListBets(ctx context.Context, gameID string) ([]Bet, error)
	UpdateBet(ctx context.Context, betID string, fn func(*Bet) error) (Bet, error)
	UpdatePendingBets(ctx context.Context, gameID string, fn func(*Bet) error) ([]Bet, error)
}

// GameSource carrega todos os jogos com grade, períodos e apostas.
type GameSource interface {
	Games(ctx context.Context) ([]Game, error)
}

// MemStore guarda tudo em memória sob um único mutex. Usado em dev local
// (STORE=memory) e nos testes.
type MemStore struct {
	mu     sync.Mutex
	games  map[string]Game
	order  []string
	bets   map[string]Bet
	byGame map[string][]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		games:  make(map[string]Game),
		bets:   make(map[string]Bet),
		byGame: make(map[string][]string),
	}
}

// PutGame cria ou substitui a configuração do jogo. Apostas em g.Bets são
// inseridas; ids já conhecidos são ignorados.
func (m *MemStore) PutGame(g Game) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bets := g.Bets
	g.Bets = nil
	if _, ok := m.games[g.ID]; !ok {
		m.order = append(m.order, g.ID)
	}
	m.games[g.ID] = g
	for _, b := range bets {
		if _, ok := m.bets[b.ID]; ok {
			continue
		}
		b.GameID = g.ID
		m.insert(b.Clone())
	}
}

func (m *MemStore) Game(_ context.Context, gameID string) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return Game{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return g, nil
}

func (m *MemStore) Games(_ context.Context) ([]Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Game, 0, len(m.order))
	for _, id := range m.order {
		g := m.games[id]
		g.Bets = m.list(id)
		out = append(out, g)
	}
	return out, nil
}

func (m *MemStore) InsertBet(_ context.Context, b Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[b.GameID]; !ok {
		return fmt.Errorf("game %s: %w", b.GameID, ErrNotFound)
	}
	if _, dup := m.bets[b.ID]; dup {
		return fmt.Errorf("bet %s already exists", b.ID)
	}
	m.insert(b.Clone())
	return nil
}

func (m *MemStore) insert(b Bet) {
	m.bets[b.ID] = b
	m.byGame[b.GameID] = append(m.byGame[b.GameID], b.ID)
}

func (m *MemStore) Bet(_ context.Context, betID string) (Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bets[betID]
	if !ok {
		return Bet{}, fmt.Errorf("bet %s: %w", betID, ErrNotFound)
	}
	return b.Clone(), nil
}

func (m *MemStore) ListBets(_ context.Context, gameID string) ([]Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return m.list(gameID), nil
}

func (m *MemStore) list(gameID string) []Bet {
	ids := m.byGame[gameID]
	out := make([]Bet, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.bets[id].Clone())
	}
	return out
}

func (m *MemStore) UpdateBet(_ context.Context, betID string, fn func(*Bet) error) (Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bets[betID]
	if !ok {
		return Bet{}, fmt.Errorf("bet %s: %w", betID, ErrNotFound)
	}
	next := cur.Clone()
	if err := fn(&next); err != nil {
		return Bet{}, err
	}
	m.bets[betID] = next
	return next.Clone(), nil
}

func (m *MemStore) UpdatePendingBets(_ context.Context, gameID string, fn func(*Bet) error) ([]Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	// aplica em cópias e só grava se todas passarem
	var changed []Bet
	for _, id := range m.byGame[gameID] {
		b := m.bets[id]
		if b.Status != StatusPending {
			continue
		}
		next := b.Clone()
		if err := fn(&next); err != nil {
			return nil, fmt.Errorf("bet %s: %w", id, err)
		}
		changed = append(changed, next)
	}
	for _, b := range changed {
		m.bets[b.ID] = b
	}
	out := make([]Bet, len(changed))
	for i, b := range changed {
		out[i] = b.Clone()
	}
	return out, nil
}
