package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

// Service liga o agregador às fontes de jogos e de marcadores.
type Service struct {
	log     *zap.Logger
	games   wager.GameSource
	markers MarkerStore
	agg     Aggregator

	Now func() time.Time
}

func NewService(log *zap.Logger, games wager.GameSource, markers MarkerStore, agg Aggregator) *Service {
	return &Service{log: log, games: games, markers: markers, agg: agg, Now: time.Now}
}

func (s *Service) Report(ctx context.Context) (Report, error) {
	games, err := s.games.Games(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load games: %w", err)
	}
	markers, err := s.markers.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load markers: %w", err)
	}
	return s.agg.Aggregate(games, markers), nil
}

// Mark registra o acerto de um jogador conhecido. Sem amount, grava o
// totalNet atual do jogador.
func (s *Service) Mark(ctx context.Context, initials string, amount *decimal.Decimal) (Marker, error) {
	if strings.TrimSpace(initials) == "" {
		return Marker{}, fmt.Errorf("%w: initials required", ErrInvalidMarker)
	}
	id := s.agg.identity(initials)

	// o jogador precisa aparecer em algum jogo, mesmo com amount explícito
	rep, err := s.Report(ctx)
	if err != nil {
		return Marker{}, err
	}
	row, ok := rep.Row(id)
	if !ok {
		return Marker{}, fmt.Errorf("player %s: %w", id, wager.ErrNotFound)
	}

	m := Marker{Initials: id, Amount: row.TotalNet, SettledAt: s.Now().UTC()}
	if amount != nil {
		m.Amount = *amount
	}

	if err := s.markers.Mark(ctx, m); err != nil {
		return Marker{}, fmt.Errorf("mark %s: %w", id, err)
	}
	s.log.Info("player marked settled", zap.String("initials", string(id)), zap.String("amount", m.Amount.String()))
	return m, nil
}

func (s *Service) Unmark(ctx context.Context, initials string) error {
	id := s.agg.identity(initials)
	if err := s.markers.Unmark(ctx, id); err != nil {
		return fmt.Errorf("unmark %s: %w", id, err)
	}
	s.log.Info("player unmarked", zap.String("initials", string(id)))
	return nil
}

// Row procura a linha de um jogador no relatório.
func (r Report) Row(id Identity) (Row, bool) {
	for _, row := range r.Rows {
		if row.Initials == id {
			return row, true
		}
	}
	return Row{}, false
}
