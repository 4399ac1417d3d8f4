package wager

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Publisher recebe as mudanças de estado das apostas (Kafka em produção).
type Publisher interface {
	PublishBetPlaced(ctx context.Context, b Bet) error
	PublishBetStatusChanged(ctx context.Context, b Bet, from Status) error
}

type NopPublisher struct{}

func (NopPublisher) PublishBetPlaced(context.Context, Bet) error                 { return nil }
func (NopPublisher) PublishBetStatusChanged(context.Context, Bet, Status) error { return nil }

// Hooks são callbacks opcionais para métricas.
type Hooks struct {
	OnPlaced   func(kind Kind)
	OnSettled  func(status Status)
	OnRejected func(code string)
}

// Service orquestra o ciclo de vida das apostas sobre um Store.
type Service struct {
	log   *zap.Logger
	store Store
	publ  Publisher

	Hooks Hooks
	Now   func() time.Time
	NewID func() string
}

func NewService(log *zap.Logger, store Store, publ Publisher) *Service {
	if publ == nil {
		publ = NopPublisher{}
	}
	return &Service{
		log:   log,
		store: store,
		publ:  publ,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// PlaceBet valida o pedido e grava a aposta como pending.
func (s *Service) PlaceBet(ctx context.Context, req PlaceRequest) (Bet, error) {
	g, err := s.store.Game(ctx, req.GameID)
	if err != nil {
		return Bet{}, s.reject(err)
	}
	b, err := NewBet(g, req, s.NewID(), s.Now())
	if err != nil {
		return Bet{}, s.reject(err)
	}
	if err := s.store.InsertBet(ctx, b); err != nil {
		return Bet{}, s.reject(err)
	}

	s.log.Info("bet placed",
		zap.String("bet_id", b.ID),
		zap.String("game_id", b.GameID),
		zap.String("player_id", b.PlayerID),
		zap.String("type", string(b.Kind)),
		zap.String("wager", b.Wager.String()),
		zap.String("potential_payout", b.PotentialPayout.String()),
	)
	if s.Hooks.OnPlaced != nil {
		s.Hooks.OnPlaced(b.Kind)
	}
	// falha de publicação não desfaz a aposta
	if err := s.publ.PublishBetPlaced(ctx, b); err != nil {
		s.log.Warn("publish bet placed", zap.String("bet_id", b.ID), zap.Error(err))
	}
	return b, nil
}

// SettleBet move uma aposta pending para o resultado informado.
func (s *Service) SettleBet(ctx context.Context, betID string, outcome Status) (Bet, error) {
	if !outcome.IsOutcome() {
		return Bet{}, s.reject(outcomeError(string(outcome)))
	}
	now := s.Now()
	b, err := s.store.UpdateBet(ctx, betID, func(b *Bet) error {
		return b.transition(outcome, now)
	})
	if err != nil {
		return Bet{}, s.reject(err)
	}
	s.changed(ctx, b, StatusPending)
	return b, nil
}

// CancelBet cancela a aposta; só o dono pode, e só enquanto pending.
func (s *Service) CancelBet(ctx context.Context, betID, playerID string) (Bet, error) {
	now := s.Now()
	b, err := s.store.UpdateBet(ctx, betID, func(b *Bet) error {
		if b.PlayerID != playerID {
			return ErrForbidden
		}
		return b.transition(StatusCancelled, now)
	})
	if err != nil {
		return Bet{}, s.reject(err)
	}
	s.changed(ctx, b, StatusPending)
	return b, nil
}

// BulkResult informa exatamente quais apostas mudaram de estado.
type BulkResult struct {
	GameID  string   `json:"gameId"`
	Outcome Status   `json:"outcome"`
	Count   int      `json:"count"`
	BetIDs  []string `json:"betIds"`
}

// BulkSettle aplica outcome a todas as apostas pending do jogo, tudo ou nada.
func (s *Service) BulkSettle(ctx context.Context, gameID string, outcome Status) (BulkResult, error) {
	if !outcome.IsOutcome() {
		return BulkResult{}, s.reject(outcomeError(string(outcome)))
	}
	now := s.Now()
	bets, err := s.store.UpdatePendingBets(ctx, gameID, func(b *Bet) error {
		return b.transition(outcome, now)
	})
	if err != nil {
		return BulkResult{}, s.reject(err)
	}

	res := BulkResult{GameID: gameID, Outcome: outcome, Count: len(bets), BetIDs: make([]string, 0, len(bets))}
	for _, b := range bets {
		res.BetIDs = append(res.BetIDs, b.ID)
		s.changed(ctx, b, StatusPending)
	}
	s.log.Info("bulk settle", zap.String("game_id", gameID), zap.String("outcome", string(outcome)), zap.Int("count", res.Count))
	return res, nil
}

func (s *Service) GetBet(ctx context.Context, betID string) (Bet, error) {
	return s.store.Bet(ctx, betID)
}

// BetFilter filtra a listagem; campos vazios não filtram.
type BetFilter struct {
	PlayerID string
	Status   Status
}

func (s *Service) ListBets(ctx context.Context, gameID string, f BetFilter) ([]Bet, error) {
	bets, err := s.store.ListBets(ctx, gameID)
	if err != nil {
		return nil, err
	}
	out := bets[:0]
	for _, b := range bets {
		if f.PlayerID != "" && b.PlayerID != f.PlayerID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Service) GameStats(ctx context.Context, gameID string) (GameStats, error) {
	bets, err := s.store.ListBets(ctx, gameID)
	if err != nil {
		return GameStats{}, err
	}
	return ComputeGameStats(gameID, bets), nil
}

// PreviewParlay cota as pernas contra o teto de parlay do jogo sem gravar nada.
func (s *Service) PreviewParlay(ctx context.Context, gameID string, legs []Leg, wager decimal.Decimal) (ParlayQuote, error) {
	g, err := s.store.Game(ctx, gameID)
	if err != nil {
		return ParlayQuote{}, err
	}
	return CheckParlay(legs, wager, g.MaxPayoutParlay)
}

func (s *Service) changed(ctx context.Context, b Bet, from Status) {
	s.log.Info("bet status changed",
		zap.String("bet_id", b.ID),
		zap.String("game_id", b.GameID),
		zap.String("from", string(from)),
		zap.String("to", string(b.Status)),
	)
	if s.Hooks.OnSettled != nil {
		s.Hooks.OnSettled(b.Status)
	}
	if err := s.publ.PublishBetStatusChanged(ctx, b, from); err != nil {
		s.log.Warn("publish bet status changed", zap.String("bet_id", b.ID), zap.Error(err))
	}
}

func (s *Service) reject(err error) error {
	if s.Hooks.OnRejected != nil {
		s.Hooks.OnRejected(Code(err))
	}
	return err
}
