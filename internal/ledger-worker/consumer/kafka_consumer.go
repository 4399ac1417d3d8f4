package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/squares-wager-platform/internal/ledger-worker/pubsub"
	"github.com/radieske/squares-wager-platform/internal/wager"
	"github.com/radieske/squares-wager-platform/pkg/contracts/events"
)

// MessageReader é a parte do *kafka.Reader usada pelo loop
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// BetSource lista as apostas de um jogo (repo Postgres do bet-service)
type BetSource interface {
	ListBets(ctx context.Context, gameID string) ([]wager.Bet, error)
}

type LedgerCache interface {
	SetLedger(ctx context.Context, st wager.GameStats) error
}

type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome eventos de aposta, recalcula o ledger do jogo afetado,
// grava o snapshot no Redis e avisa o display-service via Pub/Sub.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log       *zap.Logger
	Reader    MessageReader
	Bets      BetSource
	Cache     LedgerCache
	Broadcast Broadcaster
	Channel   string

	OnConsumed  func(topic string) // métricas (counter++)
	OnCached    func()             // métricas
	OnBroadcast func()             // métricas
	OnError     func(string)       // métricas por fase

	// RetryDelay é a espera após falha de leitura do Kafka
	RetryDelay time.Duration
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	delay := p.RetryDelay
	if delay == 0 {
		delay = 500 * time.Millisecond
	}
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed(m.Topic) // callback de métrica: mensagem consumida
		}
		p.Handle(ctx, m.Value)
	}
}

// Handle processa um evento. Erros são logados e contados; a mensagem não é
// reprocessada porque o próximo evento do jogo recalcula tudo de novo.
func (p *Processor) Handle(ctx context.Context, value []byte) {
	var ref events.GameRef
	if err := json.Unmarshal(value, &ref); err != nil || ref.GameID == "" {
		p.Log.Warn("invalid message", zap.Error(err), zap.ByteString("value", value))
		p.fail("decode")
		return
	}

	bets, err := p.Bets.ListBets(ctx, ref.GameID)
	if err != nil {
		p.Log.Warn("load bets failed", zap.String("game_id", ref.GameID), zap.Error(err))
		p.fail("load")
		return
	}
	st := wager.ComputeGameStats(ref.GameID, bets)

	// cache e broadcast são independentes: falha de um não bloqueia o outro
	if err := p.Cache.SetLedger(ctx, st); err != nil {
		p.Log.Warn("redis set failed", zap.String("game_id", ref.GameID), zap.Error(err))
		p.fail("cache")
	} else if p.OnCached != nil {
		p.OnCached() // callback de métrica: cache atualizado
	}

	b, err := json.Marshal(pubsub.WSUpdate{GameID: ref.GameID, Payload: st})
	if err != nil {
		p.fail("encode")
		return
	}
	bctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := p.Broadcast.Publish(bctx, p.Channel, b); err != nil {
		p.Log.Warn("ws broadcast publish failed", zap.String("game_id", ref.GameID), zap.Error(err))
		p.fail("broadcast")
		return
	}
	if p.OnBroadcast != nil {
		p.OnBroadcast()
	}
	p.Log.Debug("ledger refreshed",
		zap.String("game_id", ref.GameID),
		zap.Int("total_bets", st.TotalBets),
		zap.String("house_profit", st.HouseProfit.String()),
	)
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
