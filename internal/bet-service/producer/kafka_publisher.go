package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/squares-wager-platform/internal/wager"
	"github.com/radieske/squares-wager-platform/pkg/contracts/events"
)

// MessageWriter é a parte do *kafka.Writer que o publisher usa.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica eventos de aposta chaveados pelo jogo, para manter a
// ordem por partição.
type KafkaPublisher struct {
	Placed  MessageWriter
	Settled MessageWriter
	Now     func() time.Time
}

func NewKafkaPublisher(placed, settled MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Placed: placed, Settled: settled, Now: time.Now}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, b wager.Bet) error {
	e := events.BetPlaced{
		BetID:           b.ID,
		GameID:          b.GameID,
		PlayerID:        b.PlayerID,
		PlayerInitials:  b.PlayerInitials,
		Type:            string(b.Kind),
		Description:     b.Description,
		Odds:            b.Price(),
		Wager:           b.Wager.StringFixed(2),
		PotentialPayout: b.PotentialPayout.StringFixed(2),
		TsUnixMs:        p.Now().UnixMilli(),
	}
	if b.Kind == wager.KindParlay {
		e.Legs = len(b.Legs)
	}
	return p.write(ctx, p.Placed, b.GameID, e)
}

func (p *KafkaPublisher) PublishBetStatusChanged(ctx context.Context, b wager.Bet, from wager.Status) error {
	e := events.BetSettled{
		BetID:           b.ID,
		GameID:          b.GameID,
		PlayerID:        b.PlayerID,
		PlayerInitials:  b.PlayerInitials,
		From:            string(from),
		Status:          string(b.Status),
		Wager:           b.Wager.StringFixed(2),
		PotentialPayout: b.PotentialPayout.StringFixed(2),
		TsUnixMs:        p.Now().UnixMilli(),
	}
	if b.SettledAt != nil {
		e.SettledAt = *b.SettledAt
	}
	return p.write(ctx, p.Settled, b.GameID, e)
}

func (p *KafkaPublisher) write(ctx context.Context, w MessageWriter, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b, Time: p.Now()})
}
