package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Publisher é o subconjunto do *redis.Client usado pelo broadcaster
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type RedisBroadcaster struct {
	r Publisher
}

func NewRedisBroadcaster(r Publisher) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// Payload padrão para o WS do display-service
type WSUpdate struct {
	GameID  string `json:"gameId"`
	Payload any    `json:"payload"`
}
