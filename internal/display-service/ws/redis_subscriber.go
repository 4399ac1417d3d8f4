package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartRedisSubscriber escuta o canal Redis Pub/Sub do ledger-worker numa
// goroutine e repassa cada atualização aos clientes WebSocket via Hub
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, channel string, hub *Hub) {
	sub := r.Subscribe(ctx, channel)
	go func() {
		defer sub.Close() // encerra a inscrição ao finalizar o contexto
		Relay(ctx, log, sub.Channel(), hub)
	}()
}

// Relay desserializa as mensagens do canal e chama hub.Broadcast até o
// contexto acabar ou o canal fechar
func Relay(ctx context.Context, log *zap.Logger, ch <-chan *redis.Message, hub *Hub) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg == nil {
				continue
			}
			var upd LedgerUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil || upd.GameID == "" {
				log.Warn("ws subscriber bad payload", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			hub.Broadcast(upd) // envia atualização para todos os clientes inscritos
		}
	}
}
