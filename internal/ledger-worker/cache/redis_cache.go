package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

// Setter é o subconjunto do *redis.Client usado pelo cache
type Setter interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache guarda o snapshot mais recente do ledger de cada jogo
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client Setter
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c Setter, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// Key gera a chave Redis do ledger de um jogo; o display-service lê a mesma chave
func Key(gameID string) string { return "ledger:game:" + gameID }

// SetLedger grava as estatísticas do jogo com o TTL definido
func (r *RedisCache) SetLedger(ctx context.Context, st wager.GameStats) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, Key(st.GameID), b, r.TTL).Err()
}
