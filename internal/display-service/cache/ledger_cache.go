package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

// Client é o subconjunto do *redis.Client usado pela leitura do ledger
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type Cache struct{ R Client }

func New(r Client) *Cache { return &Cache{R: r} }

// mesma chave gravada pelo ledger-worker
func keyLedger(gameID string) string { return "ledger:game:" + gameID }

// GetLedger devolve ok=false quando não há snapshot (expirou ou nunca foi gravado)
func (c *Cache) GetLedger(ctx context.Context, gameID string) (wager.GameStats, bool, error) {
	b, err := c.R.Get(ctx, keyLedger(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return wager.GameStats{}, false, nil
	}
	if err != nil {
		return wager.GameStats{}, false, err
	}
	var st wager.GameStats
	if err := json.Unmarshal(b, &st); err != nil {
		return wager.GameStats{}, false, err
	}
	return st, true, nil
}

func (c *Cache) SetLedger(ctx context.Context, st wager.GameStats, ttl time.Duration) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyLedger(st.GameID), b, ttl).Err()
}
