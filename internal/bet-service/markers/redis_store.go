package markers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/squares-wager-platform/internal/settlement"
)

// HashClient é o subconjunto do *redis.Client usado pelo store.
type HashClient interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// RedisStore guarda os marcadores de acerto num hash: campo = iniciais, valor = JSON.
type RedisStore struct {
	Rdb HashClient
	Key string
}

var _ settlement.MarkerStore = (*RedisStore)(nil)

func NewRedisStore(rdb HashClient, key string) *RedisStore {
	return &RedisStore{Rdb: rdb, Key: key}
}

func (s *RedisStore) Mark(ctx context.Context, m settlement.Marker) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.Rdb.HSet(ctx, s.Key, string(m.Initials), b).Err()
}

func (s *RedisStore) Unmark(ctx context.Context, id settlement.Identity) error {
	n, err := s.Rdb.HDel(ctx, s.Key, string(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return settlement.ErrMarkerNotFound
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) (map[settlement.Identity]settlement.Marker, error) {
	raw, err := s.Rdb.HGetAll(ctx, s.Key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[settlement.Identity]settlement.Marker, len(raw))
	for field, v := range raw {
		var m settlement.Marker
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, fmt.Errorf("marker %s: %w", field, err)
		}
		out[settlement.Identity(field)] = m
	}
	return out, nil
}
