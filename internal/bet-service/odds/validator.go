package odds

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

var ErrOddsMoved = errors.New("odds moved")

// MovedError informa a cotação atual para o cliente refazer a aposta.
type MovedError struct {
	Key     string
	Quoted  int
	Current int
}

func (e *MovedError) Error() string {
	return fmt.Sprintf("%s: %s quoted %s, current %s", ErrOddsMoved, e.Key,
		wager.FormatOdds(e.Quoted), wager.FormatOdds(e.Current))
}

func (e *MovedError) Unwrap() error { return ErrOddsMoved }

type Getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type Validator struct {
	Rdb Getter
}

func NewValidator(r Getter) *Validator { return &Validator{Rdb: r} }

// Key monta a chave da cotação. Props incluem o jogador:
// "odds:{gameID}:{market}:{outcome}" ou "odds:{gameID}:{market}:{player}:{outcome}".
func Key(gameID string, l wager.Leg) string {
	parts := []string{"odds", gameID, l.Market}
	if l.Player != "" {
		parts = append(parts, l.Player)
	}
	parts = append(parts, l.Outcome)
	return strings.Join(parts, ":")
}

// CurrentOdds lê a odd americana em cache ("-110", "+150"). ok=false quando
// não há cotação para a seleção.
func (v *Validator) CurrentOdds(ctx context.Context, key string) (odds int, ok bool, err error) {
	val, err := v.Rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(val), "+"))
	if err != nil {
		return 0, false, fmt.Errorf("odds %s: %w", key, err)
	}
	return n, true, nil
}

// Check compara cada seleção com a cotação em cache. Seleções sem cotação passam.
func (v *Validator) Check(ctx context.Context, gameID string, sel *wager.Selection, legs []wager.Leg) error {
	if sel != nil {
		legs = append([]wager.Leg{{Selection: *sel}}, legs...)
	}
	for _, l := range legs {
		key := Key(gameID, l)
		cur, ok, err := v.CurrentOdds(ctx, key)
		if err != nil {
			return err
		}
		if ok && cur != l.Odds {
			return &MovedError{Key: key, Quoted: l.Odds, Current: cur}
		}
	}
	return nil
}
