package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

type LedgerCache interface {
	GetLedger(ctx context.Context, gameID string) (wager.GameStats, bool, error)
	SetLedger(ctx context.Context, st wager.GameStats, ttl time.Duration) error
}

// BetSource é a leitura de apostas usada quando o cache não tem o snapshot
type BetSource interface {
	ListBets(ctx context.Context, gameID string) ([]wager.Bet, error)
}

// API expõe o ledger de cada jogo para o modo TV
// Lê do cache Redis (gravado pelo ledger-worker) e recalcula do banco no miss
type API struct {
	Log   *zap.Logger
	Cache LedgerCache
	Bets  BetSource
	TTL   time.Duration
	WS    http.HandlerFunc // hub WebSocket; nil desliga /ws
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/games/{gameId}/ledger", a.getLedger) // ledger atual do jogo
	if a.WS != nil {
		r.Get("/ws", a.WS) // subscribe por gameId
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Ledger devolve o snapshot do jogo, preferencialmente do cache
func (a *API) Ledger(ctx context.Context, gameID string) (wager.GameStats, error) {
	st, ok, err := a.Cache.GetLedger(ctx, gameID)
	if err != nil {
		a.Log.Warn("ledger cache read failed", zap.String("game_id", gameID), zap.Error(err))
	}
	if ok {
		return st, nil
	}

	bets, err := a.Bets.ListBets(ctx, gameID)
	if err != nil {
		return wager.GameStats{}, err
	}
	st = wager.ComputeGameStats(gameID, bets)
	if err := a.Cache.SetLedger(ctx, st, a.TTL); err != nil {
		a.Log.Warn("ledger cache write failed", zap.String("game_id", gameID), zap.Error(err))
	}
	return st, nil
}

// getLedger retorna o ledger de um jogo
func (a *API) getLedger(w http.ResponseWriter, r *http.Request) {
	st, err := a.Ledger(r.Context(), chi.URLParam(r, "gameId"))
	if err != nil {
		if errors.Is(err, wager.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		a.Log.Error("ledger failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}
