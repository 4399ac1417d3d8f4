package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	httpapi "github.com/radieske/squares-wager-platform/internal/display-service/http"
	"github.com/radieske/squares-wager-platform/internal/wager"
)

type memCache struct {
	data    map[string]wager.GameStats
	readErr error
	sets    int
	ttl     time.Duration
}

func (m *memCache) GetLedger(_ context.Context, gameID string) (wager.GameStats, bool, error) {
	if m.readErr != nil {
		return wager.GameStats{}, false, m.readErr
	}
	st, ok := m.data[gameID]
	return st, ok, nil
}

func (m *memCache) SetLedger(_ context.Context, st wager.GameStats, ttl time.Duration) error {
	if m.data == nil {
		m.data = map[string]wager.GameStats{}
	}
	m.data[st.GameID] = st
	m.sets++
	m.ttl = ttl
	return nil
}

func store() *wager.MemStore {
	s := wager.NewMemStore()
	s.PutGame(wager.Game{
		ID: "g1",
		Bets: []wager.Bet{{
			ID:              "b1",
			PlayerID:        "p1",
			PlayerInitials:  "AB",
			Kind:            wager.KindStraight,
			Selection:       &wager.Selection{Market: "h2h", Outcome: "KC", Odds: 150},
			Wager:           decimal.NewFromInt(10),
			PotentialPayout: decimal.NewFromInt(15),
			Status:          wager.StatusPending,
			PlacedAt:        time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC),
		}},
	})
	return s
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLedgerReadThrough(t *testing.T) {
	c := &memCache{}
	api := &httpapi.API{Log: zap.NewNop(), Cache: c, Bets: store(), TTL: 30 * time.Second}
	h := api.Router()

	rec := get(h, "/v1/games/g1/ledger")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var st wager.GameStats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.TotalBets != 1 || !st.TotalPendingLiability.Equal(decimal.NewFromInt(15)) {
		t.Errorf("stats = %+v", st)
	}
	if c.sets != 1 || c.ttl != 30*time.Second {
		t.Errorf("cache sets = %d ttl %s", c.sets, c.ttl)
	}

	// segundo pedido sai do cache
	get(h, "/v1/games/g1/ledger")
	if c.sets != 1 {
		t.Errorf("cache hit should not write again, sets = %d", c.sets)
	}
}

func TestLedgerPrefersCache(t *testing.T) {
	cached := wager.ComputeGameStats("g1", nil)
	cached.TotalBets = 42
	c := &memCache{data: map[string]wager.GameStats{"g1": cached}}
	api := &httpapi.API{Log: zap.NewNop(), Cache: c, Bets: store()}

	var st wager.GameStats
	_ = json.Unmarshal(get(api.Router(), "/v1/games/g1/ledger").Body.Bytes(), &st)
	if st.TotalBets != 42 {
		t.Errorf("TotalBets = %d, want cached 42", st.TotalBets)
	}
}

func TestLedgerErrors(t *testing.T) {
	api := &httpapi.API{Log: zap.NewNop(), Cache: &memCache{}, Bets: store()}
	if rec := get(api.Router(), "/v1/games/nope/ledger"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown game status = %d, want 404", rec.Code)
	}

	// cache fora do ar não derruba a leitura
	api.Cache = &memCache{readErr: errors.New("redis down")}
	if rec := get(api.Router(), "/v1/games/g1/ledger"); rec.Code != http.StatusOK {
		t.Errorf("status with cache down = %d, want 200", rec.Code)
	}

	if rec := get(api.Router(), "/ws"); rec.Code != http.StatusNotFound {
		t.Errorf("/ws without hub = %d, want 404", rec.Code)
	}
}
