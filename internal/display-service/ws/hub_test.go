package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/squares-wager-platform/internal/display-service/ws"
)

func allowAll(*http.Request) bool { return true }

func snapshot(_ context.Context, gameID string) (any, error) {
	if gameID != "g1" {
		return nil, errors.New("no ledger")
	}
	return map[string]int{"totalBets": 3}, nil
}

func dial(t *testing.T, hub *ws.Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	var m map[string]any
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

func TestHubSubscribeSnapshotAndBroadcast(t *testing.T) {
	hub := ws.NewHub(zap.NewNop(), allowAll, snapshot)
	conn := dial(t, hub)

	if err := conn.WriteJSON(ws.ClientMsg{Type: "subscribe", GameID: "g1"}); err != nil {
		t.Fatal(err)
	}
	first := read(t, conn)
	if first["gameId"] != "g1" {
		t.Fatalf("snapshot = %v", first)
	}
	if p := first["payload"].(map[string]any); p["totalBets"] != float64(3) {
		t.Errorf("snapshot payload = %v", p)
	}
	if n := hub.Subscribers("g1"); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}

	hub.Broadcast(ws.LedgerUpdate{GameID: "g2", Payload: json.RawMessage(`{"totalBets":9}`)})
	hub.Broadcast(ws.LedgerUpdate{GameID: "g1", Payload: json.RawMessage(`{"totalBets":4}`)})

	// só a atualização do g1 chega
	got := read(t, conn)
	if got["gameId"] != "g1" || got["payload"].(map[string]any)["totalBets"] != float64(4) {
		t.Errorf("broadcast = %v", got)
	}
}

func TestHubUnsubscribeAndPing(t *testing.T) {
	hub := ws.NewHub(zap.NewNop(), allowAll, nil)
	conn := dial(t, hub)

	for _, m := range []ws.ClientMsg{
		{Type: "subscribe", GameID: "g1"},
		{Type: "unsubscribe", GameID: "g1"},
		{Type: "ping"},
	} {
		if err := conn.WriteJSON(m); err != nil {
			t.Fatal(err)
		}
	}
	// mensagens são tratadas em ordem: o pong confirma o unsubscribe
	if pong := read(t, conn); pong["type"] != "pong" {
		t.Fatalf("got %v, want pong", pong)
	}
	if n := hub.Subscribers("g1"); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
}

func TestHubSubscribeWithoutGame(t *testing.T) {
	hub := ws.NewHub(zap.NewNop(), allowAll, snapshot)
	conn := dial(t, hub)

	if err := conn.WriteJSON(ws.ClientMsg{Type: "subscribe"}); err != nil {
		t.Fatal(err)
	}
	if m := read(t, conn); m["type"] != "error" {
		t.Errorf("got %v, want error message", m)
	}
}

func TestRelay(t *testing.T) {
	hub := ws.NewHub(zap.NewNop(), allowAll, nil)
	conn := dial(t, hub)
	if err := conn.WriteJSON(ws.ClientMsg{Type: "subscribe", GameID: "g1"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(ws.ClientMsg{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	read(t, conn) // pong

	ch := make(chan *redis.Message, 3)
	ch <- &redis.Message{Channel: "game_ledger_broadcast", Payload: "garbage"}
	ch <- nil
	ch <- &redis.Message{Channel: "game_ledger_broadcast", Payload: `{"gameId":"g1","payload":{"houseProfit":"5"}}`}
	close(ch)

	ws.Relay(context.Background(), zap.NewNop(), ch, hub)

	got := read(t, conn)
	if got["payload"].(map[string]any)["houseProfit"] != "5" {
		t.Errorf("relayed = %v", got)
	}
}
