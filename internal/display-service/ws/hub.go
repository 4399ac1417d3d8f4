package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SnapshotFunc devolve o ledger atual de um jogo, enviado logo após o subscribe
type SnapshotFunc func(ctx context.Context, gameID string) (any, error)

// client serializa as escritas: o gorilla não aceita writers concorrentes
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) write(v []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, v)
}

func (c *client) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(b)
}

// Hub gerencia conexões WebSocket e assinaturas por jogo
// subs: mapeia gameID para o conjunto de clientes inscritos
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	snapshot SnapshotFunc

	mu   sync.RWMutex
	subs map[string]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS).
// snapshot pode ser nil.
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool, snapshot SnapshotFunc) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		snapshot: snapshot,
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe em jogos e responde a pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.GameID == "" {
				_ = c.writeJSON(map[string]string{"type": "error", "error": "gameId required"})
				continue
			}
			h.subscribe(msg.GameID, c)
			h.sendSnapshot(r.Context(), msg.GameID, c)
		case "unsubscribe":
			h.unsubscribe(msg.GameID, c)
		case "ping":
			_ = c.writeJSON(map[string]string{"type": "pong"})
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for gameID, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, gameID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe(gameID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[gameID]; !ok {
		h.subs[gameID] = make(map[*client]struct{})
	}
	h.subs[gameID][c] = struct{}{}
}

func (h *Hub) unsubscribe(gameID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[gameID]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, gameID)
		}
	}
}

func (h *Hub) sendSnapshot(ctx context.Context, gameID string, c *client) {
	if h.snapshot == nil {
		return
	}
	v, err := h.snapshot(ctx, gameID)
	if err != nil {
		h.log.Debug("ws snapshot unavailable", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.writeJSON(LedgerUpdate{GameID: gameID, Payload: payload})
}

// Subscribers informa quantos clientes acompanham o jogo
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

// Broadcast envia a atualização para todos os clientes inscritos no jogo
func (h *Hub) Broadcast(update LedgerUpdate) {
	h.mu.RLock()
	conns := make([]*client, 0, len(h.subs[update.GameID]))
	for c := range h.subs[update.GameID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range conns {
		if err := c.write(b); err != nil {
			h.log.Debug("ws write failed", zap.String("game_id", update.GameID), zap.Error(err))
		}
	}
}
