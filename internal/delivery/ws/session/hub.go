package ws_session

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/moviematch/core/internal/model"
)

// Event is the wire envelope for every push message.
type Event struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

type Client struct {
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID model.SessionID
}

// Hub fans session events out to every attached client. Delivery is
// fire-and-forget: a slow client is dropped, never waited on.
type Hub struct {
	mu sync.RWMutex

	// Keep track of sets of Clients within each session
	sessions map[model.SessionID]map[*Client]bool

	logger *slog.Logger
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[model.SessionID]map[*Client]bool),
		logger:   logger,
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[client.SessionID]; !ok {
		h.sessions[client.SessionID] = make(map[*Client]bool)
	}
	h.sessions[client.SessionID][client] = true

	h.logger.Info("client registered", "session_id", client.SessionID)
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[client.SessionID]; ok {
		delete(session, client)
		if len(session) == 0 {
			delete(h.sessions, client.SessionID)
		}
	}
	h.logger.Info("client unregistered", "session_id", client.SessionID)
}

// Publish pushes an event to every client attached to the session.
// At-most-once: there is no acknowledgment and no retry.
func (h *Hub) Publish(id model.SessionID, topic string, payload any) {
	raw, err := json.Marshal(Event{Topic: topic, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal event",
			"session_id", id, "topic", topic, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*Client
	for client := range h.sessions[id] {
		select {
		case client.Send <- raw:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}

	// Slow clients are removed under the write lock. A client already
	// removed by a concurrent Publish or RemoveClient is skipped so its
	// channel is never closed twice.
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[id]
	if !ok {
		return
	}
	for _, client := range slow {
		if !clients[client] {
			continue
		}
		delete(clients, client)
		close(client.Send)
		h.logger.Info("slow client dropped", "session_id", id)
	}
	if len(clients) == 0 {
		delete(h.sessions, id)
	}
}

func (h *Hub) StartClientReading(client *Client) {
	defer func() {
		h.RemoveClient(client)
		client.Conn.Close()
	}()

	for {
		_, _, err := client.Conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (h *Hub) StartClientWriting(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		err := client.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			break
		}
	}
}
