package utility

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"mealplanner/internal/mealplan"
)

const writeWait = 5 * time.Second

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow any origin, matching the CORS policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressHub fans generation progress out to every connected websocket
// client. It implements mealplan.Reporter.
type ProgressHub struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{clients: make(map[string]*websocket.Conn)}
}

// Register a new client connection and return its id.
func (h *ProgressHub) Register(conn *websocket.Conn) string {
	id := uuid.New().String()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = conn
	log.Info().Str("client_id", id).Msg("WebSocket Client Connected")
	return id
}

// Unregister a client (when they close the tab).
func (h *ProgressHub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.clients[id]; ok {
		conn.Close()
		delete(h.clients, id)
		log.Info().Str("client_id", id).Msg("WebSocket Client Disconnected")
	}
}

// Count returns the number of connected clients.
func (h *ProgressHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Report broadcasts the event as JSON. Clients that fail a write are dropped.
func (h *ProgressHub) Report(event mealplan.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode progress event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Error().Err(err).Str("client_id", id).Msg("Failed to send WS message, removing client")
			conn.Close()
			delete(h.clients, id)
		}
	}
}

// ServeWS upgrades the request and keeps the connection registered until the
// client goes away. Incoming messages are ignored.
func (h *ProgressHub) ServeWS(c echo.Context) error {
	conn, err := Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return nil
	}

	id := h.Register(conn)
	defer h.Unregister(id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
