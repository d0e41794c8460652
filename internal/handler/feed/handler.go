package feed

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/talker-manager/backend/internal/service/events"
	"github.com/zhouzirui/talker-manager/backend/pkg/utils"
)

const (
	keepAliveInterval = 15 * time.Second
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
)

// readyEvent is sent once a subscriber is registered, so clients know
// every later mutation will reach them.
const readyEvent = "ready"

// Handler streams talker change events over SSE and WebSocket.
type Handler struct {
	hub       *events.Hub
	upgrader  websocket.Upgrader
	keepAlive time.Duration
}

// New creates a feed handler reading from hub.
func New(hub *events.Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		keepAlive: keepAliveInterval,
	}
}

// RegisterRoutes mounts the feed routes on r, which is expected to be
// routed at /talker.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.handleSSE)
	r.Get("/ws", h.handleWebSocket)
}

func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.hub.Subscribe()
	defer sub.Close()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	log.Printf("[feed] sse subscriber connected from %s", r.RemoteAddr)

	if err := utils.SendSSEEvent(w, flusher, "", readyEvent, map[string]string{"status": "subscribed"}); err != nil {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[feed] sse subscriber %s disconnected", r.RemoteAddr)
			return
		case ev, open := <-sub.C:
			if !open {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, ev.ID, string(ev.Type), ev); err != nil {
				log.Printf("[feed] sse write failed: %v", err)
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "keep-alive"); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[feed] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe()
	defer sub.Close()

	log.Printf("[feed] websocket subscriber connected from %s", r.RemoteAddr)

	// The feed is server-to-client only; the read loop just notices when
	// the client goes away and keeps pong deadlines moving.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeJSON(conn, map[string]string{"type": readyEvent}); err != nil {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Printf("[feed] websocket subscriber %s disconnected", r.RemoteAddr)
			return
		case ev, open := <-sub.C:
			if !open {
				return
			}
			if err := h.writeJSON(conn, ev); err != nil {
				log.Printf("[feed] websocket write failed: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
