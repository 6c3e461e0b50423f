package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shanti-jangam/collaborative-code-env/internal/domain"
	"github.com/shanti-jangam/collaborative-code-env/internal/room"
)

// disconnectTimeout bounds the cleanup work done after a connection drops.
const disconnectTimeout = 5 * time.Second

// inbound is the client-to-server wire frame. Fields beyond Type are
// populated per event type.
type inbound struct {
	Type     string       `json:"type"`
	RoomID   string       `json:"roomId"`
	Code     string       `json:"code"`
	Language string       `json:"language"`
	User     *inboundUser `json:"user"`
	Message  *inboundMsg  `json:"message"`
}

type inboundUser struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

type inboundMsg struct {
	ID        string    `json:"id" validate:"required"`
	User      string    `json:"user" validate:"required"`
	Text      string    `json:"text" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler upgrades connections and pumps events between the socket and the
// session coordinator.
type Handler struct {
	hub           *Hub
	coordinator   *room.Coordinator
	validate      *validator.Validate
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, coordinator *room.Coordinator, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		hub:           hub,
		coordinator:   coordinator,
		validate:      validator.New(),
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	connID := uuid.NewString()
	slog.Info("WebSocket connected", "conn_id", connID, "ip", r.RemoteAddr)

	outbound := h.hub.Register(connID)
	defer func() {
		h.hub.Unregister(connID)

		// The request context is gone by now; cleanup gets its own bound.
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := h.coordinator.Disconnect(ctx, connID); err != nil {
			slog.Warn("Disconnect cleanup failed", "error", err, "conn_id", connID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Output pump: hub -> socket.
	go func() {
		defer cancel()
		for {
			select {
			case data, ok := <-outbound:
				if !ok {
					return
				}
				if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
					slog.Debug("WebSocket write error", "error", err, "conn_id", connID)
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	h.readLoop(ctx, ws, connID)
	slog.Info("WebSocket session ended", "conn_id", connID)
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, connID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "conn_id", connID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "conn_id", connID)
			}
			return
		}

		var event inbound
		if err := json.Unmarshal(data, &event); err != nil {
			slog.Warn("Discarding malformed event", "error", err, "conn_id", connID)
			continue
		}

		if err := h.dispatch(ctx, connID, &event); err != nil {
			slog.Warn("Event handling failed", "error", err, "event", event.Type, "conn_id", connID)
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, connID string, event *inbound) error {
	if event.RoomID == "" {
		slog.Warn("Discarding event without room id", "event", event.Type, "conn_id", connID)
		return nil
	}

	switch event.Type {
	case "join-room":
		if event.User == nil {
			slog.Warn("Discarding join without user", "conn_id", connID)
			return nil
		}
		if err := h.validate.Struct(event.User); err != nil {
			slog.Warn("Discarding invalid join payload", "error", err, "conn_id", connID)
			return nil
		}
		return h.coordinator.Join(ctx, event.RoomID, connID, event.User.Name, event.User.Color)

	case "code-change":
		return h.coordinator.UpdateCode(ctx, event.RoomID, connID, event.Code)

	case "chat-message":
		if event.Message == nil {
			slog.Warn("Discarding chat event without message", "conn_id", connID)
			return nil
		}
		if err := h.validate.Struct(event.Message); err != nil {
			slog.Warn("Discarding invalid chat payload", "error", err, "conn_id", connID)
			return nil
		}
		msg := domain.Message{
			ID:        event.Message.ID,
			User:      event.Message.User,
			Text:      event.Message.Text,
			Timestamp: event.Message.Timestamp,
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now()
		}
		return h.coordinator.PostMessage(ctx, event.RoomID, msg)

	case "language-change":
		return h.coordinator.UpdateLanguage(ctx, event.RoomID, connID, event.Language)

	default:
		slog.Warn("Discarding unknown event type", "event", event.Type, "conn_id", connID)
		return nil
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
