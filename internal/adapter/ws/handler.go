// Package ws implements the WebSocket adapter for the chat conversation.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/progressor-app/progressor/internal/domain/chat"
	"github.com/progressor-app/progressor/internal/middleware"
	"github.com/progressor-app/progressor/internal/service"
)

// inbound is the frame clients send.
type inbound struct {
	Message string `json:"message"`
}

// outbound is the frame the server sends for both the echoed user
// message and the assistant reply.
type outbound struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// session is one authenticated client connection.
type session struct {
	ws     *websocket.Conn
	userID string
	cancel context.CancelFunc
}

// Handler upgrades chat connections and runs each message through the
// chat service. Each user message produces two outbound frames: the
// persisted echo of the user's own message and the assistant reply.
type Handler struct {
	chat *service.ChatService

	mu       sync.RWMutex
	sessions map[*session]struct{}
}

// NewHandler creates a WebSocket chat handler.
func NewHandler(chatSvc *service.ChatService) *Handler {
	return &Handler{
		chat:     chatSvc,
		sessions: make(map[*session]struct{}),
	}
}

// HandleWS upgrades the connection and serves the chat loop. Auth
// middleware has already validated the token and put the user on the
// request context.
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	s := &session{ws: ws, userID: userID, cancel: cancel}

	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()

	slog.Info("chat connected", "user_id", userID, "remote", r.RemoteAddr)

	defer func() {
		h.remove(s)
		_ = ws.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			return
		}

		var frame inbound
		if err := json.Unmarshal(data, &frame); err != nil || frame.Message == "" {
			slog.Debug("dropping malformed chat frame", "user_id", userID)
			continue
		}

		reply, err := h.chat.HandleMessage(ctx, userID, frame.Message)
		if err != nil {
			slog.Error("chat handling failed", "user_id", userID, "error", err)
			continue
		}

		echo := chat.Message{
			SenderID:   userID,
			ReceiverID: reply.SenderID,
			Content:    frame.Message,
			CreatedAt:  reply.CreatedAt,
		}
		if err := h.send(ctx, s, echo); err != nil {
			return
		}
		if err := h.send(ctx, s, *reply); err != nil {
			return
		}
	}
}

func (h *Handler) send(ctx context.Context, s *session, m chat.Message) error {
	data, err := json.Marshal(outbound{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Message:    m.Content,
		CreatedAt:  m.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.ws.Write(ctx, websocket.MessageText, data)
}

// ConnectionCount returns the number of active chat sessions.
func (h *Handler) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// remove drops a session and cancels its read loop.
func (h *Handler) remove(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s]; ok {
		s.cancel()
		delete(h.sessions, s)
		slog.Info("chat disconnected", "user_id", s.userID)
	}
}
