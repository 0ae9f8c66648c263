package http

import (
	"net/http"
	"strconv"

	"github.com/progressor-app/progressor/internal/domain/chat"
	"github.com/progressor-app/progressor/internal/middleware"
)

const defaultMessagePageSize = 50

// ListMessages handles GET /api/v1/messages
//
// Returns the user's conversation with the assistant in chronological
// order. limit caps how far back the window reaches.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	limit := defaultMessagePageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	msgs, err := h.Chat.History(r.Context(), userID, limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs, "count": len(msgs)})
}

// PostMessage handles POST /api/v1/messages
//
// The REST fallback for clients without a WebSocket connection. The
// message runs through the same interpreter pipeline and the reply is
// returned in the response body.
func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	req, ok := readJSON[struct {
		Message string `json:"message"`
	}](w, r)
	if !ok {
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.Chat.HandleMessage(r.Context(), userID, req.Message)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
