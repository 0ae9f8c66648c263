package http

import (
	"context"
	"net/http"

	"github.com/progressor-app/progressor/internal/port/database"
	"github.com/progressor-app/progressor/internal/service"
)

// Handlers bundles the services the REST layer dispatches into.
type Handlers struct {
	Auth  *service.AuthService
	Chat  *service.ChatService
	Store database.Store

	// PingDB checks database connectivity for the health endpoint.
	PingDB func(ctx context.Context) error
	// AIBreakerState reports the estimation client's circuit state.
	AIBreakerState func() string
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	resp := map[string]string{"status": "ok"}

	if h.PingDB != nil {
		if err := h.PingDB(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
		} else {
			resp["database"] = "ok"
		}
	}
	if h.AIBreakerState != nil {
		resp["ai_breaker"] = h.AIBreakerState()
	}

	writeJSON(w, status, resp)
}
