package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router. Auth
// and request-ID middleware are applied by the caller so that /ws and
// /health share the same chain.
func MountRoutes(r chi.Router, h *Handlers, handleWS http.HandlerFunc) {
	r.Get("/health", h.Health)
	r.Get("/ws", handleWS)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Get("/auth/me", h.Me)

		// Tasks
		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks/{id}", h.GetTask)
		r.Patch("/tasks/{id}/status", h.UpdateTaskStatus)
		r.Delete("/tasks/{id}", h.DeleteTask)

		// Chat messages
		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.PostMessage)
	})
}
