package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Chat pipeline.
	r.Post("/chat", h.Chat)

	// Sessions.
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/{sessionID}/exists", h.SessionExists)

	// Conversation history.
	r.Get("/history/{sessionID}", h.History)
	r.Delete("/history/{sessionID}", h.ClearHistory)

	// Notes.
	r.Get("/notes/{sessionID}", h.Notes)
	r.Delete("/notes/{sessionID}/{noteID}", h.DeleteNote)

	// Reminders; GET doubles as the notification poll.
	r.Get("/reminders/{sessionID}", h.Reminders)
	r.Delete("/reminders/{sessionID}/{reminderID}", h.DeleteReminder)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
