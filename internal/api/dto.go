package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eckolabs/ecko/internal/store"
)

// ChatRequest is the request body for a chat exchange.
type ChatRequest struct {
	Message   string `json:"message" example:"recuérdame llamar a mamá en 2 horas" validate:"required"`
	SessionID string `json:"session_id,omitempty" example:"3f1c…"`
}

// Validate checks the request invariants.
func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required, validation.Length(1, 4000)),
	)
}

// ChatResponse is the assistant reply for one exchange.
type ChatResponse struct {
	Response  string    `json:"response" validate:"required"`
	SessionID string    `json:"session_id" validate:"required"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	SessionID string    `json:"session_id" validate:"required"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

// SessionExistsResponse reports whether a session id is known.
type SessionExistsResponse struct {
	SessionID string `json:"session_id" validate:"required"`
	Exists    bool   `json:"exists" validate:"required"`
}

// HistoryResponse wraps a session's conversation turns.
type HistoryResponse struct {
	SessionID string       `json:"session_id" validate:"required"`
	History   []store.Turn `json:"history" validate:"required"`
	Count     int          `json:"count" example:"4" validate:"required"`
}

// NotesResponse wraps a session's saved notes.
type NotesResponse struct {
	SessionID string       `json:"session_id" validate:"required"`
	Notes     []store.Note `json:"notes" validate:"required"`
	Count     int          `json:"count" example:"2" validate:"required"`
}

// RemindersResponse wraps a session's reminders plus any notifications that
// became deliverable during this poll.
type RemindersResponse struct {
	SessionID          string               `json:"session_id" validate:"required"`
	Reminders          []store.Reminder     `json:"reminders" validate:"required"`
	Count              int                  `json:"count" example:"1" validate:"required"`
	Notifications      []store.Notification `json:"notifications" validate:"required"`
	NotificationsCount int                  `json:"notifications_count" example:"1" validate:"required"`
}
