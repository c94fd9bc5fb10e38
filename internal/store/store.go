// Package store provides SQLite-backed session state: conversation turns,
// notes, reminders, and pending reminder notifications.
package store

import "time"

// Turn is one message in a session's chronological history.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Roles for Turn.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Note is a piece of free text saved with the "recordar" command.
type Note struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Reminder is a scheduled notification. DueAt is nil when the due expression
// could not be parsed; such reminders are kept but never fire. Recurrence is
// a Duration string ("30m", "24h0m0s"); empty means one-shot. A recurring
// reminder never flips Delivered: each firing advances DueAt instead.
type Reminder struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	Message    string     `json:"message"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	Recurrence string     `json:"recurrence,omitempty"`
	Delivered  bool       `json:"delivered"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Notification is a due-reminder event queued for client polling.
type Notification struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	ReminderID string    `json:"reminder_id"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store defines session-state persistence operations.
// Consumers should depend on this interface rather than the concrete *SQLite
// type to facilitate testing with fakes.
type Store interface {
	CreateSession() (string, error)
	SessionExists(sessionID string) (bool, error)
	History(sessionID string) ([]Turn, error)
	AppendTurn(sessionID, role, content string) (Turn, error)
	ClearHistory(sessionID string) error

	AddNote(sessionID, content string) (Note, error)
	ListNotes(sessionID string) ([]Note, error)
	DeleteNote(sessionID, noteID string) error

	AddReminder(sessionID, message string, dueAt *time.Time, every time.Duration) (Reminder, error)
	ListReminders(sessionID string) ([]Reminder, error)
	DeleteReminder(sessionID, reminderID string) error

	SetProfileName(sessionID, name string) error
	ProfileName(sessionID string) (string, error)

	ClaimDueReminders(sessionID string, now time.Time) ([]Notification, error)
	ClaimAllDueReminders(now time.Time) ([]Notification, error)
	PendingNotifications(sessionID string) ([]Notification, error)

	Ping() error
	Close() error
}

// Verify *SQLite satisfies Store at compile time.
var _ Store = (*SQLite)(nil)
