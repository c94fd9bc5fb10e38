package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eckolabs/ecko/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS turns (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS reminders (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	message    TEXT NOT NULL,
	due_at     DATETIME,
	recurrence TEXT NOT NULL DEFAULT '',
	delivered  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	session_id TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	reminder_id TEXT NOT NULL,
	message     TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
CREATE INDEX IF NOT EXISTS idx_notes_session ON notes(session_id);
CREATE INDEX IF NOT EXISTS idx_reminders_session ON reminders(session_id);
CREATE INDEX IF NOT EXISTS idx_reminders_delivered ON reminders(delivered);
CREATE INDEX IF NOT EXISTS idx_notifications_session ON notifications(session_id);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
`

// SQLite implements Store on a SQLite database.
//
// Mutations are serialized per session id via a keyed lock so that concurrent
// requests on the same session cannot interleave read-modify-write sequences;
// unrelated sessions proceed in parallel.
type SQLite struct {
	conn  *sql.DB
	locks *sessionLocks
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{conn: conn, locks: newSessionLocks()}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Ping reports whether the persistence backend is reachable.
func (s *SQLite) Ping() error {
	return s.conn.Ping()
}

// CreateSession registers a fresh session and returns its id.
func (s *SQLite) CreateSession() (string, error) {
	id := uuid.NewString()
	_, err := s.conn.Exec(`INSERT INTO sessions (id, created_at) VALUES (?, ?)`, id, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: create session: %w", err)
	}
	return id, nil
}

// SessionExists reports whether the session id is known.
func (s *SQLite) SessionExists(sessionID string) (bool, error) {
	var one int
	err := s.conn.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: session exists: %w", err)
	}
	return true, nil
}

// History returns the session's turns in insertion order.
func (s *SQLite) History(sessionID string) ([]Turn, error) {
	rows, err := s.conn.Query(`
		SELECT role, content, created_at FROM turns
		WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: history: %w", err)
	}
	defer rows.Close()

	var out []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AppendTurn appends a turn stamped at append time. The per-session lock
// guarantees that the timestamp order matches the insertion order even when
// two orchestration passes race to persist.
func (s *SQLite) AppendTurn(sessionID, role, content string) (Turn, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	exists, err := s.SessionExists(sessionID)
	if err != nil {
		return Turn{}, err
	}
	if !exists {
		return Turn{}, apperr.ErrSessionNotFound
	}

	t := Turn{Role: role, Content: content, Timestamp: time.Now().UTC()}
	_, err = s.conn.Exec(`
		INSERT INTO turns (session_id, role, content, created_at)
		VALUES (?, ?, ?, ?)`, sessionID, t.Role, t.Content, t.Timestamp)
	if err != nil {
		return Turn{}, fmt.Errorf("store: append turn: %w", err)
	}
	return t, nil
}

// ClearHistory removes the session's turns. Notes and reminders are kept.
func (s *SQLite) ClearHistory(sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if _, err := s.conn.Exec(`DELETE FROM turns WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("store: clear history: %w", err)
	}
	return nil
}

// AddNote saves a free-text note for the session.
func (s *SQLite) AddNote(sessionID, content string) (Note, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	n := Note{ID: uuid.NewString(), SessionID: sessionID, Content: content, CreatedAt: time.Now().UTC()}
	_, err := s.conn.Exec(`
		INSERT INTO notes (id, session_id, content, created_at)
		VALUES (?, ?, ?, ?)`, n.ID, n.SessionID, n.Content, n.CreatedAt)
	if err != nil {
		return Note{}, fmt.Errorf("store: add note: %w", err)
	}
	return n, nil
}

// ListNotes returns the session's notes, newest first.
func (s *SQLite) ListNotes(sessionID string) ([]Note, error) {
	rows, err := s.conn.Query(`
		SELECT id, session_id, content, created_at FROM notes
		WHERE session_id = ? ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.SessionID, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteNote removes one note; ErrNotFound when the id is unknown.
func (s *SQLite) DeleteNote(sessionID, noteID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	res, err := s.conn.Exec(`DELETE FROM notes WHERE id = ? AND session_id = ?`, noteID, sessionID)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// AddReminder saves a reminder. dueAt may be nil for reminders whose due
// expression could not be parsed; every > 0 makes the reminder recurring.
func (s *SQLite) AddReminder(sessionID, message string, dueAt *time.Time, every time.Duration) (Reminder, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	r := Reminder{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Message:   message,
		DueAt:     dueAt,
		CreatedAt: time.Now().UTC(),
	}
	if every > 0 {
		r.Recurrence = every.String()
	}
	var due any
	if dueAt != nil {
		due = dueAt.UTC()
	}
	_, err := s.conn.Exec(`
		INSERT INTO reminders (id, session_id, message, due_at, recurrence, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`, r.ID, r.SessionID, r.Message, due, r.Recurrence, r.CreatedAt)
	if err != nil {
		return Reminder{}, fmt.Errorf("store: add reminder: %w", err)
	}
	return r, nil
}

// ListReminders returns the session's reminders ordered by due time, undated
// reminders last.
func (s *SQLite) ListReminders(sessionID string) ([]Reminder, error) {
	rows, err := s.conn.Query(`
		SELECT id, session_id, message, due_at, recurrence, delivered, created_at FROM reminders
		WHERE session_id = ?
		ORDER BY due_at IS NULL, due_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// DeleteReminder removes one reminder; ErrNotFound when the id is unknown.
func (s *SQLite) DeleteReminder(sessionID, reminderID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	res, err := s.conn.Exec(`DELETE FROM reminders WHERE id = ? AND session_id = ?`, reminderID, sessionID)
	if err != nil {
		return fmt.Errorf("store: delete reminder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ClaimDueReminders fires the session's due reminders and queues one
// notification per firing. The read and the write happen in one transaction
// under the session lock, so an occurrence is claimed at most once across
// concurrent polls.
func (s *SQLite) ClaimDueReminders(sessionID string, now time.Time) ([]Notification, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.claimDue(now, `session_id = ? AND delivered = 0 AND due_at IS NOT NULL AND due_at <= ?`, sessionID, now.UTC())
}

// ClaimAllDueReminders claims due reminders across every session. Used by the
// background watcher; per-occurrence idempotency comes from the guarded
// transactional update in fireReminder.
func (s *SQLite) ClaimAllDueReminders(now time.Time) ([]Notification, error) {
	return s.claimDue(now, `delivered = 0 AND due_at IS NOT NULL AND due_at <= ?`, now.UTC())
}

func (s *SQLite) claimDue(now time.Time, where string, args ...any) ([]Notification, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	rows, err := tx.Query(`SELECT id, session_id, message, due_at, recurrence FROM reminders WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("store: select due: %w", err)
	}
	type due struct {
		id, sessionID, message, recurrence string
		dueAt                              time.Time
	}
	var claimed []due
	for rows.Next() {
		var d due
		if err := rows.Scan(&d.id, &d.sessionID, &d.message, &d.dueAt, &d.recurrence); err != nil {
			rows.Close()
			return nil, err
		}
		claimed = append(claimed, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stamp := time.Now().UTC()
	var out []Notification
	for _, d := range claimed {
		res, err := s.fireReminder(tx, d.id, d.dueAt, d.recurrence, now)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Another claimer got there first.
			continue
		}
		notif := Notification{
			ID:         uuid.NewString(),
			SessionID:  d.sessionID,
			ReminderID: d.id,
			Message:    d.message,
			Timestamp:  stamp,
		}
		_, err = tx.Exec(`
			INSERT INTO notifications (id, session_id, reminder_id, message, created_at, read)
			VALUES (?, ?, ?, ?, ?, 0)`,
			notif.ID, notif.SessionID, notif.ReminderID, notif.Message, notif.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("store: queue notification: %w", err)
		}
		out = append(out, notif)
	}
	return out, tx.Commit()
}

// fireReminder consumes one due occurrence. One-shot reminders flip the
// delivered flag; recurring ones advance due_at past now instead. Both
// updates are guarded so a concurrent claimer fires the occurrence at most
// once (RowsAffected is zero for the loser).
func (s *SQLite) fireReminder(tx *sql.Tx, id string, dueAt time.Time, recurrence string, now time.Time) (sql.Result, error) {
	if recurrence == "" {
		res, err := tx.Exec(`UPDATE reminders SET delivered = 1 WHERE id = ? AND delivered = 0`, id)
		if err != nil {
			return nil, fmt.Errorf("store: mark delivered: %w", err)
		}
		return res, nil
	}

	every, err := time.ParseDuration(recurrence)
	if err != nil || every <= 0 {
		// Unparseable recurrence degrades to one-shot.
		res, err := tx.Exec(`UPDATE reminders SET delivered = 1 WHERE id = ? AND delivered = 0`, id)
		if err != nil {
			return nil, fmt.Errorf("store: mark delivered: %w", err)
		}
		return res, nil
	}

	next := dueAt
	for !next.After(now) {
		next = next.Add(every)
	}
	res, err := tx.Exec(`UPDATE reminders SET due_at = ? WHERE id = ? AND due_at <= ?`,
		next.UTC(), id, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("store: advance recurrence: %w", err)
	}
	return res, nil
}

// SetProfileName remembers the user's name for a session, replacing any
// earlier value.
func (s *SQLite) SetProfileName(sessionID, name string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	_, err := s.conn.Exec(`
		INSERT INTO profiles (session_id, name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		sessionID, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: set profile name: %w", err)
	}
	return nil
}

// ProfileName returns the remembered name for a session, empty when none.
func (s *SQLite) ProfileName(sessionID string) (string, error) {
	var name string
	err := s.conn.QueryRow(`SELECT name FROM profiles WHERE session_id = ?`, sessionID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: profile name: %w", err)
	}
	return name, nil
}

// PendingNotifications returns the session's unread notifications and marks
// them read, so a subsequent poll returns nothing for the same reminders.
func (s *SQLite) PendingNotifications(sessionID string) ([]Notification, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.Query(`
		SELECT id, session_id, reminder_id, message, created_at FROM notifications
		WHERE session_id = ? AND read = 0 ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: pending notifications: %w", err)
	}
	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.SessionID, &n.ReminderID, &n.Message, &n.Timestamp); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`UPDATE notifications SET read = 1 WHERE session_id = ?`, sessionID); err != nil {
		return nil, fmt.Errorf("store: mark read: %w", err)
	}
	return out, tx.Commit()
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	var out []Reminder
	for rows.Next() {
		var (
			r   Reminder
			due sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Message, &due, &r.Recurrence, &r.Delivered, &r.CreatedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			t := due.Time
			r.DueAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
