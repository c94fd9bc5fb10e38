package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/eckolabs/ecko/internal/store"
)

// Scheduler delivers due reminders. It keeps no state of its own beyond the
// persisted delivered flag, so restarts lose nothing and repeated polls never
// duplicate a delivery.
type Scheduler struct {
	store store.Store
	now   func() time.Time
}

// NewScheduler creates a scheduler over the given store.
func NewScheduler(st store.Store) *Scheduler {
	return &Scheduler{store: st, now: time.Now}
}

// CheckDue claims the session's due reminders (flipping delivered exactly
// once) and returns all pending notifications for the session, including any
// queued earlier by the background watcher.
func (s *Scheduler) CheckDue(sessionID string) ([]store.Notification, error) {
	if _, err := s.store.ClaimDueReminders(sessionID, s.now()); err != nil {
		return nil, err
	}
	return s.store.PendingNotifications(sessionID)
}

// Watch claims due reminders across all sessions on a fixed interval and
// hands each fresh notification to onDue (used to publish SSE events). The
// client poll stays authoritative for delivery; Watch only adds push. Runs
// until ctx is cancelled.
func (s *Scheduler) Watch(ctx context.Context, interval time.Duration, logger *slog.Logger, onDue func(store.Notification)) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("reminder watcher started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("reminder watcher stopped")
			return
		case <-ticker.C:
			notifs, err := s.store.ClaimAllDueReminders(s.now())
			if err != nil {
				logger.Warn("due reminder sweep failed", slog.String("error", err.Error()))
				continue
			}
			for _, n := range notifs {
				logger.Info("reminder due",
					slog.String("session_id", n.SessionID),
					slog.String("reminder_id", n.ReminderID))
				if onDue != nil {
					onDue(n)
				}
			}
		}
	}
}
