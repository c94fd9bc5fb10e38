package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eckolabs/ecko/internal/apperr"
	"github.com/eckolabs/ecko/internal/chat"
	"github.com/eckolabs/ecko/internal/reminder"
	"github.com/eckolabs/ecko/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	chat      *chat.Service
	store     store.Store
	scheduler *reminder.Scheduler
}

// NewHandler creates a new Handler.
func NewHandler(chatSvc *chat.Service, st store.Store, sched *reminder.Scheduler) *Handler {
	return &Handler{chat: chatSvc, store: st, scheduler: sched}
}

// requireSession resolves the session id URL param and verifies it exists.
// Writes the error response and returns "" when the session is unknown.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) string {
	sid := chi.URLParam(r, "sessionID")
	exists, err := h.store.SessionExists(sid)
	if err != nil {
		slog.Error("session lookup failed", slog.String("session_id", sid), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return ""
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, errorBody("session not found"))
		return ""
	}
	return sid
}

// Chat handles POST /api/chat.
//
//	@Summary		Send a message and get the assistant reply
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChatRequest	true	"Message to handle"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("message is required"))
		return
	}

	reply, err := h.chat.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, apperr.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("session not found"))
		} else {
			slog.Error("chat failed", slog.String("session_id", req.SessionID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse(reply))
}

// CreateSession handles POST /api/sessions.
//
//	@Summary		Create a new conversation session
//	@Tags			sessions
//	@Produce		json
//	@Success		201	{object}	SessionResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.chat.NewSession()
	if err != nil {
		slog.Error("create session failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse(info))
}

// SessionExists handles GET /api/sessions/{sessionID}/exists.
//
//	@Summary		Check whether a session id is known
//	@Tags			sessions
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session id"
//	@Success		200			{object}	SessionExistsResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/exists [get]
func (h *Handler) SessionExists(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sessionID")
	exists, err := h.store.SessionExists(sid)
	if err != nil {
		slog.Error("session lookup failed", slog.String("session_id", sid), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SessionExistsResponse{SessionID: sid, Exists: exists})
}

// History handles GET /api/history/{sessionID}.
//
//	@Summary		Get a session's conversation history
//	@Tags			history
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session id"
//	@Success		200			{object}	HistoryResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history/{sessionID} [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sid := h.requireSession(w, r)
	if sid == "" {
		return
	}
	turns, err := h.store.History(sid)
	if err != nil {
		slog.Error("history failed", slog.String("session_id", sid), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if turns == nil {
		turns = []store.Turn{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{SessionID: sid, History: turns, Count: len(turns)})
}

// ClearHistory handles DELETE /api/history/{sessionID}.
//
//	@Summary		Clear a session's conversation history
//	@Tags			history
//	@Param			sessionID	path	string	true	"Session id"
//	@Success		204			"History cleared"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history/{sessionID} [delete]
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sid := h.requireSession(w, r)
	if sid == "" {
		return
	}
	if err := h.store.ClearHistory(sid); err != nil {
		slog.Error("clear history failed", slog.String("session_id", sid), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notes handles GET /api/notes/{sessionID}.
//
//	@Summary		List a session's saved notes
//	@Tags			notes
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session id"
//	@Success		200			{object}	NotesResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{sessionID} [get]
func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	sid := h.requireSession(w, r)
	if sid == "" {
		return
	}
	notes, err := h.store.ListNotes(sid)
	if err != nil {
		slog.Error("list notes failed", slog.String("session_id", sid), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if notes == nil {
		notes = []store.Note{}
	}
	writeJSON(w, http.StatusOK, NotesResponse{SessionID: sid, Notes: notes, Count: len(notes)})
}

// DeleteNote handles DELETE /api/notes/{sessionID}/{noteID}.
//
//	@Summary		Delete one note
//	@Tags			notes
//	@Param			sessionID	path	string	true	"Session id"
//	@Param			noteID		path	string	true	"Note id"
//	@Success		204			"Note deleted"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{sessionID}/{noteID} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sessionID")
	noteID := chi.URLParam(r, "noteID")
	if err := h.store.DeleteNote(sid, noteID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete note failed", slog.String("note_id", noteID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reminders handles GET /api/reminders/{sessionID}.
//
// Polling this endpoint is what delivers due reminders: due ones are claimed,
// queued notifications are drained, and each notification is returned exactly
// once across all polls.
//
//	@Summary		List reminders and collect due notifications
//	@Tags			reminders
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session id"
//	@Success		200			{object}	RemindersResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reminders/{sessionID} [get]
func (h *Handler) Reminders(w http.ResponseWriter, r *http.Request) {
	sid := h.requireSession(w, r)
	if sid == "" {
		return
	}

	notifs, err := h.scheduler.CheckDue(sid)
	if err != nil {
		slog.Error("check due failed", slog.String("session_id", sid), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	reminders, err := h.store.ListReminders(sid)
	if err != nil {
		slog.Error("list reminders failed", slog.String("session_id", sid), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if reminders == nil {
		reminders = []store.Reminder{}
	}
	if notifs == nil {
		notifs = []store.Notification{}
	}
	writeJSON(w, http.StatusOK, RemindersResponse{
		SessionID:          sid,
		Reminders:          reminders,
		Count:              len(reminders),
		Notifications:      notifs,
		NotificationsCount: len(notifs),
	})
}

// DeleteReminder handles DELETE /api/reminders/{sessionID}/{reminderID}.
//
//	@Summary		Delete one reminder
//	@Tags			reminders
//	@Param			sessionID	path	string	true	"Session id"
//	@Param			reminderID	path	string	true	"Reminder id"
//	@Success		204			"Reminder deleted"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reminders/{sessionID}/{reminderID} [delete]
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sessionID")
	reminderID := chi.URLParam(r, "reminderID")
	if err := h.store.DeleteReminder(sid, reminderID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete reminder failed", slog.String("reminder_id", reminderID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
