// Package chat orchestrates one message exchange: session resolution, command
// classification, dispatch, and history persistence.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/eckolabs/ecko/internal/ai"
	"github.com/eckolabs/ecko/internal/apperr"
	"github.com/eckolabs/ecko/internal/classify"
	"github.com/eckolabs/ecko/internal/commands"
	"github.com/eckolabs/ecko/internal/search"
	"github.com/eckolabs/ecko/internal/store"
)

const searchUnavailableReply = "La búsqueda no está disponible en este momento. Puedo ayudarte con otras cosas: escribe 'ayuda' para ver los comandos."

// Reply is the outcome of one handled message.
type Reply struct {
	Response  string    `json:"response"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Service wires the store, command handlers, search, and the AI responder into
// the message-handling pipeline.
type Service struct {
	store     store.Store
	responder *ai.Responder
	search    *search.Adapter
	commands  *commands.Handler
}

// NewService creates the chat service. searchAdapter may be nil when search is
// disabled; the responder is always present and degrades internally.
func NewService(st store.Store, responder *ai.Responder, searchAdapter *search.Adapter, cmds *commands.Handler) *Service {
	return &Service{store: st, responder: responder, search: searchAdapter, commands: cmds}
}

// HandleMessage runs the full pipeline for one user message. An empty
// sessionID starts a fresh session; an unknown one fails with
// apperr.ErrSessionNotFound. Both turns of the exchange are persisted in
// order, so a later history read shows user before assistant.
func (s *Service) HandleMessage(ctx context.Context, sessionID, message string) (Reply, error) {
	if sessionID == "" {
		id, err := s.store.CreateSession()
		if err != nil {
			return Reply{}, err
		}
		sessionID = id
	} else {
		exists, err := s.store.SessionExists(sessionID)
		if err != nil {
			return Reply{}, err
		}
		if !exists {
			return Reply{}, apperr.ErrSessionNotFound
		}
	}

	// History is read before the new turn lands so the prompt window holds
	// prior turns only; the responder appends the current message itself.
	history, err := s.store.History(sessionID)
	if err != nil {
		return Reply{}, err
	}

	if _, err := s.store.AppendTurn(sessionID, store.RoleUser, message); err != nil {
		return Reply{}, err
	}

	response, err := s.dispatch(ctx, sessionID, message, history)
	if err != nil {
		return Reply{}, err
	}

	turn, err := s.store.AppendTurn(sessionID, store.RoleAssistant, response)
	if err != nil {
		return Reply{}, err
	}

	return Reply{Response: response, SessionID: sessionID, Timestamp: turn.Timestamp}, nil
}

func (s *Service) dispatch(ctx context.Context, sessionID, message string, history []store.Turn) (string, error) {
	res := classify.Classify(message)

	switch res.Kind {
	case classify.KindTime:
		return s.commands.Time(), nil
	case classify.KindDate:
		return s.commands.Date(), nil
	case classify.KindHelp:
		return s.commands.Help(), nil
	case classify.KindNote:
		return s.commands.SaveNote(sessionID, res.Args)
	case classify.KindNoteList:
		return s.commands.ListNotes(sessionID)
	case classify.KindReminder:
		return s.commands.CreateReminder(sessionID, res.Args)
	case classify.KindReminderList:
		return s.commands.ListReminders(sessionID)
	case classify.KindSearch:
		name, err := s.store.ProfileName(sessionID)
		if err != nil {
			return "", err
		}
		return s.handleSearch(ctx, message, res.Args, history, name), nil
	default:
		return s.converse(ctx, sessionID, message, history)
	}
}

// converse handles free-form messages. A self-introduction is remembered
// before the reply is produced, so "me llamo Ana" is acknowledged by name and
// later messages get the stored name too.
func (s *Service) converse(ctx context.Context, sessionID, message string, history []store.Turn) (string, error) {
	name, err := s.store.ProfileName(sessionID)
	if err != nil {
		return "", err
	}

	if introduced := extractName(message); introduced != "" && introduced != name {
		if err := s.store.SetProfileName(sessionID, introduced); err != nil {
			return "", err
		}
		name = introduced
		if !s.responder.Enabled() {
			return fmt.Sprintf("¡Mucho gusto, %s! Lo recordaré para nuestras conversaciones.", name), nil
		}
	}

	return s.responder.Respond(ctx, history, message, "", name), nil
}

// handleSearch answers a search-classified message. Disabled search degrades
// to a fixed notice; with AI enabled the results ground the model's answer,
// otherwise they are rendered directly.
func (s *Service) handleSearch(ctx context.Context, message, query string, history []store.Turn, userName string) string {
	if s.search == nil {
		return searchUnavailableReply
	}
	if query == "" {
		return "¿Qué te gustaría buscar? Usa: buscar [texto]"
	}

	results := s.search.Search(ctx, query)

	if s.responder.Enabled() {
		if prompt := search.FormatForPrompt(results); prompt != "" {
			return s.responder.Respond(ctx, history, message, prompt, userName)
		}
	}
	return search.FormatForUser(results)
}

// SessionInfo is the creation payload for a fresh session.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates an empty session.
func (s *Service) NewSession() (SessionInfo, error) {
	id, err := s.store.CreateSession()
	if err != nil {
		return SessionInfo{}, fmt.Errorf("chat: new session: %w", err)
	}
	return SessionInfo{SessionID: id, CreatedAt: time.Now().UTC()}, nil
}
