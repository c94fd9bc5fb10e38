// Package ai generates assistant replies. With a configured completion client
// it builds a bounded prompt from recent history; when the client is absent or
// fails it degrades to deterministic canned templates and never errors.
package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/eckolabs/ecko/internal/store"
)

// Message is one prompt entry in chat-completion format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is an external completion capability.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

const systemPrompt = `Eres Ecko, un asistente virtual personal amigable y útil.
Responde en español de manera conversacional, natural y concisa.
Sé amigable pero profesional. Si no sabes algo, admítelo honestamente.
Mantén las respuestas cortas y relevantes (máximo 2-3 frases).
Cuando el usuario te diga su nombre, recuérdalo y úsalo en futuras conversaciones.`

const defaultHistoryWindow = 8

// Responder turns user text plus recent history into a reply.
type Responder struct {
	client Client
	window int
}

// NewResponder creates a responder. A nil client disables the external
// capability entirely; Respond then short-circuits to canned replies without
// any network I/O.
func NewResponder(client Client, historyWindow int) *Responder {
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	return &Responder{client: client, window: historyWindow}
}

// Enabled reports whether the external capability is configured.
func (r *Responder) Enabled() bool { return r.client != nil }

// Respond produces the assistant reply. searchContext, when non-empty, is
// injected into the prompt so the model can ground its answer; userName, when
// known, lets both paths address the user by name. Failures of the external
// call are absorbed here; the caller always gets usable text.
func (r *Responder) Respond(ctx context.Context, history []store.Turn, userText, searchContext, userName string) string {
	if r.client == nil {
		return cannedReply(userText, len(history), userName)
	}

	text, err := r.client.Complete(ctx, r.buildPrompt(history, userText, searchContext, userName))
	if err != nil {
		slog.Warn("completion call failed, using canned reply", slog.String("error", err.Error()))
		return cannedReply(userText, len(history), userName)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return cannedReply(userText, len(history), userName)
	}
	return text
}

// buildPrompt assembles system preamble + sliding history window + optional
// search context + the current user message. Oldest turns drop first.
func (r *Responder) buildPrompt(history []store.Turn, userText, searchContext, userName string) []Message {
	msgs := make([]Message, 0, len(history)+4)
	msgs = append(msgs, Message{Role: "system", Content: systemPrompt})
	if userName != "" {
		msgs = append(msgs, Message{Role: "system", Content: "El usuario se llama " + userName + "."})
	}

	recent := history
	if len(recent) > r.window {
		recent = recent[len(recent)-r.window:]
	}
	for _, t := range recent {
		if t.Role != store.RoleUser && t.Role != store.RoleAssistant {
			continue
		}
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}

	if searchContext != "" {
		msgs = append(msgs, Message{
			Role:    "system",
			Content: "Usa la siguiente información de una búsqueda web para responder:\n" + searchContext,
		})
	}

	msgs = append(msgs, Message{Role: "user", Content: userText})
	return msgs
}
