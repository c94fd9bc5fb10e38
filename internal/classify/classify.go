// Package classify decides which handling path a user message takes:
// an explicit command, a web search, or the AI/canned conversational path.
package classify

import "strings"

// Kind is the handling path selected for a message.
type Kind int

const (
	// KindAI routes to the AI responder, which degrades to canned replies.
	KindAI Kind = iota
	KindTime
	KindDate
	KindHelp
	KindNote
	KindNoteList
	KindReminder
	KindReminderList
	KindSearch
)

// Result is the classification outcome. Args carries the command argument or
// the search query, trimmed but in the user's original casing.
type Result struct {
	Kind Kind
	Args string
}

// Explicit command verbs, checked in order. Verbs with arguments match as a
// word prefix ("recordar comprar pan"); bare verbs match exactly.
var argVerbs = []struct {
	verb string
	kind Kind
}{
	{"recuérdame", KindReminder},
	{"recuerdame", KindReminder},
	{"avísame", KindReminder},
	{"avisame", KindReminder},
	{"recordar", KindNote},
	{"buscar", KindSearch},
	{"busca", KindSearch},
	{"noticias", KindSearch},
}

var bareVerbs = map[string]Kind{
	"hora":              KindTime,
	"fecha":             KindDate,
	"ayuda":             KindHelp,
	"mis notas":         KindNoteList,
	"notas":             KindNoteList,
	"mis recordatorios": KindReminderList,
	"recordatorios":     KindReminderList,
}

// Interrogative markers and recency cues for the "needs current information"
// heuristic. Both must be present; false negatives fall through to the AI
// path, which is acceptable.
var interrogatives = []string{
	"qué", "que ", "cuándo", "cuando", "cómo", "como",
	"quién", "quien", "cuál", "cual", "dónde", "donde",
	"últimas", "ultimas", "noticias",
}

var recencyCues = []string{
	"hoy", "ahora", "recientemente", "actualidad", "actual", "este año",
}

// Classify inspects raw user text and selects a handling path.
// Matching is deterministic, case-insensitive, and whitespace-trimmed.
// Explicit commands always win over the recency heuristic. Args is sliced
// from the raw text, not the lowered copy, so note contents, reminder
// messages, and search queries keep the user's casing. Lowercasing Spanish
// text never changes its byte length, so the lowered offsets are valid in
// the raw string.
func Classify(text string) Result {
	raw := strings.TrimSpace(text)
	msg := strings.ToLower(raw)
	if msg == "" {
		return Result{Kind: KindAI}
	}

	if kind, ok := bareVerbs[msg]; ok {
		return Result{Kind: kind}
	}
	// "hora"/"fecha"/"ayuda" also match as a leading word ("hora por favor").
	for verb, kind := range bareVerbs {
		if strings.HasPrefix(msg, verb+" ") {
			return Result{Kind: kind}
		}
	}

	for _, v := range argVerbs {
		if msg == v.verb {
			return Result{Kind: v.kind}
		}
		if strings.HasPrefix(msg, v.verb+" ") {
			args := strings.TrimSpace(raw[len(v.verb):])
			switch v.verb {
			case "noticias":
				args = "noticias " + args
			}
			return Result{Kind: v.kind, Args: args}
		}
	}

	// "qué es X" / "que es X" is a definition lookup.
	for _, p := range []string{"qué es ", "que es "} {
		if strings.HasPrefix(msg, p) {
			return Result{Kind: KindSearch, Args: "qué es " + strings.TrimSpace(raw[len(p):])}
		}
	}

	if needsCurrentInfo(msg) {
		return Result{Kind: KindSearch, Args: raw}
	}

	return Result{Kind: KindAI}
}

func needsCurrentInfo(msg string) bool {
	return containsAny(msg, interrogatives) && containsAny(msg, recencyCues)
}

func containsAny(msg string, words []string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
