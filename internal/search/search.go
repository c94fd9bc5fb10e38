// Package search provides web search with provider fallback. The adapter
// never returns an error to callers: any provider failure degrades to an
// empty result set that the chat layer renders as a graceful message.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Item is one normalized search hit.
type Item struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Results is the normalized outcome of one query. Items is empty when nothing
// was found or every provider failed.
type Results struct {
	Query  string `json:"query"`
	Answer string `json:"answer,omitempty"`
	Items  []Item `json:"items"`
}

// Provider is one search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) (*Results, error)
}

const (
	defaultMaxResults = 5
	userSnippetLen    = 200
	promptSnippetLen  = 500
)

// Adapter tries the primary provider and transparently falls back to the
// secondary (keyless) one. Either may be nil.
type Adapter struct {
	primary    Provider
	fallback   Provider
	maxResults int
}

// NewAdapter creates an adapter over the given providers.
func NewAdapter(primary, fallback Provider, maxResults int) *Adapter {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Adapter{primary: primary, fallback: fallback, maxResults: maxResults}
}

// Search runs the query against the configured providers. It always returns a
// non-nil Results; network errors are logged and absorbed.
func (a *Adapter) Search(ctx context.Context, query string) *Results {
	query = strings.TrimSpace(query)
	empty := &Results{Query: query, Items: []Item{}}
	if query == "" {
		return empty
	}

	for _, p := range []Provider{a.primary, a.fallback} {
		if p == nil {
			continue
		}
		res, err := p.Search(ctx, query, a.maxResults)
		if err != nil {
			slog.Warn("search provider failed",
				slog.String("provider", p.Name()),
				slog.String("query", query),
				slog.String("error", err.Error()))
			continue
		}
		if res != nil && (len(res.Items) > 0 || res.Answer != "") {
			if len(res.Items) > a.maxResults {
				res.Items = res.Items[:a.maxResults]
			}
			return res
		}
	}
	return empty
}

// FormatForUser renders results as a short Spanish answer for direct display.
func FormatForUser(r *Results) string {
	if r == nil || (len(r.Items) == 0 && r.Answer == "") {
		return "No pude encontrar información sobre eso. ¿Quieres que lo intente con otras palabras?"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Esto es lo que encontré sobre \"%s\":\n", r.Query)
	if r.Answer != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Answer)
	}
	for i, it := range r.Items {
		fmt.Fprintf(&b, "\n%d. %s", i+1, it.Title)
		if s := truncate(it.Snippet, userSnippetLen); s != "" {
			fmt.Fprintf(&b, "\n   %s", s)
		}
		if it.URL != "" {
			fmt.Fprintf(&b, "\n   %s", it.URL)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatForPrompt renders results as a context block for AI augmentation.
func FormatForPrompt(r *Results) string {
	if r == nil || (len(r.Items) == 0 && r.Answer == "") {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Resultados de búsqueda para: %s\n", r.Query)
	if r.Answer != "" {
		fmt.Fprintf(&b, "Respuesta resumida: %s\n", r.Answer)
	}
	for i, it := range r.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Title)
		if s := truncate(it.Snippet, promptSnippetLen); s != "" {
			fmt.Fprintf(&b, "   %s\n", s)
		}
		if it.URL != "" {
			fmt.Fprintf(&b, "   URL: %s\n", it.URL)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
