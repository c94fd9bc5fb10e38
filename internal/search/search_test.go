package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeProvider struct {
	name string
	res  *Results
	err  error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(_ context.Context, query string, _ int) (*Results, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.res
	res.Query = query
	return &res, nil
}

func TestAdapter_UsesPrimary(t *testing.T) {
	primary := &fakeProvider{name: "primary", res: &Results{Items: []Item{{Title: "hit"}}}}
	fallback := &fakeProvider{name: "fallback", res: &Results{Items: []Item{{Title: "other"}}}}
	a := NewAdapter(primary, fallback, 5)

	res := a.Search(context.Background(), "golang")
	if len(res.Items) != 1 || res.Items[0].Title != "hit" {
		t.Errorf("expected primary result, got %+v", res.Items)
	}
}

func TestAdapter_FallsBackOnError(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("boom")}
	fallback := &fakeProvider{name: "fallback", res: &Results{Items: []Item{{Title: "backup"}}}}
	a := NewAdapter(primary, fallback, 5)

	res := a.Search(context.Background(), "golang")
	if len(res.Items) != 1 || res.Items[0].Title != "backup" {
		t.Errorf("expected fallback result, got %+v", res.Items)
	}
}

func TestAdapter_AbsorbsTotalFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("boom")}
	fallback := &fakeProvider{name: "fallback", err: errors.New("also boom")}
	a := NewAdapter(primary, fallback, 5)

	res := a.Search(context.Background(), "golang")
	if res == nil {
		t.Fatal("adapter must never return nil")
	}
	if len(res.Items) != 0 {
		t.Errorf("expected empty results, got %+v", res.Items)
	}
}

func TestAdapter_EmptyQuery(t *testing.T) {
	primary := &fakeProvider{name: "primary", res: &Results{Items: []Item{{Title: "x"}}}}
	a := NewAdapter(primary, nil, 5)

	res := a.Search(context.Background(), "   ")
	if len(res.Items) != 0 {
		t.Errorf("empty query should yield no results, got %+v", res.Items)
	}
}

func TestAdapter_CapsResultCount(t *testing.T) {
	many := &Results{Items: []Item{{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"}}}
	a := NewAdapter(&fakeProvider{name: "p", res: many}, nil, 2)

	res := a.Search(context.Background(), "q")
	if len(res.Items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(res.Items))
	}
}

func TestTavily_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		fmt.Fprint(w, `{"answer":"Go is a language","results":[
			{"title":"Go","url":"https://go.dev","content":"The Go programming language"},
			{"title":"Tour","url":"https://go.dev/tour","content":"A tour of Go"}]}`)
	}))
	defer srv.Close()

	p := NewTavily("key", 2*time.Second)
	p.baseURL = srv.URL

	res, err := p.Search(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Answer != "Go is a language" {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(res.Items) != 2 || res.Items[0].URL != "https://go.dev" {
		t.Errorf("items = %+v", res.Items)
	}
}

func TestTavily_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewTavily("bad-key", 2*time.Second)
	p.baseURL = srv.URL

	if _, err := p.Search(context.Background(), "golang", 5); err == nil {
		t.Error("expected error on 401")
	}
}

func TestDuckDuckGo_ParsesHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a rel="nofollow" class="result__a" href="https://go.dev">The <b>Go</b> language</a>
			<a rel="nofollow" class="result__a" href="https://pkg.go.dev">Package index</a>
		</body></html>`)
	}))
	defer srv.Close()

	p := NewDuckDuckGo(2 * time.Second)
	p.baseURL = srv.URL

	res, err := p.Search(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(res.Items))
	}
	if res.Items[0].Title != "The Go language" {
		t.Errorf("title = %q (tags should be stripped)", res.Items[0].Title)
	}
}

func TestFormatForUser_NoResults(t *testing.T) {
	msg := FormatForUser(&Results{Query: "x", Items: []Item{}})
	if !strings.Contains(msg, "No pude encontrar") {
		t.Errorf("degraded message = %q", msg)
	}
}

func TestFormatForUser_TruncatesSnippets(t *testing.T) {
	long := strings.Repeat("a", 400)
	msg := FormatForUser(&Results{Query: "x", Items: []Item{{Title: "T", Snippet: long}}})
	if strings.Contains(msg, long) {
		t.Error("snippet should be truncated for user display")
	}
	if !strings.Contains(msg, "...") {
		t.Error("truncated snippet should carry an ellipsis")
	}
}

func TestFormatForPrompt_EmptyWhenNothingFound(t *testing.T) {
	if got := FormatForPrompt(&Results{Query: "x", Items: []Item{}}); got != "" {
		t.Errorf("prompt block = %q, want empty", got)
	}
}
