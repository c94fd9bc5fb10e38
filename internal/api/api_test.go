package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eckolabs/ecko/internal/ai"
	"github.com/eckolabs/ecko/internal/chat"
	"github.com/eckolabs/ecko/internal/commands"
	"github.com/eckolabs/ecko/internal/reminder"
	"github.com/eckolabs/ecko/internal/sse"
	"github.com/eckolabs/ecko/internal/store"
	"github.com/eckolabs/ecko/internal/testutil"
)

type testServer struct {
	*httptest.Server
	store *store.SQLite
}

func newTestServer(t *testing.T, authEnabled bool, token string) *testServer {
	t.Helper()
	st := testutil.TestStore(t)

	svc := chat.NewService(st, ai.NewResponder(nil, 8), nil, commands.NewHandler(st))
	broker := sse.NewBroker()
	t.Cleanup(broker.Close)

	h := NewHandler(svc, st, reminder.NewScheduler(st))
	r := chi.NewRouter()
	r.Mount("/api", NewRouter(h, authEnabled, token, broker))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: st}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return v
}

func TestChat_RoundTrip(t *testing.T) {
	ts := newTestServer(t, false, "")

	resp, body := ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hola"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	reply := decode[ChatResponse](t, body)
	if reply.SessionID == "" || reply.Response == "" {
		t.Fatalf("reply = %+v", reply)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/history/"+reply.SessionID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d", resp.StatusCode)
	}
	hist := decode[HistoryResponse](t, body)
	if hist.Count != 2 || len(hist.History) != 2 {
		t.Fatalf("history = %+v", hist)
	}
	if hist.History[0].Role != store.RoleUser || hist.History[1].Role != store.RoleAssistant {
		t.Errorf("turn roles = %s, %s", hist.History[0].Role, hist.History[1].Role)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	ts := newTestServer(t, false, "")

	resp, _ := ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/chat", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing message status = %d, want 400", resp.StatusCode)
	}
}

func TestChat_UnknownSession(t *testing.T) {
	ts := newTestServer(t, false, "")

	resp, _ := ts.do(t, http.MethodPost, "/api/chat",
		map[string]string{"message": "hola", "session_id": "no-such"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSessions_CreateAndExists(t *testing.T) {
	ts := newTestServer(t, false, "")

	resp, body := ts.do(t, http.MethodPost, "/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	created := decode[SessionResponse](t, body)
	if created.SessionID == "" {
		t.Fatal("empty session id")
	}

	resp, body = ts.do(t, http.MethodGet, "/api/sessions/"+created.SessionID+"/exists", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("exists status = %d", resp.StatusCode)
	}
	if got := decode[SessionExistsResponse](t, body); !got.Exists {
		t.Errorf("exists = %+v", got)
	}

	_, body = ts.do(t, http.MethodGet, "/api/sessions/ghost/exists", nil)
	if got := decode[SessionExistsResponse](t, body); got.Exists {
		t.Errorf("ghost exists = %+v", got)
	}
}

func TestHistory_UnknownSession(t *testing.T) {
	ts := newTestServer(t, false, "")

	resp, _ := ts.do(t, http.MethodGet, "/api/history/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHistory_Clear(t *testing.T) {
	ts := newTestServer(t, false, "")

	_, body := ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hola"})
	sid := decode[ChatResponse](t, body).SessionID

	resp, _ := ts.do(t, http.MethodDelete, "/api/history/"+sid, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	_, body = ts.do(t, http.MethodGet, "/api/history/"+sid, nil)
	if hist := decode[HistoryResponse](t, body); hist.Count != 0 {
		t.Errorf("count after clear = %d", hist.Count)
	}
}

func TestNotes_ListAndDelete(t *testing.T) {
	ts := newTestServer(t, false, "")

	_, body := ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "recordar comprar pan"})
	sid := decode[ChatResponse](t, body).SessionID

	resp, body := ts.do(t, http.MethodGet, "/api/notes/"+sid, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("notes status = %d", resp.StatusCode)
	}
	notes := decode[NotesResponse](t, body)
	if notes.Count != 1 || notes.Notes[0].Content != "comprar pan" {
		t.Fatalf("notes = %+v", notes)
	}

	resp, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/notes/%s/%s", sid, notes.Notes[0].ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/notes/%s/%s", sid, notes.Notes[0].ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("double delete status = %d, want 404", resp.StatusCode)
	}
}

func TestReminders_PollDeliversOnce(t *testing.T) {
	ts := newTestServer(t, false, "")

	_, body := ts.do(t, http.MethodPost, "/api/sessions", nil)
	sid := decode[SessionResponse](t, body).SessionID

	past := time.Now().UTC().Add(-time.Minute)
	if _, err := ts.store.AddReminder(sid, "tomar agua", &past, 0); err != nil {
		t.Fatalf("add reminder: %v", err)
	}

	resp, body := ts.do(t, http.MethodGet, "/api/reminders/"+sid, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[RemindersResponse](t, body)
	if got.NotificationsCount != 1 || got.Notifications[0].Message != "tomar agua" {
		t.Fatalf("first poll = %+v", got)
	}
	if got.Count != 1 || !got.Reminders[0].Delivered {
		t.Errorf("reminder state = %+v", got.Reminders)
	}

	_, body = ts.do(t, http.MethodGet, "/api/reminders/"+sid, nil)
	if got := decode[RemindersResponse](t, body); got.NotificationsCount != 0 {
		t.Errorf("second poll notifications = %+v", got.Notifications)
	}
}

func TestReminders_DeleteUnknown(t *testing.T) {
	ts := newTestServer(t, false, "")

	_, body := ts.do(t, http.MethodPost, "/api/sessions", nil)
	sid := decode[SessionResponse](t, body).SessionID

	resp, _ := ts.do(t, http.MethodDelete, "/api/reminders/"+sid+"/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAuth_BearerToken(t *testing.T) {
	ts := newTestServer(t, true, "secret")

	resp, _ := ts.do(t, http.MethodPost, "/api/sessions", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusCreated {
		t.Errorf("with token status = %d, want 201", resp2.StatusCode)
	}
}
