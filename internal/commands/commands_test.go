package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/eckolabs/ecko/internal/testutil"
)

// Monday, March 10 2025, 14:00 UTC.
var fixed = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func newFixedHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	st := testutil.TestStore(t)
	h := NewHandler(st)
	h.now = func() time.Time { return fixed }
	return h, testutil.NewSession(t, st)
}

func TestTime(t *testing.T) {
	h, _ := newFixedHandler(t)
	if got := h.Time(); got != "Son las 14:00:00" {
		t.Errorf("Time() = %q", got)
	}
}

func TestDate(t *testing.T) {
	h, _ := newFixedHandler(t)
	if got := h.Date(); got != "Hoy es Lunes, 10 de marzo de 2025" {
		t.Errorf("Date() = %q", got)
	}
}

func TestHelp(t *testing.T) {
	h, _ := newFixedHandler(t)
	got := h.Help()
	for _, cmd := range []string{"hora", "fecha", "recordar", "recuérdame", "buscar", "ayuda"} {
		if !strings.Contains(got, cmd) {
			t.Errorf("help text missing %q", cmd)
		}
	}
}

func TestSaveNote(t *testing.T) {
	h, sid := newFixedHandler(t)

	got, err := h.SaveNote(sid, "comprar leche")
	if err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	if !strings.Contains(got, "comprar leche") {
		t.Errorf("confirmation = %q", got)
	}

	list, err := h.ListNotes(sid)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if !strings.Contains(list, "1. comprar leche") {
		t.Errorf("list = %q", list)
	}
}

func TestSaveNote_EmptyAsksForText(t *testing.T) {
	h, sid := newFixedHandler(t)

	got, err := h.SaveNote(sid, "   ")
	if err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	if !strings.Contains(got, "recordar [tu texto]") {
		t.Errorf("clarification = %q", got)
	}

	list, _ := h.ListNotes(sid)
	if !strings.Contains(list, "Todavía no tienes notas") {
		t.Errorf("empty prompt must not create a note, list = %q", list)
	}
}

func TestCreateReminder_WithDue(t *testing.T) {
	h, sid := newFixedHandler(t)

	got, err := h.CreateReminder(sid, "llamar a mamá en 2 horas")
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	if !strings.Contains(got, "llamar a mamá") || !strings.Contains(got, "16:00") {
		t.Errorf("confirmation = %q", got)
	}

	list, err := h.ListReminders(sid)
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	if !strings.Contains(list, "llamar a mamá") || !strings.Contains(list, "10/03/2025 16:00") {
		t.Errorf("list = %q", list)
	}
}

func TestCreateReminder_Recurring(t *testing.T) {
	h, sid := newFixedHandler(t)

	got, err := h.CreateReminder(sid, "hacer ejercicio cada día a las 7:00")
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	if !strings.Contains(got, "hacer ejercicio") || !strings.Contains(got, "cada día") {
		t.Errorf("confirmation = %q", got)
	}
	// 7:00 already passed on the fixed day; first firing is tomorrow.
	if !strings.Contains(got, "11/03/2025") || !strings.Contains(got, "07:00") {
		t.Errorf("confirmation = %q, want first firing tomorrow at 07:00", got)
	}

	list, err := h.ListReminders(sid)
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	if !strings.Contains(list, "[cada día]") {
		t.Errorf("list = %q, want recurrence marker", list)
	}
}

func TestCreateReminder_RecurringWithoutAnchorStartsOneIntervalOut(t *testing.T) {
	h, sid := newFixedHandler(t)

	got, err := h.CreateReminder(sid, "tomar agua cada 2 horas")
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	// Fixed clock is 14:00, so the first firing lands at 16:00.
	if !strings.Contains(got, "cada 2 horas") || !strings.Contains(got, "16:00") {
		t.Errorf("confirmation = %q", got)
	}
}

func TestCreateReminder_UnparsedDueStillSaves(t *testing.T) {
	h, sid := newFixedHandler(t)

	got, err := h.CreateReminder(sid, "regar las plantas algún día")
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	if !strings.Contains(got, "no entendí cuándo") {
		t.Errorf("confirmation = %q", got)
	}

	list, _ := h.ListReminders(sid)
	if !strings.Contains(list, "regar las plantas") {
		t.Errorf("reminder without due time missing from list: %q", list)
	}
}

func TestCreateReminder_EmptyAsksForDetails(t *testing.T) {
	h, sid := newFixedHandler(t)

	got, err := h.CreateReminder(sid, "")
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	if !strings.Contains(got, "recuérdame") {
		t.Errorf("clarification = %q", got)
	}
}

func TestListReminders_Empty(t *testing.T) {
	h, sid := newFixedHandler(t)

	got, err := h.ListReminders(sid)
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	if !strings.Contains(got, "No tienes recordatorios") {
		t.Errorf("empty list = %q", got)
	}
}
