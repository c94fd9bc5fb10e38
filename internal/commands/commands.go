// Package commands implements the deterministic built-in responders: time,
// date, help, note save/list, and reminder create/list. Handlers answer with
// conversational Spanish text; malformed arguments yield a clarification
// message, never an error. Only persistence failures propagate.
package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/eckolabs/ecko/internal/reminder"
	"github.com/eckolabs/ecko/internal/store"
)

var weekdays = [...]string{
	"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado",
}

var months = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

const helpText = `Comandos disponibles:
• hora - Mostrar la hora actual
• fecha - Mostrar la fecha actual
• recordar [texto] - Guardar una nota
• mis notas - Ver tus notas guardadas
• recuérdame [tarea y hora] - Crear un recordatorio
• mis recordatorios - Ver tus recordatorios
• buscar [texto] - Buscar información en la web
• ayuda - Mostrar esta ayuda

También puedes conversar conmigo normalmente.`

// Handler executes built-in commands against the session store.
type Handler struct {
	store store.Store
	now   func() time.Time
}

// NewHandler creates a command handler.
func NewHandler(st store.Store) *Handler {
	return &Handler{store: st, now: time.Now}
}

// Time returns the current time.
func (h *Handler) Time() string {
	return fmt.Sprintf("Son las %s", h.now().Format("15:04:05"))
}

// Date returns the current date in Spanish.
func (h *Handler) Date() string {
	now := h.now()
	return fmt.Sprintf("Hoy es %s, %d de %s de %d",
		weekdays[now.Weekday()], now.Day(), months[now.Month()-1], now.Year())
}

// Help lists the available commands.
func (h *Handler) Help() string {
	return helpText
}

// SaveNote persists a note from the "recordar" command.
func (h *Handler) SaveNote(sessionID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "¿Qué te gustaría que recuerde? Usa: recordar [tu texto]", nil
	}
	if _, err := h.store.AddNote(sessionID, text); err != nil {
		return "", err
	}
	return fmt.Sprintf("Nota guardada: '%s'. Te recordaré esto más adelante.", text), nil
}

// ListNotes renders the session's saved notes.
func (h *Handler) ListNotes(sessionID string) (string, error) {
	notes, err := h.store.ListNotes(sessionID)
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return "Todavía no tienes notas guardadas. Usa 'recordar [texto]' para crear una.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Tienes %d nota(s) guardada(s):\n", len(notes))
	for i, n := range notes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, n.Content)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// CreateReminder parses the due and recurrence expressions and persists a
// reminder.
func (h *Handler) CreateReminder(sessionID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "¿Qué te gustaría que te recuerde y cuándo? Por ejemplo: recuérdame llamar a mamá en 2 horas", nil
	}

	now := h.now()
	message := reminder.StripSchedule(text)
	every := reminder.ParseRecurrence(text)

	var duePtr *time.Time
	due, ok := reminder.ParseDue(text, now)
	if ok {
		duePtr = &due
	} else if every > 0 {
		// Recurrence without an anchor time starts one interval from now.
		due = now.Add(every)
		duePtr = &due
	}

	r, err := h.store.AddReminder(sessionID, message, duePtr, every)
	if err != nil {
		return "", err
	}

	if r.DueAt == nil {
		return fmt.Sprintf("Guardé el recordatorio '%s', pero no entendí cuándo avisarte. "+
			"Puedes decirme por ejemplo 'en 30 minutos' o 'mañana a las 9:00'.", r.Message), nil
	}
	if every > 0 {
		return fmt.Sprintf("Listo, te recordaré '%s' %s, empezando el %s a las %s.",
			r.Message, describeRecurrence(every),
			r.DueAt.Format("02/01/2006"), r.DueAt.Format("15:04")), nil
	}
	return fmt.Sprintf("Listo, te recordaré '%s' el %s a las %s.",
		r.Message, r.DueAt.Format("02/01/2006"), r.DueAt.Format("15:04")), nil
}

// describeRecurrence renders an interval as natural Spanish for confirmations
// and listings.
func describeRecurrence(every time.Duration) string {
	switch {
	case every == 30*24*time.Hour:
		return "cada mes"
	case every == 7*24*time.Hour:
		return "cada semana"
	case every == 24*time.Hour:
		return "cada día"
	case every == time.Hour:
		return "cada hora"
	case every%time.Hour == 0:
		return fmt.Sprintf("cada %d horas", every/time.Hour)
	default:
		return fmt.Sprintf("cada %d minutos", every/time.Minute)
	}
}

// ListReminders renders the session's reminders.
func (h *Handler) ListReminders(sessionID string) (string, error) {
	reminders, err := h.store.ListReminders(sessionID)
	if err != nil {
		return "", err
	}
	if len(reminders) == 0 {
		return "No tienes recordatorios. Usa 'recuérdame [tarea y hora]' para crear uno.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Tienes %d recordatorio(s):\n", len(reminders))
	for i, r := range reminders {
		fmt.Fprintf(&b, "%d. %s", i+1, r.Message)
		if r.DueAt != nil {
			fmt.Fprintf(&b, " (%s)", r.DueAt.Format("02/01/2006 15:04"))
		}
		if every, err := time.ParseDuration(r.Recurrence); err == nil && every > 0 {
			fmt.Fprintf(&b, " [%s]", describeRecurrence(every))
		}
		if r.Delivered {
			b.WriteString(" ✓")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
