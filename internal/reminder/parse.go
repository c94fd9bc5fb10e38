// Package reminder parses natural Spanish due expressions and delivers due
// reminders exactly once, via client polling and a background watcher.
package reminder

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	minutesRe  = regexp.MustCompile(`(?:en|dentro de|ahora en)\s+(\d+)\s+minutos?`)
	hoursRe    = regexp.MustCompile(`(?:en|dentro de|ahora en)\s+(\d+)\s+horas?`)
	oneMinRe   = regexp.MustCompile(`(?:en|dentro de|ahora en)\s+un\s+minuto`)
	oneHourRe  = regexp.MustCompile(`(?:en|dentro de|ahora en)\s+una\s+hora`)
	halfHourRe = regexp.MustCompile(`(?:en|dentro de|ahora en)\s+media\s+hora`)
	tomorrowRe = regexp.MustCompile(`mañana\s+(?:a las\s+)?(\d{1,2}):(\d{2})`)
	clockRe    = regexp.MustCompile(`(?:a las\s+)?(\d{1,2}):(\d{2})`)
	compactRe  = regexp.MustCompile(`\b(\d{4})\b`)
)

// ParseDue extracts a due time from natural Spanish text, e.g. "en 2 horas",
// "mañana a las 9:00", "hoy 14:38", "1445". Returns false when no time
// expression is recognized; the reminder is then stored without a due time.
func ParseDue(text string, now time.Time) (time.Time, bool) {
	msg := strings.ToLower(strings.TrimSpace(text))

	if m := minutesRe.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * time.Minute), true
	}
	if oneMinRe.MatchString(msg) {
		return now.Add(time.Minute), true
	}
	if m := hoursRe.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * time.Hour), true
	}
	if oneHourRe.MatchString(msg) {
		return now.Add(time.Hour), true
	}
	if halfHourRe.MatchString(msg) {
		return now.Add(30 * time.Minute), true
	}

	if m := tomorrowRe.FindStringSubmatch(msg); m != nil {
		if t, ok := atClock(now.AddDate(0, 0, 1), m[1], m[2]); ok {
			return t, true
		}
	}

	if m := clockRe.FindStringSubmatch(msg); m != nil {
		if t, ok := atClock(now, m[1], m[2]); ok {
			// A time that already passed today means tomorrow.
			if !t.After(now) {
				t = t.AddDate(0, 0, 1)
			}
			return t, true
		}
	}

	// Compact "HHMM" form, e.g. "1445".
	if m := compactRe.FindStringSubmatch(msg); m != nil {
		if t, ok := atClock(now, m[1][:2], m[1][2:]); ok {
			if !t.After(now) {
				t = t.AddDate(0, 0, 1)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

var (
	everyNMinRe  = regexp.MustCompile(`cada\s+(\d+)\s+minutos?`)
	everyNHourRe = regexp.MustCompile(`cada\s+(\d+)\s+horas?`)
	everyDayRe   = regexp.MustCompile(`cada\s+día|todos\s+los\s+días|diario`)
	everyWeekRe  = regexp.MustCompile(`cada\s+semana|semanal`)
	everyMonthRe = regexp.MustCompile(`cada\s+mes|mensual`)
	weekdayRe    = regexp.MustCompile(`(?:cada|todos\s+los)\s+(?:lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bados?|domingos?)`)
	everyHourRe  = regexp.MustCompile(`cada\s+hora`)
)

// ParseRecurrence extracts a repetition interval from natural Spanish text,
// e.g. "cada día", "todos los lunes", "cada 2 horas". Returns 0 when the text
// carries no recurrence; a month is approximated as 30 days.
func ParseRecurrence(text string) time.Duration {
	msg := strings.ToLower(strings.TrimSpace(text))

	if m := everyNMinRe.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	if m := everyNHourRe.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	if everyHourRe.MatchString(msg) {
		return time.Hour
	}
	if everyDayRe.MatchString(msg) {
		return 24 * time.Hour
	}
	if everyWeekRe.MatchString(msg) || weekdayRe.MatchString(msg) {
		return 7 * 24 * time.Hour
	}
	if everyMonthRe.MatchString(msg) {
		return 30 * 24 * time.Hour
	}
	return 0
}

func atClock(day time.Time, hh, mm string) (time.Time, bool) {
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), true
}

var schedulePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:hoy|mañana)\s+(?:a las\s+)?`),
	regexp.MustCompile(`\ba las\s+\d{1,2}(?::\d{2})?\s*`),
	regexp.MustCompile(`\b(?:en|dentro de|ahora en)\s+(?:\d+|un|una|media)\s+(?:minutos?|horas?|hora)\b`),
	regexp.MustCompile(`\b\d{1,2}:\d{2}\b`),
	regexp.MustCompile(`\b(?:cada|todos los)\s+\d+\s+(?:minutos?|horas?)\b`),
	regexp.MustCompile(`\b(?:cada|todos los)\s+(?:día(?:s)?|semanas?|mes(?:es)?|hora|lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bados?|domingos?)\b`),
	regexp.MustCompile(`\b(?:diario|semanal|mensual)\b`),
	regexp.MustCompile(`^por favor\s+`),
}

var quePrefixRe = regexp.MustCompile(`^que\s+(?:diga\s+)?`)

// StripSchedule removes recognized time expressions from the reminder text so
// the stored message reads as the task itself ("llamar a mamá" rather than
// "llamar a mamá en 2 horas"). Falls back to the original text when stripping
// would leave nothing meaningful.
func StripSchedule(text string) string {
	msg := strings.TrimSpace(text)
	for _, re := range schedulePatterns {
		msg = re.ReplaceAllString(msg, "")
	}
	msg = quePrefixRe.ReplaceAllString(strings.TrimSpace(msg), "")
	msg = strings.Join(strings.Fields(msg), " ")
	if len([]rune(msg)) < 3 {
		return strings.TrimSpace(text)
	}
	return msg
}
