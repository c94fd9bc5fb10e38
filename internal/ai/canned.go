package ai

import (
	"fmt"
	"strings"
)

// Canned reply tables for the disabled/degraded path. Selection is keyed
// loosely off the input and is fully deterministic for a given message and
// history length.

var greetings = []string{
	"hola", "hi", "hey", "buenos días", "buenas tardes", "buenas noches", "buen día",
}

var farewells = []string{
	"adiós", "bye", "hasta luego", "nos vemos", "chao", "chau", "hasta pronto",
}

var thanksWords = []string{"gracias", "thanks", "thank you", "grax", "thx"}

var questionWords = []string{
	"qué", "cómo", "cuándo", "dónde", "por qué", "quién", "cuál", "cuáles",
}

var genericReplies = []string{
	"Interesante, cuéntame más.",
	"Entiendo. ¿Hay algo específico en lo que pueda ayudarte con eso?",
	"Eso suena bien. ¿Qué más puedo hacer por ti?",
	"Claro, estoy aquí para ayudarte. ¿Hay algo más?",
	"Gracias por compartir eso conmigo. Sigo aprendiendo contigo. ¿En qué más puedo ayudarte?",
	"Notado. A medida que aprendo, podré ayudarte mejor. ¿Hay algo específico que necesites ahora?",
	"Mmm, interesante. ¿Quieres que haga algo con esa información?",
	"¡Claro! Estoy escuchando. ¿Qué más te gustaría compartir?",
}

// cannedReply picks a deterministic template for the given message. userName,
// when known, personalizes greetings and answers "cómo me llamo".
func cannedReply(text string, historyLen int, userName string) string {
	msg := strings.ToLower(strings.TrimSpace(text))

	for _, g := range greetings {
		if msg == g || strings.HasPrefix(msg, g+" ") || strings.HasSuffix(msg, " "+g) {
			if userName != "" {
				return fmt.Sprintf("¡Hola, %s! ¿En qué puedo ayudarte hoy?", userName)
			}
			if historyLen > 2 {
				return "¡Hola de nuevo! ¿Qué tal? ¿En qué más puedo ayudarte?"
			}
			return "¡Hola! Soy Ecko, tu asistente virtual. Es un placer conocerte. ¿En qué puedo ayudarte hoy?"
		}
	}

	for _, f := range farewells {
		if strings.Contains(msg, f) {
			return "¡Hasta luego! Fue un placer ayudarte. Vuelve cuando quieras, estaré aquí."
		}
	}

	for _, w := range thanksWords {
		if strings.Contains(msg, w) {
			return "¡De nada! Estoy aquí para ayudarte siempre que lo necesites. ¿Hay algo más?"
		}
	}

	if userName != "" && (strings.Contains(msg, "cómo me llamo") || strings.Contains(msg, "como me llamo") ||
		strings.Contains(msg, "cuál es mi nombre") || strings.Contains(msg, "cual es mi nombre")) {
		return fmt.Sprintf("Te llamas %s. ¡Claro que lo recuerdo!", userName)
	}

	switch {
	case strings.Contains(msg, "cómo te llamas"), strings.Contains(msg, "como te llamas"),
		strings.Contains(msg, "cuál es tu nombre"), strings.Contains(msg, "cual es tu nombre"),
		strings.Contains(msg, "quién eres"), strings.Contains(msg, "quien eres"):
		return "Soy Ecko, tu asistente virtual personal. Estoy diseñado para ayudarte y aprender contigo."
	case strings.Contains(msg, "qué puedes hacer"), strings.Contains(msg, "que puedes hacer"):
		return "Puedo ayudarte con varias cosas: responder preguntas, guardar notas y recordatorios, " +
			"darte la hora y la fecha, y buscar información. Escribe 'ayuda' para ver todos mis comandos."
	case strings.Contains(msg, "nombre"):
		return "Mi nombre es Ecko. Soy tu asistente virtual personal. Estoy aquí para ayudarte en lo que necesites."
	}

	for _, q := range questionWords {
		if strings.Contains(msg, q) {
			switch {
			case strings.Contains(msg, "cómo"):
				return "Buena pregunta. Todavía estoy aprendiendo, pero intentaré ayudarte. ¿Podrías ser más específico?"
			case strings.Contains(msg, "qué"):
				return "Interesante pregunta. Estoy mejorando día a día para responderte mejor. ¿Hay algo más concreto en lo que pueda ayudarte?"
			default:
				return "Esa es una buena pregunta. Sigo aprendiendo, pero pronto podré ayudarte mejor con eso."
			}
		}
	}

	if strings.Contains(msg, "mal") || strings.Contains(msg, "triste") || strings.Contains(msg, "cansado") {
		return "Lamento escuchar eso. Espero que las cosas mejoren pronto. ¿Hay algo en lo que pueda ayudarte?"
	}

	idx := (historyLen + len([]rune(text))) % len(genericReplies)
	return genericReplies[idx]
}
