package classify

import "testing"

func TestClassify_ExplicitCommands(t *testing.T) {
	cases := []struct {
		text string
		kind Kind
		args string
	}{
		{"hora", KindTime, ""},
		{"  HORA  ", KindTime, ""},
		{"hora por favor", KindTime, ""},
		{"fecha", KindDate, ""},
		{"ayuda", KindHelp, ""},
		{"recordar comprar pan", KindNote, "comprar pan"},
		{"Recordar", KindNote, ""},
		{"mis notas", KindNoteList, ""},
		{"notas", KindNoteList, ""},
		{"recuérdame llamar a mamá en 2 horas", KindReminder, "llamar a mamá en 2 horas"},
		{"recuerdame estudiar mañana a las 9:00", KindReminder, "estudiar mañana a las 9:00"},
		{"avisame en 5 minutos", KindReminder, "en 5 minutos"},
		{"mis recordatorios", KindReminderList, ""},
		{"recordatorios", KindReminderList, ""},
		{"buscar Python", KindSearch, "Python"},
		{"busca recetas de pasta", KindSearch, "recetas de pasta"},
		{"qué es un goroutine", KindSearch, "qué es un goroutine"},
		{"que es docker", KindSearch, "qué es docker"},
		{"noticias argentina", KindSearch, "noticias argentina"},
	}
	for _, tc := range cases {
		got := Classify(tc.text)
		if got.Kind != tc.kind {
			t.Errorf("Classify(%q).Kind = %v, want %v", tc.text, got.Kind, tc.kind)
		}
		if got.Args != tc.args {
			t.Errorf("Classify(%q).Args = %q, want %q", tc.text, got.Args, tc.args)
		}
	}
}

func TestClassify_ArgsKeepOriginalCasing(t *testing.T) {
	cases := []struct {
		text string
		kind Kind
		args string
	}{
		{"recordar Llamar a María el Lunes", KindNote, "Llamar a María el Lunes"},
		{"RECORDAR Comprar Pan", KindNote, "Comprar Pan"},
		{"Recuérdame Revisar el PR en 2 horas", KindReminder, "Revisar el PR en 2 horas"},
		{"buscar Quantum Computing", KindSearch, "Quantum Computing"},
		{"Qué es Kubernetes", KindSearch, "qué es Kubernetes"},
		{"noticias Buenos Aires", KindSearch, "noticias Buenos Aires"},
	}
	for _, tc := range cases {
		got := Classify(tc.text)
		if got.Kind != tc.kind {
			t.Errorf("Classify(%q).Kind = %v, want %v", tc.text, got.Kind, tc.kind)
		}
		if got.Args != tc.args {
			t.Errorf("Classify(%q).Args = %q, want %q", tc.text, got.Args, tc.args)
		}
	}
}

func TestClassify_RecencyHeuristic(t *testing.T) {
	cases := []struct {
		text   string
		search bool
	}{
		{"qué pasó hoy en el mundo", true},
		{"cuáles son las últimas noticias de hoy", true},
		{"cómo está el clima ahora", true},
		{"qué opinas de los perros", false},
		{"me gusta el cine", false},
		{"hola", false},
	}
	for _, tc := range cases {
		got := Classify(tc.text)
		if isSearch := got.Kind == KindSearch; isSearch != tc.search {
			t.Errorf("Classify(%q).Kind = %v, want search=%v", tc.text, got.Kind, tc.search)
		}
	}
}

func TestClassify_FallsThroughToAI(t *testing.T) {
	for _, text := range []string{"", "hola", "cuéntame un chiste", "horario no es un comando"} {
		if got := Classify(text); got.Kind != KindAI {
			t.Errorf("Classify(%q).Kind = %v, want KindAI", text, got.Kind)
		}
	}
}
