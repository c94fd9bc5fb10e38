package chat

import "testing"

func TestExtractName(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"me llamo María", "María"},
		{"hola, me llamo pedro", "Pedro"},
		{"Mi nombre es Juan Carlos", "Juan"},
		{"me llaman Lola", "Lola"},
		{"soy Andrés y vivo en Madrid", "Andrés"},
		{"soy ecko", ""},
		{"oye Ecko, qué hora es", ""},
		{"estoy cansado", ""},
		{"comprar pan", ""},
	}
	for _, tc := range cases {
		if got := extractName(tc.text); got != tc.want {
			t.Errorf("extractName(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
