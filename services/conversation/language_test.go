package conversation

import "testing"

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"Hello, I need an appointment", "en"},
		{"Hola, quiero una cita por favor", "es"},
		{"buenos días", "es"},
		{"¿Puedo reservar?", "es"},
		{"good morning, what can you do", "en"},
		{"", "en"},
		{"xyz 123", "en"},
	}
	for _, tc := range cases {
		if got := DetectLanguage(tc.message); got != tc.want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", tc.message, got, tc.want)
		}
	}
}

func TestResolveLanguageStickiness(t *testing.T) {
	// Short replies never flip an established language.
	if got := ResolveLanguage("es", "ok"); got != "es" {
		t.Errorf("short reply flipped language to %s", got)
	}
	if got := ResolveLanguage("en", "si"); got != "en" {
		t.Errorf("two-letter reply flipped language to %s", got)
	}
	// A substantial message in the other language does switch.
	if got := ResolveLanguage("en", "hola necesito una cita para el lunes por favor"); got != "es" {
		t.Errorf("long Spanish message kept language %s", got)
	}
	// No established language: detection decides.
	if got := ResolveLanguage("", "hola"); got != "es" {
		t.Errorf("first message detection = %s, want es", got)
	}
}
