package i18n

import "testing"

func TestT(t *testing.T) {
	defer func() { CurrentLang = "en" }()

	tests := []struct {
		lang string
		key  string
		want string
	}{
		{"en", "game_not_found", "Game not found."},
		{"es", "game_not_found", "Juego no encontrado."},
		{"fr", "game_not_found", "Game not found."},
		{"en", "no_such_key", "no_such_key"},
	}
	for _, tt := range tests {
		CurrentLang = tt.lang
		if got := T(tt.key); got != tt.want {
			t.Errorf("T(%q) in %s = %q, expected %q", tt.key, tt.lang, got, tt.want)
		}
	}
}

func TestInitReadsLang(t *testing.T) {
	defer func() { CurrentLang = "en" }()

	t.Setenv("LANG", "es_ES.UTF-8")
	Init()
	if CurrentLang != "es" {
		t.Errorf("CurrentLang = %q, expected es", CurrentLang)
	}

	t.Setenv("LANG", "C")
	Init()
	if CurrentLang != "en" {
		t.Errorf("CurrentLang = %q, expected en", CurrentLang)
	}
}
