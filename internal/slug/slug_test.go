package slug

import (
	"regexp"
	"testing"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Café Noir", "cafe-noir"},
		{"Hello, World!", "hello-world"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"El Niño's Crónica", "el-nino-s-cronica"},
		{"UPPER lower 123", "upper-lower-123"},
		{"chapter-1", "chapter-1"},
		{"Ünïcödé Tïtle", "unicode-title"},
		{"trailing---", "trailing"},
		{"---leading", "leading"},
		{"", ""},
		{"---", ""},
		{"¡¿?!", ""},
	}
	for _, tc := range cases {
		if got := Make(tc.in); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMakeShape(t *testing.T) {
	// Non-empty output always matches the canonical slug shape.
	shape := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	inputs := []string{
		"Café Noir", "a", "A!B@C#D", "Москва", "東京タワー", "42", "x--y",
		"The  Long   Night", "¿Qué pasa?", "naïve façade",
	}
	for _, in := range inputs {
		got := Make(in)
		if got == "" {
			continue
		}
		if !shape.MatchString(got) {
			t.Errorf("Make(%q) = %q does not match slug shape", in, got)
		}
	}
}

func TestMakeDeterministic(t *testing.T) {
	if Make("Café Noir") != Make("Café Noir") {
		t.Error("Make is not deterministic")
	}
}
