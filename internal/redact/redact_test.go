package redact

import "testing"

func TestSecret(t *testing.T) {
	cases := map[string]string{
		"":       "",
		"a":      "*",
		"ab":     "**",
		"abcd":   "****",
		"abcde":  "ab*de",
		"abcdef": "ab**ef",
		"aK9fT2mZ7qL4xR8pW1vB6cY3nJ0hS5dE": "aK****************************dE",
	}
	for in, want := range cases {
		if got := Secret(in); got != want {
			t.Fatalf("Secret(%q)=%q want %q", in, got, want)
		}
		if len([]rune(Secret(in))) != len([]rune(in)) {
			t.Fatalf("Secret(%q) changed length", in)
		}
	}
}

func TestSecret_Multibyte(t *testing.T) {
	got := Secret("пароль123")
	if got != "па*****23" {
		t.Fatalf("unexpected mask %q", got)
	}
}

func TestLine(t *testing.T) {
	line := `password = "hunter2hunter2"  # hunter2hunter2`
	got := Line(line, []string{"hunter2hunter2", ""})
	want := `password = "hu**********r2"  # hu**********r2`
	if got != want {
		t.Fatalf("Line()=%q want %q", got, want)
	}
}

func TestLine_LongestFirst(t *testing.T) {
	got := Line("abcdefgh", []string{"cdef", "abcdefgh"})
	if got != "ab****gh" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestLine_OverlappingSecrets(t *testing.T) {
	got := Line("token=abcdefghij key=wxyz1234", []string{"wxyz", "cdefgh", "abcdefghij"})
	want := "token=ab******ij key=****1234"
	if got != want {
		t.Fatalf("Line()=%q want %q", got, want)
	}
}
