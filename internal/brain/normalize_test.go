package brain

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Olá   Mundo  ", "ola mundo"},
		{"HIBERNAÇÃO", "hibernacao"},
		{"café\tquente", "cafe quente"},
		{"", ""},
		{"   ", ""},
		{"already plain", "already plain"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("read the file_log, please: now!")
	want := []string{"read", "the", "file_log", "please", "now"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	if toks := tokenize("!!!"); len(toks) != 0 {
		t.Fatalf("expected no tokens, got %v", toks)
	}
}
