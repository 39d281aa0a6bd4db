package mysql

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "ok", 512, "ok"},
		{"ascii cut", strings.Repeat("a", 600), 512, strings.Repeat("a", 512)},
		{"multibyte within limit", strings.Repeat("a", 511) + "ş", 512, strings.Repeat("a", 511) + "ş"},
		{"multibyte cut", strings.Repeat("ş", 300), 255, strings.Repeat("ş", 255)},
		{"cut before multibyte", "abcçdef", 4, "abcç"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if !utf8.ValidString(got) {
				t.Fatalf("invalid UTF-8: %q", got)
			}
			if got != tt.want {
				t.Fatalf("got %q (%d runes), want %q", got, utf8.RuneCountInString(got), tt.want)
			}
		})
	}
}

func TestStringOrDash(t *testing.T) {
	if got := stringOrDash("  "); got != "-" {
		t.Fatalf("got %q", got)
	}
	if got := stringOrDash("x"); got != "x" {
		t.Fatalf("got %q", got)
	}
}
