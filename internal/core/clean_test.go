package core

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "mention url and hashtag",
			input: "Hello @support, my order #123 is late http://x.co",
			want:  "hello my order 123 is late",
		},
		{
			name:  "https and www urls",
			input: "see https://t.co/AbC?x=1 and WWW.Example.com/help now",
			want:  "see and now",
		},
		{
			name:  "html entities",
			input: "Fish &amp; chips &lt;3",
			want:  "fish chips 3",
		},
		{
			name:  "mention with underscore and digits",
			input: "@Acme_Help2 thanks!!",
			want:  "thanks",
		},
		{
			name:  "emoji and symbols removed",
			input: "great service 😀👍 !!! $$$",
			want:  "great service",
		},
		{
			name:  "case folding",
			input: "HeLLo WORLD Ünïcode",
			want:  "hello world ünïcode",
		},
		{
			name:  "fullwidth normalized",
			input: "Ｆｕｌｌ width",
			want:  "full width",
		},
		{
			name:  "accents kept",
			input: "¿Dónde está mi pedido?",
			want:  "dónde está mi pedido",
		},
		{
			name:  "whitespace collapsed",
			input: "  lots \t of\n\nspace  ",
			want:  "lots of space",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only noise",
			input: "@a @b http://c.d #",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello @support, my order #123 is late http://x.co",
		"&amp;amp;lt; double escaped",
		"www&#46;example&#46;com",
		"@&#64;nested mention",
		"ℂafé ⑴ ﬁne",
		"\xff\xfe broken bytes",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func FuzzClean(f *testing.F) {
	seeds := []string{
		"Hello @support, my order #123 is late http://x.co",
		"&amp;amp;",
		"www.example.com",
		"ℂ⑴ﬁ",
		"\xff",
		"",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, s string) {
		once := Clean(s)
		if Clean(once) != once {
			t.Fatalf("Clean not idempotent for %q", s)
		}
		if !utf8.ValidString(once) {
			t.Fatalf("Clean(%q) produced invalid UTF-8", s)
		}
		if once != strings.TrimSpace(once) || strings.Contains(once, "  ") {
			t.Fatalf("Clean(%q) = %q has uncollapsed whitespace", s, once)
		}
	})
}
