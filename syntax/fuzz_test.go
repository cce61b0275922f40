package syntax

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// FuzzTokenize: every character lands in exactly one token, in order.
// ---------------------------------------------------------------------------

func FuzzTokenize(f *testing.F) {
	seeds := []string{
		"",
		"set x=1",
		"//\n",
		"; comment\n\tquit",
		"/* block\n comment */ do x",
		"/* unterminated",
		`set s="a""b"`,
		`"unterminated`,
		"a\r\nb",
		"public String greet(String who) // c\n\tquit who",
		"if a <= b, x'=y quit",
		"%Id^ROUTINE $$fn(1,,2)",
		"\x00\x01\xff",
		"日本語 text",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		var sb strings.Builder
		var prev Token
		first := true
		for tok := range Tokenize(input) {
			sb.WriteString(tok.Text)
			if !first && tok.Pos.Before(prev.Pos) {
				t.Fatalf("token %v at %v precedes %v at %v", tok, tok.Pos, prev, prev.Pos)
			}
			prev, first = tok, false
		}
		if sb.String() != input {
			t.Fatalf("round trip = %q, want %q", sb.String(), input)
		}

		// The parsers must accept anything the lexer produces.
		ParseText(input)
		ParseDocument(input)
	})
}
