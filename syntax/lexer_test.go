package syntax

import (
	"strings"
	"testing"
)

func TestLexerPunctuation(t *testing.T) {
	input := `! # $ & ' ( ) * + , - . / : < = > ? @ [ \ ] ^ _ { | } ~`
	var got []Token
	for tok := range Tokenize(input) {
		if !tok.IsSpace() {
			got = append(got, tok)
		}
	}

	expected := []TokenType{
		TokenExclamationMark, TokenNumberSign, TokenDollarSign, TokenAmpersand,
		TokenSingleQuote, TokenOpenParen, TokenCloseParen, TokenAsterisk,
		TokenPlusSign, TokenComma, TokenMinusSign, TokenPeriod, TokenSlash,
		TokenColon, TokenLessThan, TokenEqualSign, TokenGreaterThan,
		TokenQuestionMark, TokenAtSign, TokenOpenBracket, TokenBackslash,
		TokenCloseBracket, TokenCaret, TokenUnderscore, TokenOpenBrace,
		TokenPipe, TokenCloseBrace, TokenTilde,
	}
	if len(got) != len(expected) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(expected), got)
	}
	for i, typ := range expected {
		if got[i].Type != typ {
			t.Errorf("token[%d] type = %v, want %v", i, got[i].Type, typ)
		}
	}
}

func TestLexerWords(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"foo", TokenAlphanumeric},
		{"%Id", TokenAlphanumeric},
		{"Record1", TokenAlphanumeric},
		{"42", TokenNumeric},
		{"1e5", TokenAlphanumeric},
		{"été", TokenAlphanumeric},
	}

	for _, tc := range tests {
		tokens := Collect(tc.input)
		if len(tokens) != 1 {
			t.Errorf("Collect(%q) = %v, want one token", tc.input, tokens)
			continue
		}
		if tokens[0].Type != tc.typ {
			t.Errorf("Collect(%q) type = %v, want %v", tc.input, tokens[0].Type, tc.typ)
		}
		if tokens[0].Text != tc.input {
			t.Errorf("Collect(%q) text = %q", tc.input, tokens[0].Text)
		}
	}
}

func TestLexerEmptyLineComment(t *testing.T) {
	tokens := Collect("//\n")
	expected := []Token{
		{Type: TokenLineCommentInit, Text: "//", Pos: Position{0, 0}},
		{Type: TokenLineComment, Text: "", Pos: Position{0, 2}},
		{Type: TokenNewLine, Text: "\n", Pos: Position{0, 2}},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("Collect(%q) = %v, want %v", "//\n", tokens, expected)
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("token[%d] = %v at %v, want %v at %v", i, tokens[i], tokens[i].Pos, expected[i], expected[i].Pos)
		}
	}
}

func TestLexerSemicolonComment(t *testing.T) {
	tests := []struct {
		input   string
		comment bool
	}{
		{"; a comment", true},
		{"  ; indented comment", true},
		{"\t;tabbed", true},
		{"set x=1 ; not a comment", false},
		{"a\n; next line", true},
	}

	for _, tc := range tests {
		found := false
		for tok := range Tokenize(tc.input) {
			if tok.Type == TokenLineCommentInit {
				found = true
			}
		}
		if found != tc.comment {
			t.Errorf("Tokenize(%q) comment = %v, want %v", tc.input, found, tc.comment)
		}
	}
}

func TestLexerBlockComment(t *testing.T) {
	input := "/* a * b\n c */x"
	tokens := Collect(input)
	if len(tokens) != 4 {
		t.Fatalf("Collect(%q) = %v, want 4 tokens", input, tokens)
	}
	if tokens[1].Type != TokenBlockComment || tokens[1].Text != " a * b\n c " {
		t.Errorf("body = %v, want BlockComment(\" a * b\\n c \")", tokens[1])
	}
	if tokens[2].Type != TokenBlockCommentTerm {
		t.Errorf("tokens[2] = %v, want BlockCommentTerm", tokens[2])
	}
	if want := (Position{1, 3}); tokens[2].Pos != want {
		t.Errorf("terminator at %v, want %v", tokens[2].Pos, want)
	}
	if want := (Position{1, 5}); tokens[3].Pos != want {
		t.Errorf("x at %v, want %v", tokens[3].Pos, want)
	}
}

func TestLexerUnterminatedBlockComment(t *testing.T) {
	tokens := Collect("/* open")
	if len(tokens) != 2 {
		t.Fatalf("got %v, want init and body", tokens)
	}
	if tokens[1].Type != TokenBlockComment || tokens[1].Text != " open" {
		t.Errorf("body = %v", tokens[1])
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input string
		types []TokenType
	}{
		{`"abc"`, []TokenType{TokenDoubleQuotes, TokenString, TokenDoubleQuotes}},
		{`""`, []TokenType{TokenDoubleQuotes, TokenString, TokenDoubleQuotes}},
		{`"a""b"`, []TokenType{
			TokenDoubleQuotes, TokenString, TokenDoubleQuotes,
			TokenDoubleQuotes, TokenString, TokenDoubleQuotes,
		}},
		{`"// not a comment"`, []TokenType{TokenDoubleQuotes, TokenString, TokenDoubleQuotes}},
		{`"open`, []TokenType{TokenDoubleQuotes, TokenString}},
	}

	for _, tc := range tests {
		tokens := Collect(tc.input)
		if len(tokens) != len(tc.types) {
			t.Errorf("Collect(%q) = %v, want %d tokens", tc.input, tokens, len(tc.types))
			continue
		}
		for i, typ := range tc.types {
			if tokens[i].Type != typ {
				t.Errorf("Collect(%q)[%d] = %v, want %v", tc.input, i, tokens[i].Type, typ)
			}
		}
	}
}

func TestLexerCarriageReturn(t *testing.T) {
	tokens := Collect("a\r\nb")
	expected := []TokenType{TokenAlphanumeric, TokenUndefined, TokenNewLine, TokenAlphanumeric}
	if len(tokens) != len(expected) {
		t.Fatalf("got %v", tokens)
	}
	for i, typ := range expected {
		if tokens[i].Type != typ {
			t.Errorf("token[%d] = %v, want %v", i, tokens[i].Type, typ)
		}
	}
	if want := (Position{1, 0}); tokens[3].Pos != want {
		t.Errorf("b at %v, want %v", tokens[3].Pos, want)
	}
}

func TestLexerLessOrEqual(t *testing.T) {
	var ops []Token
	for tok := range Tokenize("a <= b") {
		if !tok.IsWord() && !tok.IsWhitespace() {
			ops = append(ops, tok)
		}
	}
	if len(ops) != 2 || ops[0].Type != TokenLessThan || ops[1].Type != TokenEqualSign {
		t.Fatalf("operators = %v, want < =", ops)
	}
	if ops[1].Pos.Column != ops[0].Pos.Column+1 {
		t.Errorf("= at %v does not follow < at %v", ops[1].Pos, ops[0].Pos)
	}
}

func TestTokenizeAt(t *testing.T) {
	start := Position{Line: 4, Column: 10}
	tokens := Collect("x")
	shifted := []Token{}
	for tok := range TokenizeAt("TODO fix", start) {
		shifted = append(shifted, tok)
	}
	if len(tokens) != 1 || len(shifted) != 3 {
		t.Fatalf("unexpected tokens %v %v", tokens, shifted)
	}
	if shifted[0].Pos != start {
		t.Errorf("TODO at %v, want %v", shifted[0].Pos, start)
	}
	if want := (Position{4, 15}); shifted[2].Pos != want {
		t.Errorf("fix at %v, want %v", shifted[2].Pos, want)
	}
}

func TestTokenizeRestartable(t *testing.T) {
	seq := Tokenize("set x=1")
	var first, second []string
	for tok := range seq {
		first = append(first, tok.Text)
	}
	for tok := range seq {
		second = append(second, tok.Text)
	}
	if strings.Join(first, "|") != strings.Join(second, "|") {
		t.Errorf("second pass = %v, want %v", second, first)
	}
}

func TestTokenEnd(t *testing.T) {
	tok := Token{Type: TokenBlockComment, Text: "ab\ncd", Pos: Position{2, 4}}
	if want := (Position{3, 2}); tok.End() != want {
		t.Errorf("End() = %v, want %v", tok.End(), want)
	}
	if !tok.Range().Contains(Position{3, 2}) {
		t.Error("range should contain its end position")
	}
	if tok.Range().Contains(Position{2, 3}) {
		t.Error("range should not contain a position before its start")
	}
}
