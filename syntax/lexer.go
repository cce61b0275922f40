package syntax

import (
	"iter"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: character-class tokenizer for PSL source
// ---------------------------------------------------------------------------

// lexState selects the per-construct state machine the next call runs.
type lexState int

const (
	stateCode lexState = iota
	stateLineComment
	stateBlockComment
	stateBlockCommentTerm
	stateString
	stateStringClose
)

// Lexer tokenizes PSL source. Every character of the input ends up in
// exactly one token; lexing never fails.
type Lexer struct {
	input  string
	offset int      // byte offset of the next unread character
	pos    Position // position of the next unread character
	state  lexState

	// lineBlank is true while only spaces and tabs have been seen on the
	// current line. A ';' in that state opens a line comment.
	lineBlank bool
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return NewLexerAt(input, Position{})
}

// NewLexerAt creates a lexer whose first character sits at start. It is
// used to re-tokenize sub-strings such as comment bodies in place.
func NewLexerAt(input string, start Position) *Lexer {
	return &Lexer{
		input:     input,
		pos:       start,
		lineBlank: true,
	}
}

// advance consumes one character and moves the position.
func (l *Lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 0
	} else {
		l.pos.Column++
	}
}

// peekByte returns the byte n positions past the current one, or 0.
func (l *Lexer) peekByte(n int) byte {
	if l.offset+n >= len(l.input) {
		return 0
	}
	return l.input[l.offset+n]
}

func (l *Lexer) token(typ TokenType, start int, pos Position) Token {
	return Token{Type: typ, Text: l.input[start:l.offset], Pos: pos}
}

// Next returns the next token. The second result is false once the input
// is exhausted.
func (l *Lexer) Next() (Token, bool) {
	start, pos := l.offset, l.pos

	switch l.state {
	case stateLineComment:
		for l.offset < len(l.input) && l.input[l.offset] != '\n' {
			l.advance()
		}
		l.state = stateCode
		return l.token(TokenLineComment, start, pos), true

	case stateBlockComment:
		// A '*' only ends the comment when a '/' follows it.
		for l.offset < len(l.input) && !strings.HasPrefix(l.input[l.offset:], "*/") {
			l.advance()
		}
		l.state = stateCode
		if l.offset < len(l.input) {
			l.state = stateBlockCommentTerm
		}
		return l.token(TokenBlockComment, start, pos), true

	case stateBlockCommentTerm:
		l.advance()
		l.advance()
		l.state = stateCode
		return l.token(TokenBlockCommentTerm, start, pos), true

	case stateString:
		for l.offset < len(l.input) && l.input[l.offset] != '"' {
			l.advance()
		}
		l.state = stateCode
		if l.offset < len(l.input) {
			l.state = stateStringClose
		}
		return l.token(TokenString, start, pos), true

	case stateStringClose:
		l.advance()
		l.state = stateCode
		return l.token(TokenDoubleQuotes, start, pos), true
	}

	if l.offset >= len(l.input) {
		return Token{}, false
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])

	switch {
	case r == '/' && l.peekByte(1) == '/':
		l.advance()
		l.advance()
		l.state = stateLineComment
		l.lineBlank = false
		return l.token(TokenLineCommentInit, start, pos), true

	case r == '/' && l.peekByte(1) == '*':
		l.advance()
		l.advance()
		l.state = stateBlockComment
		l.lineBlank = false
		return l.token(TokenBlockCommentInit, start, pos), true

	case r == ';' && l.lineBlank:
		l.advance()
		l.state = stateLineComment
		l.lineBlank = false
		return l.token(TokenLineCommentInit, start, pos), true

	case r == '"':
		l.advance()
		l.state = stateString
		l.lineBlank = false
		return l.token(TokenDoubleQuotes, start, pos), true

	case r == '\n':
		l.advance()
		l.lineBlank = true
		return l.token(TokenNewLine, start, pos), true

	case r == ' ':
		l.advance()
		return l.token(TokenSpace, start, pos), true

	case r == '\t':
		l.advance()
		return l.token(TokenTab, start, pos), true

	case isAlphanumeric(r):
		return l.readAlphanumeric(start, pos), true
	}

	l.advance()
	l.lineBlank = false
	typ, ok := punctuation[r]
	if !ok {
		typ = TokenUndefined
	}
	return l.token(typ, start, pos), true
}

// readAlphanumeric reads a run of letters, digits and '%'. A run made only
// of ASCII digits is numeric.
func (l *Lexer) readAlphanumeric(start int, pos Position) Token {
	numeric := true
	for l.offset < len(l.input) {
		r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
		if !isAlphanumeric(r) {
			break
		}
		if r < '0' || r > '9' {
			numeric = false
		}
		l.advance()
	}
	l.lineBlank = false
	if numeric {
		return l.token(TokenNumeric, start, pos)
	}
	return l.token(TokenAlphanumeric, start, pos)
}

// Helper functions

func isAlphanumeric(r rune) bool {
	return r == '%' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize returns a lazy token sequence over text. Each range over the
// sequence starts a fresh lexer.
func Tokenize(text string) iter.Seq[Token] {
	return TokenizeAt(text, Position{})
}

// TokenizeAt is Tokenize with positions offset so that the first
// character of text sits at start.
func TokenizeAt(text string, start Position) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		l := NewLexerAt(text, start)
		for {
			tok, ok := l.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// Collect returns all tokens of text.
func Collect(text string) []Token {
	return slices.Collect(Tokenize(text))
}
