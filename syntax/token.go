package syntax

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the PSL lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Characters the lexer has no class for (\r and other control characters)
	TokenUndefined TokenType = iota

	// Runs
	TokenAlphanumeric // foo, %Id, Record1
	TokenNumeric      // 42

	// Multi-character constructs
	TokenString           // body between double quotes
	TokenDoubleQuotes     // "
	TokenLineCommentInit  // // or a leading ;
	TokenLineComment      // body up to the newline
	TokenBlockCommentInit // /*
	TokenBlockComment     // body up to */
	TokenBlockCommentTerm // */

	// Whitespace
	TokenSpace
	TokenTab
	TokenNewLine

	// Punctuation, one character each
	TokenExclamationMark // !
	TokenNumberSign      // #
	TokenDollarSign      // $
	TokenAmpersand       // &
	TokenSingleQuote     // '
	TokenOpenParen       // (
	TokenCloseParen      // )
	TokenAsterisk        // *
	TokenPlusSign        // +
	TokenComma           // ,
	TokenMinusSign       // -
	TokenPeriod          // .
	TokenSlash           // /
	TokenColon           // :
	TokenSemicolon       // ;
	TokenLessThan        // <
	TokenEqualSign       // =
	TokenGreaterThan     // >
	TokenQuestionMark    // ?
	TokenAtSign          // @
	TokenOpenBracket     // [
	TokenBackslash       // \
	TokenCloseBracket    // ]
	TokenCaret           // ^
	TokenUnderscore      // _
	TokenBackQuote       // `
	TokenOpenBrace       // {
	TokenPipe            // |
	TokenCloseBrace      // }
	TokenTilde           // ~
)

var tokenNames = map[TokenType]string{
	TokenUndefined:        "Undefined",
	TokenAlphanumeric:     "Alphanumeric",
	TokenNumeric:          "Numeric",
	TokenString:           "String",
	TokenDoubleQuotes:     "DoubleQuotes",
	TokenLineCommentInit:  "LineCommentInit",
	TokenLineComment:      "LineComment",
	TokenBlockCommentInit: "BlockCommentInit",
	TokenBlockComment:     "BlockComment",
	TokenBlockCommentTerm: "BlockCommentTerm",
	TokenSpace:            "Space",
	TokenTab:              "Tab",
	TokenNewLine:          "NewLine",
	TokenExclamationMark:  "!",
	TokenNumberSign:       "#",
	TokenDollarSign:       "$",
	TokenAmpersand:        "&",
	TokenSingleQuote:      "'",
	TokenOpenParen:        "(",
	TokenCloseParen:       ")",
	TokenAsterisk:         "*",
	TokenPlusSign:         "+",
	TokenComma:            ",",
	TokenMinusSign:        "-",
	TokenPeriod:           ".",
	TokenSlash:            "/",
	TokenColon:            ":",
	TokenSemicolon:        ";",
	TokenLessThan:         "<",
	TokenEqualSign:        "=",
	TokenGreaterThan:      ">",
	TokenQuestionMark:     "?",
	TokenAtSign:           "@",
	TokenOpenBracket:      "[",
	TokenBackslash:        "\\",
	TokenCloseBracket:     "]",
	TokenCaret:            "^",
	TokenUnderscore:       "_",
	TokenBackQuote:        "`",
	TokenOpenBrace:        "{",
	TokenPipe:             "|",
	TokenCloseBrace:       "}",
	TokenTilde:            "~",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// punctuation maps each single-character token class to its type.
var punctuation = map[rune]TokenType{
	'!':  TokenExclamationMark,
	'#':  TokenNumberSign,
	'$':  TokenDollarSign,
	'&':  TokenAmpersand,
	'\'': TokenSingleQuote,
	'(':  TokenOpenParen,
	')':  TokenCloseParen,
	'*':  TokenAsterisk,
	'+':  TokenPlusSign,
	',':  TokenComma,
	'-':  TokenMinusSign,
	'.':  TokenPeriod,
	'/':  TokenSlash,
	':':  TokenColon,
	';':  TokenSemicolon,
	'<':  TokenLessThan,
	'=':  TokenEqualSign,
	'>':  TokenGreaterThan,
	'?':  TokenQuestionMark,
	'@':  TokenAtSign,
	'[':  TokenOpenBracket,
	'\\': TokenBackslash,
	']':  TokenCloseBracket,
	'^':  TokenCaret,
	'_':  TokenUnderscore,
	'`':  TokenBackQuote,
	'{':  TokenOpenBrace,
	'|':  TokenPipe,
	'}':  TokenCloseBrace,
	'~':  TokenTilde,
}

// Position is a zero-based line and column (in runes).
type Position struct {
	Line   int
	Column int
}

// Before reports whether p sorts before q in line-then-column order.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a half-open span of source positions.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether pos lies within r. The end position is inclusive
// so that a cursor placed right after an identifier still hits it.
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && !r.End.Before(pos)
}

// Token represents a lexical token.
type Token struct {
	Type TokenType
	Text string   // the raw text
	Pos  Position // start position
}

func (t Token) String() string {
	if len(t.Text) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Text[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Text)
}

// End returns the position just past the token.
func (t Token) End() Position {
	end := t.Pos
	for _, r := range t.Text {
		if r == '\n' {
			end.Line++
			end.Column = 0
		} else {
			end.Column++
		}
	}
	return end
}

// Range returns the span covered by the token.
func (t Token) Range() Range {
	return Range{Start: t.Pos, End: t.End()}
}

// IsZero reports whether t is the zero token (no text, undefined type).
func (t Token) IsZero() bool {
	return t.Type == TokenUndefined && t.Text == ""
}

func (t Token) IsAlphanumeric() bool { return t.Type == TokenAlphanumeric }
func (t Token) IsNumeric() bool      { return t.Type == TokenNumeric }
func (t Token) IsSpace() bool        { return t.Type == TokenSpace }
func (t Token) IsTab() bool          { return t.Type == TokenTab }
func (t Token) IsNewLine() bool      { return t.Type == TokenNewLine }

// IsWhitespace reports spaces and tabs. Newlines are line terminators, not whitespace.
func (t Token) IsWhitespace() bool {
	return t.Type == TokenSpace || t.Type == TokenTab
}

// IsWord reports an alphanumeric or numeric run.
func (t Token) IsWord() bool {
	return t.Type == TokenAlphanumeric || t.Type == TokenNumeric
}

// IsComment reports any token belonging to a line or block comment.
func (t Token) IsComment() bool {
	switch t.Type {
	case TokenLineCommentInit, TokenLineComment, TokenBlockCommentInit, TokenBlockComment, TokenBlockCommentTerm:
		return true
	}
	return false
}

// NewToken builds a synthetic token, used for members the resolver invents
// (table columns, the implicit void type).
func NewToken(typ TokenType, text string, pos Position) Token {
	return Token{Type: typ, Text: text, Pos: pos}
}
