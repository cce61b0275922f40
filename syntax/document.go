package syntax

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Document model: methods, properties and declarations of one routine
// ---------------------------------------------------------------------------

// MemberKind classifies a Member.
type MemberKind int

const (
	KindMethod MemberKind = iota
	KindParameter
	KindDeclaration
	KindProperty
	KindColumn
)

var memberKindNames = map[MemberKind]string{
	KindMethod:      "method",
	KindParameter:   "parameter",
	KindDeclaration: "declaration",
	KindProperty:    "property",
	KindColumn:      "column",
}

func (k MemberKind) String() string {
	if name, ok := memberKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MemberKind(%d)", k)
}

// Member is anything a name can resolve to: *Method, *Parameter,
// *Declaration or *Property.
type Member interface {
	MemberKind() MemberKind
	Identifier() Token
	// MemberType is the declared type. It is the zero token when the
	// source gives none.
	MemberType() Token
}

// Document is the structural model of one routine.
type Document struct {
	Methods      []*Method
	Properties   []*Property
	Declarations []*Declaration // declared before the first method
	Extends      *Token
	Package      string
	Comments     []Token // line and block comment bodies
	Tokens       []Token
}

// MethodAt returns the method whose body contains line, or nil.
func (d *Document) MethodAt(line int) *Method {
	for i := len(d.Methods) - 1; i >= 0; i-- {
		m := d.Methods[i]
		if m.Line > line {
			continue
		}
		if m.EndLine >= 0 && line > m.EndLine {
			return nil
		}
		return m
	}
	return nil
}

// Method is a label with optional modifiers and parameters.
type Method struct {
	ID            Token
	Modifiers     []Token
	Parameters    []*Parameter
	Declarations  []*Declaration
	Line          int
	EndLine       int // last line of the body; -1 runs to the end of the file
	BatchLabel    bool
	OpenParen     *Token
	CloseParen    *Token
	Documentation *Token // block comment directly after the header
}

func (m *Method) MemberKind() MemberKind { return KindMethod }
func (m *Method) Identifier() Token      { return m.ID }
func (m *Method) MemberType() Token      { return m.Type() }

var methodQualifiers = map[string]bool{
	"public":  true,
	"private": true,
	"static":  true,
	"final":   true,
}

// Type returns the return type: the last modifier that is not an access
// or storage keyword, or "void".
func (m *Method) Type() Token {
	for i := len(m.Modifiers) - 1; i >= 0; i-- {
		if !methodQualifiers[strings.ToLower(m.Modifiers[i].Text)] {
			return m.Modifiers[i]
		}
	}
	return NewToken(TokenAlphanumeric, "void", m.ID.Pos)
}

// Parameter is one entry of a method's formal parameter list.
type Parameter struct {
	Types   []Token // first entry is the declared type, the rest come from "(A,B)"
	ID      Token
	Req     bool
	Ret     bool
	Literal bool
	Comment *Token // trailing "//" comment
}

func (p *Parameter) MemberKind() MemberKind { return KindParameter }
func (p *Parameter) Identifier() Token      { return p.ID }
func (p *Parameter) MemberType() Token {
	if len(p.Types) == 0 {
		return Token{}
	}
	return p.Types[0]
}

// Declaration is one name declared by a "type" line.
type Declaration struct {
	Type             Token
	ID               Token
	Args             []Token
	StorageModifiers []Token // static, new
	AccessModifiers  []Token // public, private, literal
}

func (d *Declaration) MemberKind() MemberKind { return KindDeclaration }
func (d *Declaration) Identifier() Token      { return d.ID }
func (d *Declaration) MemberType() Token      { return d.Type }

// IsStatic reports a "type static X" declaration.
func (d *Declaration) IsStatic() bool {
	for _, m := range d.StorageModifiers {
		if strings.EqualFold(m.Text, "static") {
			return true
		}
	}
	return false
}

// Property is a "#PROPERTYDEF" member or a table column.
type Property struct {
	ID          Token
	Modifiers   []Token          // bare words: public, readonly, ...
	Type        Token            // from "class = X"
	Attributes  map[string]Token // lower-cased key = value pairs
	IsColumn    bool
	Description string
}

func (p *Property) MemberKind() MemberKind {
	if p.IsColumn {
		return KindColumn
	}
	return KindProperty
}
func (p *Property) Identifier() Token { return p.ID }
func (p *Property) MemberType() Token { return p.Type }

// ---------------------------------------------------------------------------
// Structural parser
// ---------------------------------------------------------------------------

// documentParser is a single forward pass over the tokens of a routine.
type documentParser struct {
	tokens []Token
	index  int
	doc    *Document
}

// ParseDocument builds the structural model of text. It never fails;
// lines it cannot make sense of are skipped.
func ParseDocument(text string) *Document {
	p := &documentParser{
		tokens: Collect(text),
		doc:    &Document{},
	}
	p.doc.Tokens = p.tokens
	p.run()
	return p.doc
}

func (p *documentParser) current() (Token, bool) {
	if p.index >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.index], true
}

func (p *documentParser) curIs(t TokenType) bool {
	tok, ok := p.current()
	return ok && tok.Type == t
}

func (p *documentParser) skipWhitespace() {
	for {
		tok, ok := p.current()
		if !ok || !tok.IsWhitespace() {
			return
		}
		p.index++
	}
}

// skipLine consumes everything up to and including the next newline.
func (p *documentParser) skipLine() {
	for {
		tok, ok := p.current()
		if !ok {
			return
		}
		p.index++
		if tok.IsNewLine() {
			return
		}
	}
}

// openMethod is the method whose body the cursor is in.
func (p *documentParser) openMethod() *Method {
	if len(p.doc.Methods) == 0 {
		return nil
	}
	return p.doc.Methods[len(p.doc.Methods)-1]
}

func (p *documentParser) run() {
	for {
		tok, ok := p.current()
		if !ok {
			break
		}
		switch {
		case tok.IsNewLine():
			p.index++
		case tok.Pos.Column == 0 && (tok.IsWord() || tok.Type == TokenMinusSign):
			p.parseMethodHeader()
		case tok.IsWhitespace() || tok.Type == TokenNumberSign:
			p.parseBodyLine()
		default:
			p.skipLine()
		}
	}

	// Each method ends where the next begins.
	for i, m := range p.doc.Methods {
		m.EndLine = -1
		if i+1 < len(p.doc.Methods) {
			m.EndLine = p.doc.Methods[i+1].Line - 1
		}
	}

	for _, tok := range p.tokens {
		if tok.Type == TokenLineComment || tok.Type == TokenBlockComment {
			p.doc.Comments = append(p.doc.Comments, tok)
		}
	}
}

// parseMethodHeader parses a column-0 line. Words accumulate as modifiers
// until "(" or the end of the line; the last one is the method name.
func (p *documentParser) parseMethodHeader() {
	first, _ := p.current()
	line := first.Pos.Line

	if first.Type == TokenMinusSign {
		for p.curIs(TokenMinusSign) || p.curIs(TokenSpace) || p.curIs(TokenTab) {
			p.index++
		}
		if tok, ok := p.current(); ok && tok.IsWord() {
			p.doc.Methods = append(p.doc.Methods, &Method{ID: tok, Line: line, BatchLabel: true})
		}
		p.skipLine()
		return
	}

	var words []Token
	var method *Method
loop:
	for {
		tok, ok := p.current()
		if !ok {
			break
		}
		switch {
		case tok.IsNewLine() || tok.Type == TokenLineCommentInit || tok.Type == TokenBlockCommentInit:
			break loop
		case tok.IsWord():
			words = append(words, tok)
			p.index++
		case tok.IsWhitespace() || tok.Type == TokenUndefined:
			p.index++
		case tok.Type == TokenOpenParen:
			if len(words) == 0 {
				p.skipLine()
				return
			}
			method = newMethod(words, line)
			p.parseParameters(method)
			break loop
		default:
			p.skipLine()
			return
		}
	}
	if method == nil {
		if len(words) == 0 {
			p.skipLine()
			return
		}
		method = newMethod(words, line)
	}
	p.doc.Methods = append(p.doc.Methods, method)
	p.skipLine()
	method.Documentation = p.documentationAt()
}

func newMethod(words []Token, line int) *Method {
	last := len(words) - 1
	return &Method{
		ID:        words[last],
		Modifiers: words[:last:last],
		Line:      line,
		EndLine:   -1,
	}
}

// documentationAt returns the body of a block comment starting the line at
// the cursor, without consuming anything.
func (p *documentParser) documentationAt() *Token {
	j := p.index
	for j < len(p.tokens) && p.tokens[j].IsWhitespace() {
		j++
	}
	if j+1 < len(p.tokens) && p.tokens[j].Type == TokenBlockCommentInit && p.tokens[j+1].Type == TokenBlockComment {
		doc := p.tokens[j+1]
		return &doc
	}
	return nil
}

// paramBuilder collects the tokens of one parameter.
type paramBuilder struct {
	words  []Token
	extra  []Token
	flags  Parameter
	active bool
}

func (b *paramBuilder) build() *Parameter {
	if !b.active {
		return nil
	}
	param := &Parameter{Req: b.flags.Req, Ret: b.flags.Ret, Literal: b.flags.Literal}
	switch len(b.words) {
	case 0:
		return nil
	case 1:
		// A lone word is the name of an untyped parameter.
		param.Types = []Token{NewToken(TokenAlphanumeric, "void", b.words[0].Pos)}
		param.ID = b.words[0]
	default:
		param.Types = append([]Token{b.words[0]}, b.extra...)
		param.ID = b.words[len(b.words)-1]
	}
	*b = paramBuilder{}
	return param
}

// parseParameters parses a parameter list starting at "(". The list may
// span lines; a line starting at column 0 ends it.
func (p *documentParser) parseParameters(m *Method) {
	open, _ := p.current()
	m.OpenParen = &open
	p.index++

	var b paramBuilder
	finish := func() {
		if param := b.build(); param != nil {
			m.Parameters = append(m.Parameters, param)
		}
		b = paramBuilder{}
	}

	for {
		tok, ok := p.current()
		if !ok {
			finish()
			return
		}
		switch tok.Type {
		case TokenCloseParen:
			finish()
			m.CloseParen = &tok
			p.index++
			p.skipWhitespace()
			p.attachParamComment(m)
			return
		case TokenComma:
			finish()
			p.index++
		case TokenNewLine:
			p.index++
			if next, ok := p.current(); ok && next.Pos.Column == 0 && !next.IsWhitespace() && !next.IsNewLine() {
				finish()
				p.index-- // leave the newline for the header loop
				return
			}
		case TokenLineCommentInit:
			finish()
			p.attachParamComment(m)
		case TokenBlockCommentInit:
			for {
				p.index++
				t, ok := p.current()
				if !ok || t.Type == TokenBlockCommentTerm || t.IsNewLine() {
					break
				}
			}
			if p.curIs(TokenBlockCommentTerm) {
				p.index++
			}
		case TokenOpenParen:
			p.index++
			for {
				t, ok := p.current()
				if !ok || t.Type == TokenCloseParen || t.IsNewLine() {
					break
				}
				if t.IsWord() {
					b.extra = append(b.extra, t)
				}
				p.index++
			}
			if p.curIs(TokenCloseParen) {
				p.index++
			}
		case TokenAlphanumeric, TokenNumeric:
			b.active = true
			switch strings.ToLower(tok.Text) {
			case "req":
				if len(b.words) == 0 {
					b.flags.Req = true
					p.index++
					continue
				}
			case "ret":
				if len(b.words) == 0 {
					b.flags.Ret = true
					p.index++
					continue
				}
			case "literal":
				if len(b.words) == 0 {
					b.flags.Literal = true
					p.index++
					continue
				}
			}
			b.words = append(b.words, tok)
			p.index++
		default:
			p.index++
		}
	}
}

// attachParamComment consumes a "//" comment at the cursor and attaches
// its body to the last parameter.
func (p *documentParser) attachParamComment(m *Method) {
	if !p.curIs(TokenLineCommentInit) {
		return
	}
	p.index++
	body, ok := p.current()
	if !ok || body.Type != TokenLineComment {
		return
	}
	p.index++
	if len(m.Parameters) > 0 {
		last := m.Parameters[len(m.Parameters)-1]
		if last.Comment == nil {
			last.Comment = &body
		}
	}
}

// parseBodyLine looks for directives and "type" declarations on a line
// that does not start a method.
func (p *documentParser) parseBodyLine() {
	p.skipWhitespace()
	if p.curIs(TokenNumberSign) {
		p.index++
		if tok, ok := p.current(); ok && tok.IsAlphanumeric() {
			p.index++
			switch strings.ToUpper(tok.Text) {
			case "PROPERTYDEF":
				p.parsePropertyDef()
			case "CLASSDEF":
				p.parseClassDef()
			case "PACKAGE":
				p.parsePackage()
			}
		}
		p.skipLine()
		return
	}

	prevBlank := true
	for {
		tok, ok := p.current()
		if !ok {
			return
		}
		if tok.IsNewLine() {
			p.index++
			return
		}
		if tok.IsAlphanumeric() && prevBlank && strings.EqualFold(tok.Text, "type") {
			if next := p.index + 1; next < len(p.tokens) && p.tokens[next].IsSpace() {
				p.index = next + 1
				p.parseDeclarations()
				prevBlank = false
				continue
			}
		}
		prevBlank = tok.IsWhitespace()
		p.index++
	}
}

var (
	storageKeywords = map[string]bool{"static": true, "new": true}
	accessKeywords  = map[string]bool{"public": true, "private": true, "literal": true}
)

// parseDeclarations parses the arguments of a "type" command.
func (p *documentParser) parseDeclarations() {
	var storage, access []Token
	for {
		p.skipWhitespace()
		tok, ok := p.current()
		if !ok || !tok.IsAlphanumeric() {
			break
		}
		lower := strings.ToLower(tok.Text)
		if storageKeywords[lower] {
			storage = append(storage, tok)
		} else if accessKeywords[lower] {
			access = append(access, tok)
		} else {
			break
		}
		p.index++
	}

	typ, ok := p.current()
	if !ok || !typ.IsAlphanumeric() {
		return
	}
	p.index++

	first := true
	for {
		p.skipWhitespace()
		id, ok := p.current()
		if !ok || !id.IsAlphanumeric() {
			// "type static Class" declares the class name itself. A lone
			// type without "static" declares nothing.
			if first && hasKeyword(storage, "static") {
				p.addDeclaration(&Declaration{Type: typ, ID: typ, StorageModifiers: storage, AccessModifiers: access})
			}
			return
		}
		p.index++
		first = false

		decl := &Declaration{Type: typ, ID: id, StorageModifiers: storage, AccessModifiers: access}
		if p.curIs(TokenOpenParen) {
			p.index++
			for {
				t, ok := p.current()
				if !ok || t.Type == TokenCloseParen || t.IsNewLine() {
					break
				}
				if t.IsWord() {
					decl.Args = append(decl.Args, t)
				}
				p.index++
			}
			if p.curIs(TokenCloseParen) {
				p.index++
			}
		}
		p.addDeclaration(decl)

		p.skipWhitespace()
		if p.curIs(TokenEqualSign) {
			p.skipInitializer()
		}
		if !p.curIs(TokenComma) {
			return
		}
		p.index++
		p.skipWhitespace()

		// "Type id" after a comma switches the declared type.
		if tok, ok := p.current(); ok && tok.IsAlphanumeric() {
			j := p.index + 1
			for j < len(p.tokens) && p.tokens[j].IsWhitespace() {
				j++
			}
			if j > p.index+1 && j < len(p.tokens) && p.tokens[j].IsAlphanumeric() {
				typ = tok
				p.index++
			}
		}
	}
}

// skipInitializer consumes "= expr" up to a top-level comma, whitespace
// or the end of the line.
func (p *documentParser) skipInitializer() {
	p.index++
	p.skipWhitespace()
	depth := 0
	for {
		tok, ok := p.current()
		if !ok || tok.IsNewLine() || isTerminator(tok) {
			return
		}
		switch tok.Type {
		case TokenOpenParen:
			depth++
		case TokenCloseParen:
			depth--
		case TokenComma, TokenSpace, TokenTab:
			if depth <= 0 {
				return
			}
		}
		p.index++
	}
}

func (p *documentParser) addDeclaration(decl *Declaration) {
	if m := p.openMethod(); m != nil {
		m.Declarations = append(m.Declarations, decl)
		return
	}
	p.doc.Declarations = append(p.doc.Declarations, decl)
}

func hasKeyword(tokens []Token, word string) bool {
	for _, t := range tokens {
		if strings.EqualFold(t.Text, word) {
			return true
		}
	}
	return false
}

// lineWords returns the words of the rest of the line as (key, value)
// pairs. A bare word has no value.
func (p *documentParser) lineWords() (words []Token, values []*Token) {
	for {
		p.skipWhitespace()
		tok, ok := p.current()
		if !ok || tok.IsNewLine() || isTerminator(tok) {
			return
		}
		if !tok.IsWord() {
			p.index++
			continue
		}
		p.index++
		save := p.index
		p.skipWhitespace()
		if !p.curIs(TokenEqualSign) {
			p.index = save
			words = append(words, tok)
			values = append(values, nil)
			continue
		}
		p.index++
		p.skipWhitespace()
		value, ok := p.current()
		switch {
		case ok && value.Type == TokenDoubleQuotes:
			p.index++
			body := NewToken(TokenString, "", value.End())
			if p.curIs(TokenString) {
				body, _ = p.current()
				p.index++
			}
			if p.curIs(TokenDoubleQuotes) {
				p.index++
			}
			value = body
		case ok && value.IsWord():
			p.index++
		default:
			value = NewToken(TokenString, "", tok.End())
		}
		words = append(words, tok)
		values = append(values, &value)
	}
}

// parsePropertyDef parses "#PROPERTYDEF id attr = value bare ...".
func (p *documentParser) parsePropertyDef() {
	p.skipWhitespace()
	id, ok := p.current()
	if !ok || !id.IsWord() {
		return
	}
	p.index++

	prop := &Property{ID: id, Attributes: map[string]Token{}}
	words, values := p.lineWords()
	for i, w := range words {
		if values[i] == nil {
			prop.Modifiers = append(prop.Modifiers, w)
			continue
		}
		key := strings.ToLower(w.Text)
		prop.Attributes[key] = *values[i]
		if key == "class" {
			prop.Type = *values[i]
		}
	}
	p.doc.Properties = append(p.doc.Properties, prop)
}

// parseClassDef parses "#CLASSDEF ... extends = Parent ...".
func (p *documentParser) parseClassDef() {
	words, values := p.lineWords()
	for i, w := range words {
		if strings.EqualFold(w.Text, "extends") && values[i] != nil {
			parent := *values[i]
			p.doc.Extends = &parent
		}
	}
}

// parsePackage parses "#PACKAGE a.b.c".
func (p *documentParser) parsePackage() {
	p.skipWhitespace()
	var sb strings.Builder
	for {
		tok, ok := p.current()
		if !ok || tok.IsWhitespace() || tok.IsNewLine() || isTerminator(tok) {
			break
		}
		sb.WriteString(tok.Text)
		p.index++
	}
	p.doc.Package = sb.String()
}
