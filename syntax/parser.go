package syntax

import "strings"

// ---------------------------------------------------------------------------
// Parser: statement and expression parser for one logical line
// ---------------------------------------------------------------------------

// Parser turns a token slice into statements. It can be fed any token
// list, not only whole files: signature help feeds it the tokens of the
// cursor line up to the cursor.
//
// Binary operators fold strictly left to right with no precedence levels;
// only the "." and "^" dereferences bind tighter. That is the evaluation
// order of the language, so "1+2*3" is (1+2)*3.
type Parser struct {
	tokens []Token
	index  int
}

// NewParser creates a new parser over tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseLine parses the statements on the first line of text.
func ParseLine(text string) []*Statement {
	return NewParser(Collect(text)).ParseLine()
}

// ParseText parses every line of text and returns the statements in
// source order.
func ParseText(text string) []*Statement {
	p := NewParser(Collect(text))
	var statements []*Statement
	for !p.Done() {
		statements = append(statements, p.ParseLine()...)
	}
	return statements
}

// Done reports whether every token has been consumed.
func (p *Parser) Done() bool {
	return p.index >= len(p.tokens)
}

// current returns the token under the cursor.
func (p *Parser) current() (Token, bool) {
	if p.index >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.index], true
}

// peek returns the token n positions past the cursor.
func (p *Parser) peek(n int) (Token, bool) {
	if p.index+n >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.index+n], true
}

func (p *Parser) next() {
	p.index++
}

func (p *Parser) curIs(t TokenType) bool {
	tok, ok := p.current()
	return ok && tok.Type == t
}

func (p *Parser) skipWhitespace() {
	for {
		tok, ok := p.current()
		if !ok || !tok.IsWhitespace() {
			return
		}
		p.next()
	}
}

// isTerminator reports tokens that end the statements of a line.
func isTerminator(tok Token) bool {
	switch tok.Type {
	case TokenNewLine, TokenLineCommentInit, TokenBlockCommentInit:
		return true
	case TokenUndefined:
		return tok.Text == "\r"
	}
	return false
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

var statementKeywords = map[string]StatementKind{
	"do":     StatementDo,
	"d":      StatementDo,
	"set":    StatementSet,
	"s":      StatementSet,
	"if":     StatementIf,
	"i":      StatementIf,
	"for":    StatementFor,
	"f":      StatementFor,
	"while":  StatementWhile,
	"w":      StatementWhile,
	"quit":   StatementQuit,
	"q":      StatementQuit,
	"return": StatementReturn,
	"catch":  StatementCatch,
	"type":   StatementType,
}

// ParseLine parses statements until the end of the current line and
// consumes the newline. Tokens that do not start a statement are skipped
// a word at a time.
func (p *Parser) ParseLine() []*Statement {
	var statements []*Statement
	for {
		tok, ok := p.current()
		if !ok {
			return statements
		}
		switch {
		case tok.IsNewLine():
			p.next()
			return statements
		case tok.Type == TokenLineCommentInit:
			p.skipComment(TokenLineComment)
		case tok.Type == TokenBlockCommentInit:
			p.skipComment(TokenBlockCommentTerm)
		case tok.IsWhitespace() || tok.Type == TokenUndefined:
			p.next()
		default:
			start := p.index
			if stmt := p.ParseStatement(); stmt != nil {
				statements = append(statements, stmt)
			}
			if p.index == start {
				p.skipWord()
			}
		}
	}
}

// skipComment consumes a comment opener and everything up to and including
// the token of type last.
func (p *Parser) skipComment(last TokenType) {
	p.next()
	for {
		tok, ok := p.current()
		if !ok || tok.IsNewLine() {
			return
		}
		p.next()
		if tok.Type == last {
			return
		}
	}
}

// skipWord consumes at least one token and then everything up to the next
// whitespace or terminator.
func (p *Parser) skipWord() {
	p.next()
	for {
		tok, ok := p.current()
		if !ok || tok.IsWhitespace() || isTerminator(tok) {
			return
		}
		p.next()
	}
}

// ParseStatement parses one statement starting at a command keyword. It
// returns nil, consuming nothing, when the cursor is not on a keyword.
func (p *Parser) ParseStatement() *Statement {
	tok, ok := p.current()
	if !ok || !tok.IsAlphanumeric() {
		return nil
	}
	kind, ok := statementKeywords[strings.ToLower(tok.Text)]
	if !ok {
		return nil
	}
	if next, ok := p.peek(1); ok && !next.IsWhitespace() && next.Type != TokenColon && !isTerminator(next) {
		return nil
	}
	p.next()

	stmt := &Statement{Kind: kind, Action: tok}

	var post *PostCondition
	if p.curIs(TokenColon) {
		post, _ = p.ParseExpression().(*PostCondition)
	}

	var exprs []Expr
	if p.hasArguments() {
		p.next() // the separating space
		switch kind {
		case StatementType:
			exprs = p.parseTypeArguments()
		case StatementSet:
			exprs = p.parseArguments(p.parseSetArgument)
		default:
			exprs = p.parseArguments(p.ParseExpression)
		}
	}

	if post != nil {
		post.Expressions = exprs
		stmt.Expressions = []Expr{post}
	} else {
		stmt.Expressions = exprs
	}
	return stmt
}

// hasArguments reports whether a single space followed by an argument
// comes next. Two spaces after a command mean it takes no arguments.
func (p *Parser) hasArguments() bool {
	tok, ok := p.current()
	if !ok || !tok.IsSpace() {
		return false
	}
	next, ok := p.peek(1)
	return ok && !next.IsWhitespace() && !isTerminator(next)
}

// parseArguments parses a comma-separated argument list. Empty slots are
// kept as nil so that index i always matches the i-th slot.
func (p *Parser) parseArguments(parse func() Expr) []Expr {
	var exprs []Expr
	expectArg := true
	for {
		tok, ok := p.current()
		if !expectArg {
			if !ok || tok.Type != TokenComma {
				return exprs
			}
			p.next()
			p.skipWhitespace()
			expectArg = true
			continue
		}

		if ok && tok.Type == TokenComma {
			exprs = append(exprs, nil)
			p.next()
			p.skipWhitespace()
			continue
		}
		if !ok || tok.IsWhitespace() || isTerminator(tok) {
			if len(exprs) > 0 {
				exprs = append(exprs, nil)
			}
			return exprs
		}

		e := parse()
		if e == nil {
			return exprs
		}
		exprs = append(exprs, e)
		expectArg = false
	}
}

// parseSetArgument parses "target=value". The top "=" is an Assignment
// unless the target was itself folded by the operator loop (set a+b=c).
func (p *Parser) parseSetArgument() Expr {
	var left Expr
	if p.curIs(TokenOpenParen) {
		left = p.parseMultipleVariableSet()
	} else {
		left = p.parseExpression(true)
	}
	if left == nil {
		return nil
	}

	save := p.index
	p.skipWhitespace()
	eq, ok := p.current()
	if !ok || eq.Type != TokenEqualSign {
		p.index = save
		return left
	}
	p.next()
	p.skipWhitespace()
	right := p.parseExpression(false)

	if isOperatorChain(left) {
		return &BinaryOperator{Operator: []Token{eq}, Left: left, Right: right}
	}
	return &Assignment{Operator: []Token{eq}, Left: left, Right: right}
}

// isOperatorChain reports a BinaryOperator built by the binary or ":" loop
// rather than by a "." or "^" dereference.
func isOperatorChain(e Expr) bool {
	bin, ok := e.(*BinaryOperator)
	if !ok {
		return false
	}
	op := bin.Op()
	return op != "." && op != "^"
}

func (p *Parser) parseMultipleVariableSet() Expr {
	open, _ := p.current()
	p.next()
	set := &MultipleVariableSet{OpenParen: open}
	set.Variables = p.parseDelimited(TokenCloseParen)
	if closeParen, ok := p.current(); ok && closeParen.Type == TokenCloseParen {
		p.next()
		set.CloseParen = &closeParen
	}
	return set
}

var declarationModifiers = map[string]bool{
	"public":  true,
	"private": true,
	"new":     true,
	"static":  true,
	"literal": true,
}

// parseTypeArguments parses "[modifiers] Type id[(args)][=init], ...".
// After a comma a "Type id" pair switches the declared type.
func (p *Parser) parseTypeArguments() []Expr {
	var modifiers []Token
	for {
		tok, ok := p.current()
		if !ok || !tok.IsAlphanumeric() || !declarationModifiers[strings.ToLower(tok.Text)] {
			break
		}
		modifiers = append(modifiers, tok)
		p.next()
		p.skipWhitespace()
	}

	typ, ok := p.current()
	if !ok || !typ.IsAlphanumeric() {
		return nil
	}
	p.next()

	var exprs []Expr
	for {
		p.skipWhitespace()
		id, ok := p.current()
		if !ok || !id.IsAlphanumeric() {
			// "type static Class" names only the class
			if len(exprs) == 0 {
				exprs = append(exprs, &VariableDeclaration{Modifiers: modifiers, Type: typ, ID: typ})
			}
			return exprs
		}
		p.next()

		decl := &VariableDeclaration{Modifiers: modifiers, Type: typ, ID: id}
		if open, ok := p.current(); ok && open.Type == TokenOpenParen {
			p.next()
			decl.OpenParen = &open
			decl.Args = p.parseDelimited(TokenCloseParen)
			if closeParen, ok := p.current(); ok && closeParen.Type == TokenCloseParen {
				p.next()
				decl.CloseParen = &closeParen
			}
		}

		var expr Expr = decl
		save := p.index
		p.skipWhitespace()
		if eq, ok := p.current(); ok && eq.Type == TokenEqualSign {
			p.next()
			p.skipWhitespace()
			expr = &Assignment{Operator: []Token{eq}, Left: decl, Right: p.parseExpression(false)}
		} else {
			p.index = save
		}
		exprs = append(exprs, expr)

		if !p.curIs(TokenComma) {
			return exprs
		}
		p.next()
		p.skipWhitespace()
		if p.wordPairAhead() {
			typ, _ = p.current()
			p.next()
		}
	}
}

// wordPairAhead reports "word <whitespace> word" at the cursor.
func (p *Parser) wordPairAhead() bool {
	tok, ok := p.current()
	if !ok || !tok.IsAlphanumeric() {
		return false
	}
	j := p.index + 1
	for j < len(p.tokens) && p.tokens[j].IsWhitespace() {
		j++
	}
	return j > p.index+1 && j < len(p.tokens) && p.tokens[j].IsAlphanumeric()
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

var unaryOperators = map[TokenType]bool{
	TokenSingleQuote:  true,
	TokenAtSign:       true,
	TokenCaret:        true,
	TokenDollarSign:   true,
	TokenMinusSign:    true,
	TokenPlusSign:     true,
	TokenOpenBracket:  true,
	TokenCloseBracket: true,
}

var unaryWords = map[string]bool{
	"not": true,
	"ret": true,
}

var binaryOperators = map[TokenType]bool{
	TokenSingleQuote:     true,
	TokenAsterisk:        true,
	TokenSlash:           true,
	TokenBackslash:       true,
	TokenNumberSign:      true,
	TokenPlusSign:        true,
	TokenMinusSign:       true,
	TokenUnderscore:      true,
	TokenEqualSign:       true,
	TokenLessThan:        true,
	TokenGreaterThan:     true,
	TokenExclamationMark: true,
	TokenAmpersand:       true,
	TokenQuestionMark:    true,
	TokenOpenBracket:     true,
	TokenCloseBracket:    true,
}

var binaryWords = map[string]bool{
	"and": true,
	"or":  true,
}

// operatorAppendables lists the tokens that extend an operator when they
// follow it directly ("<" "=" is "<=", "'" "=" is "'=").
var operatorAppendables = map[TokenType][]TokenType{
	TokenSingleQuote:  {TokenEqualSign, TokenLessThan, TokenGreaterThan, TokenOpenBracket, TokenCloseBracket, TokenQuestionMark},
	TokenLessThan:     {TokenEqualSign},
	TokenGreaterThan:  {TokenEqualSign},
	TokenAsterisk:     {TokenAsterisk},
	TokenCloseBracket: {TokenCloseBracket},
}

func isBinaryOperator(tok Token) bool {
	if tok.IsAlphanumeric() {
		return binaryWords[strings.ToLower(tok.Text)]
	}
	return binaryOperators[tok.Type]
}

func appends(last, next Token) bool {
	for _, t := range operatorAppendables[last.Type] {
		if next.Type == t {
			return true
		}
	}
	return false
}

// ParseExpression parses one expression at the cursor. A leading ":"
// yields a PostCondition holding only the guard; the statement parser
// attaches the remaining arguments.
func (p *Parser) ParseExpression() Expr {
	return p.parseExpression(false)
}

// parseExpression parses a value, its binary-operator chain and its
// ":"-continuations. With ignoreEquals the chain stops at "=" so a SET
// target can be split from its value.
func (p *Parser) parseExpression(ignoreEquals bool) Expr {
	if colon, ok := p.current(); ok && colon.Type == TokenColon {
		p.next()
		post := &PostCondition{Colon: colon}
		if value := p.parseValue(); value != nil {
			post.Condition = p.parseOperatorChain(value, false)
		}
		return post
	}

	value := p.parseValue()
	if value == nil {
		return nil
	}
	value = p.parseOperatorChain(value, ignoreEquals)
	return p.parseColonChain(value, ignoreEquals)
}

// parseValue parses unary prefixes, a primary value and its "."/"^" chain.
func (p *Parser) parseValue() Expr {
	unary := p.parseUnaryOperators()

	var value Expr
	if tok, ok := p.current(); ok {
		switch tok.Type {
		case TokenAlphanumeric:
			value = p.parseIdentifier(unary)
		case TokenNumeric:
			value = p.parseNumeric(unary)
		case TokenDoubleQuotes:
			value = p.parseString(unary)
		case TokenOpenParen:
			value = p.parseGroup(unary)
		}
	}
	if value == nil {
		if len(unary) > 0 {
			return &BinaryOperator{Operator: unary}
		}
		return nil
	}
	return p.parseDereference(value)
}

func (p *Parser) parseUnaryOperators() []Token {
	var ops []Token
	for {
		tok, ok := p.current()
		if !ok {
			return ops
		}
		if unaryOperators[tok.Type] {
			ops = append(ops, tok)
			p.next()
			continue
		}
		if tok.IsAlphanumeric() && unaryWords[strings.ToLower(tok.Text)] {
			if next, ok := p.peek(1); ok && (next.IsWhitespace() || next.Type == TokenOpenParen) {
				ops = append(ops, tok)
				p.next()
				p.skipWhitespace()
				continue
			}
		}
		return ops
	}
}

func (p *Parser) parseIdentifier(unary []Token) *Identifier {
	tok, _ := p.current()
	p.next()
	id := &Identifier{ID: tok, UnaryOperator: unary}
	if open, ok := p.current(); ok && open.Type == TokenOpenParen {
		p.next()
		id.OpenParen = &open
		id.Args = p.parseDelimited(TokenCloseParen)
		if closeParen, ok := p.current(); ok && closeParen.Type == TokenCloseParen {
			p.next()
			id.CloseParen = &closeParen
		}
	}
	return id
}

// parseNumeric reads a number, absorbing a ".digits" fraction.
func (p *Parser) parseNumeric(unary []Token) *NumericLiteral {
	tok, _ := p.current()
	p.next()
	if p.curIs(TokenPeriod) {
		if frac, ok := p.peek(1); ok && frac.IsNumeric() {
			tok.Text += "." + frac.Text
			p.index += 2
		}
	}
	return &NumericLiteral{ID: tok, UnaryOperator: unary}
}

// parseString reads quote, body, quote. A quote directly after the closing
// one is the doubled-quote escape and continues the same literal.
func (p *Parser) parseString(unary []Token) *StringLiteral {
	open, _ := p.current()
	p.next()
	body := Token{Type: TokenString, Pos: open.End()}
	if tok, ok := p.current(); ok && tok.Type == TokenString {
		body = tok
		p.next()
	}
	if p.curIs(TokenDoubleQuotes) {
		p.next()
		for p.curIs(TokenDoubleQuotes) {
			p.next()
			body.Text += `"`
			if tok, ok := p.current(); ok && tok.Type == TokenString {
				body.Text += tok.Text
				p.next()
			}
			if !p.curIs(TokenDoubleQuotes) {
				break
			}
			p.next()
		}
	}
	return &StringLiteral{ID: body, UnaryOperator: unary, OpenQuote: open}
}

// parseGroup parses a parenthesized sub-expression. The group itself has
// no node; unary operators in front of it become a left-less operator.
func (p *Parser) parseGroup(unary []Token) Expr {
	p.next()
	p.skipWhitespace()
	inner := p.parseExpression(false)
	p.skipWhitespace()
	if p.curIs(TokenCloseParen) {
		p.next()
	}
	if len(unary) > 0 {
		return &BinaryOperator{Operator: unary, Right: inner}
	}
	return inner
}

// parseDereference folds "." (child) and "^" (routine) links onto value.
func (p *Parser) parseDereference(value Expr) Expr {
	for {
		tok, ok := p.current()
		if !ok || (tok.Type != TokenPeriod && tok.Type != TokenCaret) {
			return value
		}
		p.next()
		deref := &BinaryOperator{Operator: []Token{tok}, Left: value}
		if next, ok := p.current(); ok && next.IsWord() {
			deref.Right = p.parseIdentifier(nil)
		}
		value = deref
		if deref.Right == nil {
			return value
		}
	}
}

// parseOperatorChain folds binary operators left to right onto left.
func (p *Parser) parseOperatorChain(left Expr, ignoreEquals bool) Expr {
	for {
		save := p.index
		p.skipWhitespace()
		tok, ok := p.current()
		if !ok || !isBinaryOperator(tok) || (ignoreEquals && tok.Type == TokenEqualSign) {
			p.index = save
			return left
		}
		p.next()

		operator := []Token{tok}
		for {
			next, ok := p.current()
			if !ok || !appends(operator[len(operator)-1], next) {
				break
			}
			operator = append(operator, next)
			p.next()
		}

		p.skipWhitespace()
		right := p.parseValue()
		left = &BinaryOperator{Operator: operator, Left: left, Right: right}
		if right == nil {
			return left
		}
	}
}

// parseColonChain folds ":" continuations (for i=1:1:10, $select(c:v)).
func (p *Parser) parseColonChain(left Expr, ignoreEquals bool) Expr {
	for {
		colon, ok := p.current()
		if !ok || colon.Type != TokenColon {
			return left
		}
		p.next()
		bin := &BinaryOperator{Operator: []Token{colon}, Left: left}
		if value := p.parseValue(); value != nil {
			bin.Right = p.parseOperatorChain(value, ignoreEquals)
		}
		left = bin
		if bin.Right == nil {
			return left
		}
	}
}

// parseDelimited parses a comma-separated list up to closer, which it
// leaves unconsumed. Empty slots are nil, including the slot after a
// trailing comma of a list the line leaves open.
func (p *Parser) parseDelimited(closer TokenType) []Expr {
	var list []Expr
	expectArg := true
	for {
		p.skipWhitespace()
		tok, ok := p.current()
		if !ok || isTerminator(tok) {
			if expectArg && len(list) > 0 {
				list = append(list, nil)
			}
			return list
		}
		switch {
		case tok.Type == closer:
			if expectArg && len(list) > 0 {
				list = append(list, nil)
			}
			return list
		case tok.Type == TokenComma:
			if expectArg {
				list = append(list, nil)
			}
			expectArg = true
			p.next()
		case !expectArg:
			return list
		default:
			start := p.index
			arg := p.parseExpression(false)
			if p.index == start {
				p.next()
			}
			list = append(list, arg)
			expectArg = false
		}
	}
}
