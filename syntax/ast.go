package syntax

import "strings"

// ---------------------------------------------------------------------------
// AST: statement and expression trees for one logical line
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	node() // marker method
}

// Expr is the closed set of expression nodes: *Identifier, *StringLiteral,
// *NumericLiteral, *BinaryOperator, *Assignment, *PostCondition,
// *MultipleVariableSet and *VariableDeclaration. Consumers switch over all
// of them.
type Expr interface {
	Node
	expr() // marker method
}

// Identifier is a name, optionally prefixed by unary operators ($, $$, ^, @,
// ', not, ...) and optionally called with a parenthesized argument list.
// A nil entry in Args is an empty slot between two commas.
type Identifier struct {
	ID            Token
	UnaryOperator []Token
	OpenParen     *Token
	Args          []Expr
	CloseParen    *Token
}

func (n *Identifier) Pos() Position {
	if len(n.UnaryOperator) > 0 {
		return n.UnaryOperator[0].Pos
	}
	return n.ID.Pos
}
func (n *Identifier) node() {}
func (n *Identifier) expr() {}

// StringLiteral is a quoted string. ID holds the body; when the source uses
// the doubled-quote escape ("a""b") the segments are folded into one body
// with the embedded quote restored.
type StringLiteral struct {
	ID            Token
	UnaryOperator []Token
	OpenQuote     Token
}

func (n *StringLiteral) Pos() Position {
	if len(n.UnaryOperator) > 0 {
		return n.UnaryOperator[0].Pos
	}
	return n.OpenQuote.Pos
}
func (n *StringLiteral) node() {}
func (n *StringLiteral) expr() {}

// Value returns the string contents.
func (n *StringLiteral) Value() string { return n.ID.Text }

// NumericLiteral is an integer or decimal number.
type NumericLiteral struct {
	ID            Token
	UnaryOperator []Token
}

func (n *NumericLiteral) Pos() Position {
	if len(n.UnaryOperator) > 0 {
		return n.UnaryOperator[0].Pos
	}
	return n.ID.Pos
}
func (n *NumericLiteral) node() {}
func (n *NumericLiteral) expr() {}

// BinaryOperator joins Left and Right with a possibly multi-token operator
// ('<' '=' for "<="). Either side may be nil in partial input: a dangling
// "x." has no Right, a prefix operator applied to a parenthesized group has
// no Left.
type BinaryOperator struct {
	Operator []Token
	Left     Expr
	Right    Expr
}

func (n *BinaryOperator) Pos() Position {
	if n.Left != nil {
		return n.Left.Pos()
	}
	return n.Operator[0].Pos
}
func (n *BinaryOperator) node() {}
func (n *BinaryOperator) expr() {}

// Op returns the operator text ("<=", ".", "'=").
func (n *BinaryOperator) Op() string {
	return joinText(n.Operator)
}

// Assignment is the top-level "=" of a SET argument or of an initialized
// TYPE declaration.
type Assignment struct {
	Operator []Token
	Left     Expr
	Right    Expr
}

func (n *Assignment) Pos() Position {
	if n.Left != nil {
		return n.Left.Pos()
	}
	return n.Operator[0].Pos
}
func (n *Assignment) node() {}
func (n *Assignment) expr() {}

// PostCondition is a ":"-guard on a statement. Expressions are the
// statement arguments it conditions.
type PostCondition struct {
	Colon       Token
	Condition   Expr
	Expressions []Expr
}

func (n *PostCondition) Pos() Position { return n.Colon.Pos }
func (n *PostCondition) node()         {}
func (n *PostCondition) expr()         {}

// MultipleVariableSet is the parenthesized left-hand side of "set (a,b)=c".
type MultipleVariableSet struct {
	OpenParen  Token
	Variables  []Expr
	CloseParen *Token
}

func (n *MultipleVariableSet) Pos() Position { return n.OpenParen.Pos }
func (n *MultipleVariableSet) node()         {}
func (n *MultipleVariableSet) expr()         {}

// VariableDeclaration is one declared name of a TYPE statement.
type VariableDeclaration struct {
	Modifiers  []Token // public, private, new, static, literal
	Type       Token
	ID         Token
	OpenParen  *Token
	Args       []Expr
	CloseParen *Token
}

func (n *VariableDeclaration) Pos() Position { return n.ID.Pos }
func (n *VariableDeclaration) node()         {}
func (n *VariableDeclaration) expr()         {}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// StatementKind identifies the command of a statement.
type StatementKind int

const (
	StatementDo StatementKind = iota
	StatementSet
	StatementIf
	StatementFor
	StatementWhile
	StatementQuit
	StatementReturn
	StatementCatch
	StatementType
)

var statementNames = map[StatementKind]string{
	StatementDo:     "DO",
	StatementSet:    "SET",
	StatementIf:     "IF",
	StatementFor:    "FOR",
	StatementWhile:  "WHILE",
	StatementQuit:   "QUIT",
	StatementReturn: "RETURN",
	StatementCatch:  "CATCH",
	StatementType:   "TYPE",
}

func (k StatementKind) String() string {
	return statementNames[k]
}

// Statement is one command with its arguments. A nil entry in Expressions
// marks an empty comma-delimited slot.
type Statement struct {
	Kind        StatementKind
	Action      Token
	Expressions []Expr
}

func (s *Statement) Pos() Position { return s.Action.Pos }
func (s *Statement) node()         {}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// Walk visits n and its children in source order. Returning false from fn
// skips the children of the node just visited. Nil slots are not visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	walkExprs := func(exprs []Expr) {
		for _, e := range exprs {
			if e != nil {
				Walk(e, fn)
			}
		}
	}
	walkExpr := func(e Expr) {
		if e != nil {
			Walk(e, fn)
		}
	}

	switch n := n.(type) {
	case *Statement:
		walkExprs(n.Expressions)
	case *Identifier:
		walkExprs(n.Args)
	case *StringLiteral, *NumericLiteral:
	case *BinaryOperator:
		walkExpr(n.Left)
		walkExpr(n.Right)
	case *Assignment:
		walkExpr(n.Left)
		walkExpr(n.Right)
	case *PostCondition:
		walkExpr(n.Condition)
		walkExprs(n.Expressions)
	case *MultipleVariableSet:
		walkExprs(n.Variables)
	case *VariableDeclaration:
		walkExprs(n.Args)
	}
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

func joinText(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}
