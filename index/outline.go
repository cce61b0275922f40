// Package index keeps a persistent, workspace-wide table of the members
// declared by each routine, so that symbols can be found without parsing
// every file on each request.
package index

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/pslkit/syntax"
)

// Symbol kinds stored in the index. Member kinds use the names of
// syntax.MemberKind.
const (
	KindRoutine = "routine"
	KindLabel   = "label"
)

// Symbol is one entry of an outline.
type Symbol struct {
	Name     string   `json:"name" yaml:"name" cbor:"1,keyasint"`
	Kind     string   `json:"kind" yaml:"kind" cbor:"2,keyasint"`
	Type     string   `json:"type,omitempty" yaml:"type,omitempty" cbor:"3,keyasint,omitempty"`
	Line     int      `json:"line" yaml:"line" cbor:"4,keyasint"`
	EndLine  int      `json:"endLine,omitempty" yaml:"endLine,omitempty" cbor:"5,keyasint,omitempty"`
	Detail   string   `json:"detail,omitempty" yaml:"detail,omitempty" cbor:"6,keyasint,omitempty"`
	Children []Symbol `json:"children,omitempty" yaml:"children,omitempty" cbor:"7,keyasint,omitempty"`
}

// Outline is the symbol tree of one routine.
type Outline struct {
	Path    string   `json:"path" yaml:"path" cbor:"1,keyasint"`
	Routine string   `json:"routine" yaml:"routine" cbor:"2,keyasint"`
	Extends string   `json:"extends,omitempty" yaml:"extends,omitempty" cbor:"3,keyasint,omitempty"`
	Package string   `json:"package,omitempty" yaml:"package,omitempty" cbor:"4,keyasint,omitempty"`
	Symbols []Symbol `json:"symbols" yaml:"symbols" cbor:"5,keyasint"`
}

// OutlineOf builds the outline of a parsed routine.
func OutlineOf(path string, doc *syntax.Document) *Outline {
	base := filepath.Base(path)
	o := &Outline{
		Path:    path,
		Routine: strings.TrimSuffix(base, filepath.Ext(base)),
		Package: doc.Package,
	}
	if doc.Extends != nil {
		o.Extends = doc.Extends.Text
	}

	for _, p := range doc.Properties {
		o.Symbols = append(o.Symbols, Symbol{
			Name:   p.ID.Text,
			Kind:   p.MemberKind().String(),
			Type:   p.Type.Text,
			Line:   p.ID.Pos.Line,
			Detail: p.Description,
		})
	}
	for _, d := range doc.Declarations {
		o.Symbols = append(o.Symbols, declarationSymbol(d))
	}
	for _, m := range doc.Methods {
		o.Symbols = append(o.Symbols, methodSymbol(m))
	}
	return o
}

func methodSymbol(m *syntax.Method) Symbol {
	if m.BatchLabel {
		return Symbol{Name: m.ID.Text, Kind: KindLabel, Line: m.Line, EndLine: m.EndLine}
	}
	s := Symbol{
		Name:    m.ID.Text,
		Kind:    m.MemberKind().String(),
		Type:    m.Type().Text,
		Line:    m.Line,
		EndLine: m.EndLine,
		Detail:  Signature(m),
	}
	for _, p := range m.Parameters {
		s.Children = append(s.Children, Symbol{
			Name: p.ID.Text,
			Kind: p.MemberKind().String(),
			Type: p.MemberType().Text,
			Line: p.ID.Pos.Line,
		})
	}
	for _, d := range m.Declarations {
		s.Children = append(s.Children, declarationSymbol(d))
	}
	return s
}

func declarationSymbol(d *syntax.Declaration) Symbol {
	return Symbol{
		Name: d.ID.Text,
		Kind: d.MemberKind().String(),
		Type: d.Type.Text,
		Line: d.ID.Pos.Line,
	}
}

// Signature renders a method header as "Type name(Type a, Type b)".
func Signature(m *syntax.Method) string {
	var b strings.Builder
	b.WriteString(m.Type().Text)
	b.WriteByte(' ')
	b.WriteString(m.ID.Text)
	b.WriteByte('(')
	for i, p := range m.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ParameterLabel(p))
	}
	b.WriteByte(')')
	return b.String()
}

// ParameterLabel renders one parameter as written in a signature.
func ParameterLabel(p *syntax.Parameter) string {
	var parts []string
	if p.Req {
		parts = append(parts, "req")
	}
	if p.Ret {
		parts = append(parts, "ret")
	}
	if p.Literal {
		parts = append(parts, "literal")
	}
	if len(p.Types) > 0 {
		parts = append(parts, p.Types[0].Text)
	}
	parts = append(parts, p.ID.Text)
	return strings.Join(parts, " ")
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("index: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalOutline serializes an outline to canonical CBOR.
func MarshalOutline(o *Outline) ([]byte, error) {
	return cborEncMode.Marshal(o)
}

// UnmarshalOutline deserializes an outline from CBOR.
func UnmarshalOutline(data []byte) (*Outline, error) {
	var o Outline
	if err := cbor.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("index: unmarshal outline: %w", err)
	}
	return &o, nil
}
