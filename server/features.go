package server

import (
	"context"
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/pslkit/finder"
	"github.com/chazu/pslkit/index"
	"github.com/chazu/pslkit/lint"
	"github.com/chazu/pslkit/syntax"
)

const maxItems = 100

// document parses the current text of path.
func (s *LspServer) document(ctx context.Context, path string) (*syntax.Document, bool) {
	text, err := s.overlay.Load(ctx, path)
	if err != nil {
		return nil, false
	}
	return syntax.ParseDocument(text), true
}

// finder returns a resolver rooted at path.
func (s *LspServer) finder(ctx context.Context, path string) *finder.Finder {
	doc, ok := s.document(ctx, path)
	if !ok {
		return nil
	}
	return finder.New(doc, s.manifest.FinderPaths(path), s.overlay)
}

func (s *LspServer) resolveAt(ctx context.Context, path string, pos protocol.Position) *finder.Result {
	f := s.finder(ctx, path)
	if f == nil {
		return nil
	}
	chain := finder.CallChainAt(f.Document().Tokens, toPosition(pos))
	return f.Resolve(ctx, chain)
}

// ---------------------------------------------------------------------------
// Hover and definition
// ---------------------------------------------------------------------------

func (s *LspServer) hover(ctx context.Context, path string, pos protocol.Position) *protocol.Hover {
	r := s.resolveAt(ctx, path, pos)
	if r == nil {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: describe(r),
		},
	}
}

// describe renders a resolved reference as markdown.
func describe(r *finder.Result) string {
	var b strings.Builder
	if r.Member == nil {
		fmt.Fprintf(&b, "**%s**\n\n`%s`", r.Class, r.File)
		return b.String()
	}

	b.WriteString("```psl\n")
	b.WriteString(memberLabel(r.Member))
	b.WriteString("\n```\n")
	if doc := memberDocumentation(r.Member); doc != "" {
		b.WriteString("\n---\n\n")
		b.WriteString(doc)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s of `%s`", r.Member.MemberKind(), r.Class)
	return b.String()
}

func memberLabel(m syntax.Member) string {
	switch m := m.(type) {
	case *syntax.Method:
		return index.Signature(m)
	case *syntax.Parameter:
		return index.ParameterLabel(m)
	case *syntax.Declaration:
		return fmt.Sprintf("type %s %s", m.Type.Text, m.ID.Text)
	default:
		if t := m.MemberType(); t.Text != "" {
			return t.Text + " " + m.Identifier().Text
		}
		return m.Identifier().Text
	}
}

func memberDocumentation(m syntax.Member) string {
	switch m := m.(type) {
	case *syntax.Method:
		if m.Documentation != nil {
			return strings.TrimSpace(m.Documentation.Text)
		}
	case *syntax.Parameter:
		if m.Comment != nil {
			return strings.TrimSpace(m.Comment.Text)
		}
	case *syntax.Property:
		return m.Description
	}
	return ""
}

func (s *LspServer) definition(ctx context.Context, path string, pos protocol.Position) *protocol.Location {
	r := s.resolveAt(ctx, path, pos)
	if r == nil {
		return nil
	}
	loc := &protocol.Location{URI: pathToURI(r.File)}
	if r.Member != nil {
		loc.Range = fromRange(r.Member.Identifier().Range())
	}
	return loc
}

// ---------------------------------------------------------------------------
// Completion
// ---------------------------------------------------------------------------

func (s *LspServer) completion(ctx context.Context, path string, pos protocol.Position) []protocol.CompletionItem {
	f := s.finder(ctx, path)
	if f == nil {
		return nil
	}
	chain, prefix, ok := finder.CompletionChainAt(f.Document().Tokens, toPosition(pos))
	if !ok {
		return nil
	}

	lowerPrefix := strings.ToLower(prefix)
	var items []protocol.CompletionItem
	for _, m := range f.Completions(ctx, chain) {
		name := m.Identifier().Text
		if !strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			continue
		}
		kind := completionKind(m.MemberKind())
		item := protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     strPtr(memberLabel(m)),
			InsertText: strPtr(name),
		}
		if doc := memberDocumentation(m); doc != "" {
			item.Documentation = doc
		}
		items = append(items, item)
		if len(items) == maxItems {
			break
		}
	}
	return items
}

func completionKind(k syntax.MemberKind) protocol.CompletionItemKind {
	switch k {
	case syntax.KindMethod:
		return protocol.CompletionItemKindMethod
	case syntax.KindColumn:
		return protocol.CompletionItemKindField
	case syntax.KindProperty:
		return protocol.CompletionItemKindProperty
	default:
		return protocol.CompletionItemKindVariable
	}
}

// ---------------------------------------------------------------------------
// Signature help
// ---------------------------------------------------------------------------

func (s *LspServer) signatureHelp(ctx context.Context, path string, pos protocol.Position) *protocol.SignatureHelp {
	f := s.finder(ctx, path)
	if f == nil {
		return nil
	}
	tokens := f.Document().Tokens
	call, active := enclosingCall(tokens, toPosition(pos))
	if call == nil {
		return nil
	}
	r := f.Resolve(ctx, finder.CallChainAt(tokens, call.ID.Pos))
	if r == nil {
		return nil
	}
	m, ok := r.Member.(*syntax.Method)
	if !ok {
		return nil
	}

	sig := protocol.SignatureInformation{Label: index.Signature(m)}
	if doc := memberDocumentation(m); doc != "" {
		sig.Documentation = doc
	}
	for _, p := range m.Parameters {
		info := protocol.ParameterInformation{Label: index.ParameterLabel(p)}
		if p.Comment != nil {
			info.Documentation = strings.TrimSpace(p.Comment.Text)
		}
		sig.Parameters = append(sig.Parameters, info)
	}

	activeSignature := protocol.UInteger(0)
	activeParameter := protocol.UInteger(active)
	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{sig},
		ActiveSignature: &activeSignature,
		ActiveParameter: &activeParameter,
	}
}

// enclosingCall parses the statements of the cursor line up to pos and
// returns the innermost call left open at pos with the index of the
// argument slot under the cursor. It returns nil outside a call.
func enclosingCall(tokens []syntax.Token, pos syntax.Position) (*syntax.Identifier, int) {
	var line []syntax.Token
	for _, tok := range tokens {
		if tok.Pos.Line == pos.Line && tok.Pos.Before(pos) {
			line = append(line, tok)
		}
	}

	var call *syntax.Identifier
	for _, stmt := range syntax.NewParser(line).ParseLine() {
		syntax.Walk(stmt, func(n syntax.Node) bool {
			if id, ok := n.(*syntax.Identifier); ok && id.OpenParen != nil && id.CloseParen == nil {
				call = id
			}
			return true
		})
	}
	if call == nil {
		return nil, 0
	}
	return call, max(len(call.Args)-1, 0)
}

// ---------------------------------------------------------------------------
// Symbols
// ---------------------------------------------------------------------------

func (s *LspServer) documentSymbols(path string) []protocol.DocumentSymbol {
	doc, ok := s.document(context.Background(), path)
	if !ok {
		return nil
	}
	lastLine := 0
	if n := len(doc.Tokens); n > 0 {
		lastLine = doc.Tokens[n-1].End().Line
	}

	var symbols []protocol.DocumentSymbol
	for _, p := range doc.Properties {
		symbols = append(symbols, memberSymbol(p, p.ID.Range()))
	}
	for _, d := range doc.Declarations {
		symbols = append(symbols, memberSymbol(d, d.ID.Range()))
	}
	for _, m := range doc.Methods {
		end := m.EndLine
		if end < 0 {
			end = lastLine
		}
		body := syntax.Range{Start: syntax.Position{Line: m.Line}, End: syntax.Position{Line: end + 1}}
		sym := memberSymbol(m, body)
		if m.BatchLabel {
			sym.Kind = protocol.SymbolKindFunction
		}
		for _, p := range m.Parameters {
			sym.Children = append(sym.Children, memberSymbol(p, p.ID.Range()))
		}
		for _, d := range m.Declarations {
			sym.Children = append(sym.Children, memberSymbol(d, d.ID.Range()))
		}
		symbols = append(symbols, sym)
	}
	return symbols
}

func memberSymbol(m syntax.Member, r syntax.Range) protocol.DocumentSymbol {
	return protocol.DocumentSymbol{
		Name:           m.Identifier().Text,
		Detail:         strPtr(memberLabel(m)),
		Kind:           symbolKind(m.MemberKind()),
		Range:          fromRange(r),
		SelectionRange: fromRange(m.Identifier().Range()),
	}
}

func symbolKind(k syntax.MemberKind) protocol.SymbolKind {
	switch k {
	case syntax.KindMethod:
		return protocol.SymbolKindMethod
	case syntax.KindColumn:
		return protocol.SymbolKindField
	case syntax.KindProperty:
		return protocol.SymbolKindProperty
	default:
		return protocol.SymbolKindVariable
	}
}

func indexSymbolKind(kind string) protocol.SymbolKind {
	switch kind {
	case index.KindRoutine:
		return protocol.SymbolKindClass
	case index.KindLabel:
		return protocol.SymbolKindFunction
	case syntax.KindMethod.String():
		return protocol.SymbolKindMethod
	case syntax.KindProperty.String():
		return protocol.SymbolKindProperty
	case syntax.KindColumn.String():
		return protocol.SymbolKindField
	default:
		return protocol.SymbolKindVariable
	}
}

func (s *LspServer) workspaceSymbols(ctx context.Context, query string) ([]protocol.SymbolInformation, error) {
	if s.index == nil {
		return nil, nil
	}
	entries, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var symbols []protocol.SymbolInformation
	for _, e := range entries {
		pos := protocol.Position{Line: protocol.UInteger(e.Line)}
		symbols = append(symbols, protocol.SymbolInformation{
			Name: e.Name,
			Kind: indexSymbolKind(e.Kind),
			Location: protocol.Location{
				URI:   pathToURI(e.Path),
				Range: protocol.Range{Start: pos, End: pos},
			},
		})
		if len(symbols) == maxItems {
			break
		}
	}
	return symbols, nil
}

// reindex stores the current text of path in the symbol index.
func (s *LspServer) reindex(ctx context.Context, path string) error {
	if s.index == nil {
		return nil
	}
	doc, ok := s.document(ctx, path)
	if !ok {
		return nil
	}
	if err := s.index.Put(ctx, path, doc); err != nil {
		log.Errorf("reindexing %s: %s", path, err)
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func (s *LspServer) diagnostics(path string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	if !s.manifest.ShouldLint(path) {
		return diagnostics
	}
	text, ok := s.overlay.Get(path)
	if !ok {
		return diagnostics
	}

	for _, d := range s.engine.Run(lint.NewSource(path, text)) {
		severity := protocol.DiagnosticSeverity(d.Severity)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    fromRange(d.Range),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: d.Rule},
			Source:   strPtr(lspName),
			Message:  d.Message,
		})
	}
	return diagnostics
}
