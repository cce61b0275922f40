package lint

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chazu/pslkit/syntax"
)

// TodoRule reports TODO markers inside comments.
type TodoRule struct{}

func (TodoRule) Name() string { return "todo" }

func (TodoRule) Check(src *Source) []Diagnostic {
	var diags []Diagnostic
	for _, c := range src.Document.Comments {
		offset := 0
		for tok := range syntax.TokenizeAt(c.Text, c.Pos) {
			start := offset
			offset += len(tok.Text)
			if !tok.IsAlphanumeric() || tok.Text != "TODO" {
				continue
			}

			after := c.Text[start+len(tok.Text):]
			if i := strings.IndexByte(after, '\n'); i >= 0 {
				after = after[:i]
			}
			end := tok.End()
			end.Column += utf8.RuneCountInString(strings.TrimRight(after, " \t\r"))
			rest := strings.TrimSpace(strings.TrimLeft(after, ": \t"))

			msg := "TODO"
			if rest != "" {
				msg += ": " + rest
			}
			diags = append(diags, Diagnostic{
				Range:    syntax.Range{Start: tok.Pos, End: end},
				Message:  msg,
				Severity: SeverityInformation,
			})
		}
	}
	return diags
}

// MethodDocumentationRule reports methods without a block comment after
// the header.
type MethodDocumentationRule struct{}

func (MethodDocumentationRule) Name() string { return "method-documentation" }

func (MethodDocumentationRule) Check(src *Source) []Diagnostic {
	var diags []Diagnostic
	for _, m := range src.Document.Methods {
		if m.BatchLabel || m.Documentation != nil {
			continue
		}
		diags = append(diags, Diagnostic{
			Range:    m.ID.Range(),
			Message:  fmt.Sprintf("Documentation missing for method %q.", m.ID.Text),
			Severity: SeverityInformation,
		})
	}
	return diags
}

// MemberLengthRule reports member names longer than Max characters.
type MemberLengthRule struct {
	Max int
}

func (MemberLengthRule) Name() string { return "member-length" }

func (r MemberLengthRule) Check(src *Source) []Diagnostic {
	var diags []Diagnostic
	check := func(m syntax.Member) {
		id := m.Identifier()
		if n := utf8.RuneCountInString(id.Text); n > r.Max {
			diags = append(diags, Diagnostic{
				Range:    id.Range(),
				Message:  fmt.Sprintf("%s %q is %d characters long (maximum %d).", m.MemberKind(), id.Text, n, r.Max),
				Severity: SeverityWarning,
			})
		}
	}
	for _, p := range src.Document.Properties {
		check(p)
	}
	for _, d := range src.Document.Declarations {
		check(d)
	}
	for _, m := range src.Document.Methods {
		if !m.BatchLabel {
			check(m)
		}
		for _, p := range m.Parameters {
			check(p)
		}
		for _, d := range m.Declarations {
			check(d)
		}
	}
	return diags
}

// MemberCamelCaseRule reports method and property names that do not start
// with a lower-case letter. Names starting with "%" are system names and
// are skipped. An underscore is the concatenation operator, so it never
// appears inside a name.
type MemberCamelCaseRule struct{}

func (MemberCamelCaseRule) Name() string { return "member-camel-case" }

func (MemberCamelCaseRule) Check(src *Source) []Diagnostic {
	var diags []Diagnostic
	check := func(m syntax.Member) {
		id := m.Identifier()
		first, _ := utf8.DecodeRuneInString(id.Text)
		if first == '%' || first == utf8.RuneError {
			return
		}
		if unicode.IsLower(first) {
			return
		}
		diags = append(diags, Diagnostic{
			Range:    id.Range(),
			Message:  fmt.Sprintf("%s %q is not camelCase.", m.MemberKind(), id.Text),
			Severity: SeverityWarning,
		})
	}
	for _, p := range src.Document.Properties {
		check(p)
	}
	for _, m := range src.Document.Methods {
		if !m.BatchLabel {
			check(m)
		}
	}
	return diags
}

// ParametersOnNewLineRule reports methods with several parameters that do
// not give each parameter its own line below the header.
type ParametersOnNewLineRule struct{}

func (ParametersOnNewLineRule) Name() string { return "parameters-on-newline" }

func (ParametersOnNewLineRule) Check(src *Source) []Diagnostic {
	var diags []Diagnostic
	for _, m := range src.Document.Methods {
		if len(m.Parameters) < 2 {
			continue
		}
		prev := m.Line
		for _, p := range m.Parameters {
			start := p.Types[0].Pos
			if start.Line == prev {
				diags = append(diags, Diagnostic{
					Range:    syntax.Range{Start: start, End: p.ID.End()},
					Message:  fmt.Sprintf("Parameter %q should begin on a new line.", p.ID.Text),
					Severity: SeverityInformation,
				})
			}
			prev = p.ID.Pos.Line
		}
	}
	return diags
}

// MethodSeparatorRule reports method headers that are not preceded by a
// "//" separator line.
type MethodSeparatorRule struct{}

func (MethodSeparatorRule) Name() string { return "method-separator" }

func (MethodSeparatorRule) Check(src *Source) []Diagnostic {
	var diags []Diagnostic
	for _, m := range src.Document.Methods {
		if m.BatchLabel {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(src.Line(m.Line-1)), "//") {
			continue
		}
		diags = append(diags, Diagnostic{
			Range:    m.ID.Range(),
			Message:  fmt.Sprintf("Separator comment missing above method %q.", m.ID.Text),
			Severity: SeverityInformation,
		})
	}
	return diags
}
