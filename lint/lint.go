// Package lint runs style rules over the structural model of a routine.
package lint

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/chazu/pslkit/syntax"
)

// Severity follows the LSP diagnostic severity numbering.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

var severityNames = map[Severity]string{
	SeverityError:       "error",
	SeverityWarning:     "warning",
	SeverityInformation: "info",
	SeverityHint:        "hint",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", s)
}

// Diagnostic is one finding of a rule.
type Diagnostic struct {
	Range    syntax.Range
	Message  string
	Severity Severity
	Rule     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s [%s]", d.Range.Start.Line+1, d.Range.Start.Column+1, d.Severity, d.Message, d.Rule)
}

// Source is a routine prepared for linting.
type Source struct {
	Path     string
	Text     string
	Document *syntax.Document
	Lines    []string
}

// NewSource parses text.
func NewSource(path, text string) *Source {
	return &Source{
		Path:     path,
		Text:     text,
		Document: syntax.ParseDocument(text),
		Lines:    strings.Split(text, "\n"),
	}
}

// Line returns line n without a trailing carriage return, or "".
func (s *Source) Line(n int) string {
	if n < 0 || n >= len(s.Lines) {
		return ""
	}
	return strings.TrimSuffix(s.Lines[n], "\r")
}

// Rule checks one property of a routine.
type Rule interface {
	Name() string
	Check(src *Source) []Diagnostic
}

// Engine runs a fixed set of rules.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine for rules.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the rules the engine runs.
func (e *Engine) Rules() []Rule { return e.rules }

// Run checks src with every rule and returns the diagnostics ordered by
// position.
func (e *Engine) Run(src *Source) []Diagnostic {
	var diags []Diagnostic
	for _, r := range e.rules {
		for _, d := range r.Check(src) {
			d.Rule = r.Name()
			diags = append(diags, d)
		}
	}
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		if c := cmp.Compare(a.Range.Start.Line, b.Range.Start.Line); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Range.Start.Column, b.Range.Start.Column); c != 0 {
			return c
		}
		return cmp.Compare(a.Rule, b.Rule)
	})
	return diags
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{
		TodoRule{},
		MethodDocumentationRule{},
		MemberLengthRule{Max: 25},
		MemberCamelCaseRule{},
		ParametersOnNewLineRule{},
		MethodSeparatorRule{},
	}
}

// Filter drops the rules named in disabled.
func Filter(rules []Rule, disabled []string) []Rule {
	var kept []Rule
	for _, r := range rules {
		if !slices.Contains(disabled, r.Name()) {
			kept = append(kept, r)
		}
	}
	return kept
}
