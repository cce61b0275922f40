// Package finder resolves call chains to the members they name, following
// extends links and table schemas across files.
package finder

import (
	"context"
	"slices"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/syntax"
)

var log = commonlog.GetLogger("pslkit.finder")

// primitiveClass is the class that void and untyped members continue as.
const primitiveClass = "Primitive"

// Result is a resolved reference. Member is nil when the reference names a
// whole class or table.
type Result struct {
	File   string
	Member syntax.Member
	Class  string // class defined by File
}

// Finder resolves names within one parsed routine. Finders for parent
// classes and tables are new instances built from freshly loaded text.
type Finder struct {
	doc     *syntax.Document
	paths   Paths
	loader  loader.Loader
	routine string

	// visited holds the routines already entered on the way here through
	// extends links. It is copied, never shared, when extended.
	visited []string

	// table finders match column names case-insensitively and keep the
	// file each column was read from.
	table       bool
	columnFiles map[*syntax.Property]string
}

// New creates a finder for doc, the parsed text of paths.ActiveFile.
func New(doc *syntax.Document, paths Paths, l loader.Loader) *Finder {
	return &Finder{
		doc:     doc,
		paths:   paths,
		loader:  l,
		routine: routineName(paths.ActiveFile),
	}
}

// Document returns the routine the finder searches.
func (f *Finder) Document() *syntax.Document { return f.doc }

// Resolve resolves chain, e.g. [a b c] for "a.b(x).c". It returns nil when
// any link cannot be resolved.
func (f *Finder) Resolve(ctx context.Context, chain []syntax.Token) *Result {
	if len(chain) == 0 {
		return nil
	}

	var result *Result
	if f.isSelf(chain[0]) {
		result = &Result{File: f.paths.ActiveFile, Class: f.routine}
	} else {
		result = f.resolveSingle(ctx, chain[0])
	}

	for _, link := range chain[1:] {
		if result == nil {
			return nil
		}
		next := f.finderFor(ctx, result)
		if next == nil {
			return nil
		}
		result = next.searchMembers(ctx, link)
	}
	return result
}

func (f *Finder) isSelf(tok syntax.Token) bool {
	return strings.EqualFold(tok.Text, "this") || tok.Text == f.routine
}

// resolveSingle looks a name up from inside the routine: locals first,
// then members, then the parent chain, then other classes and tables.
func (f *Finder) resolveSingle(ctx context.Context, tok syntax.Token) *Result {
	name, line := tok.Text, tok.Pos.Line

	if m := f.doc.MethodAt(line); m != nil {
		// Nearest preceding declaration wins.
		for i := len(m.Declarations) - 1; i >= 0; i-- {
			d := m.Declarations[i]
			if d.ID.Text == name && d.ID.Pos.Line <= line {
				return f.declarationResult(ctx, d)
			}
		}
		for _, p := range m.Parameters {
			if p.ID.Text == name {
				return f.result(p)
			}
		}
	}

	if r := f.searchOwnMembers(tok); r != nil {
		return r
	}
	for i := len(f.doc.Declarations) - 1; i >= 0; i-- {
		if d := f.doc.Declarations[i]; d.ID.Text == name {
			return f.declarationResult(ctx, d)
		}
	}
	if r := f.searchParent(ctx, tok); r != nil {
		return r
	}

	if next := f.newFinder(ctx, name, nil); next != nil {
		return &Result{File: next.paths.ActiveFile, Class: next.routine}
	}
	return nil
}

// declarationResult resolves "type static X" to the file of class X.
func (f *Finder) declarationResult(ctx context.Context, d *syntax.Declaration) *Result {
	if d.IsStatic() {
		if next := f.newFinder(ctx, d.Type.Text, nil); next != nil {
			return &Result{File: next.paths.ActiveFile, Class: next.routine}
		}
	}
	return f.result(d)
}

func (f *Finder) result(m syntax.Member) *Result {
	file := f.paths.ActiveFile
	if p, ok := m.(*syntax.Property); ok {
		if colFile, ok := f.columnFiles[p]; ok {
			file = colFile
		}
	}
	return &Result{File: file, Member: m, Class: f.routine}
}

// searchMembers looks tok up among the members visible on the class:
// its own properties and methods, then its parents'.
func (f *Finder) searchMembers(ctx context.Context, tok syntax.Token) *Result {
	if r := f.searchOwnMembers(tok); r != nil {
		return r
	}
	return f.searchParent(ctx, tok)
}

func (f *Finder) searchOwnMembers(tok syntax.Token) *Result {
	for _, p := range f.doc.Properties {
		if f.sameName(p.ID.Text, tok.Text) {
			return f.result(p)
		}
	}
	for _, m := range f.doc.Methods {
		if f.sameName(m.ID.Text, tok.Text) {
			return f.result(m)
		}
	}
	return nil
}

func (f *Finder) sameName(a, b string) bool {
	if f.table {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// parent returns a finder for the extends class, or nil when there is
// none or entering it would revisit a routine.
func (f *Finder) parent(ctx context.Context) *Finder {
	if f.doc.Extends == nil {
		return nil
	}
	name := f.doc.Extends.Text
	visited := append(slices.Clone(f.visited), f.routine)
	if slices.ContainsFunc(visited, func(v string) bool { return strings.EqualFold(v, name) }) {
		log.Debugf("extends cycle: %s -> %s", strings.Join(visited, " -> "), name)
		return nil
	}
	return f.newFinder(ctx, name, visited)
}

func (f *Finder) searchParent(ctx context.Context, tok syntax.Token) *Result {
	if p := f.parent(ctx); p != nil {
		return p.searchMembers(ctx, tok)
	}
	return nil
}

// finderFor returns a finder for the class a result evaluates to.
func (f *Finder) finderFor(ctx context.Context, r *Result) *Finder {
	class := r.Class
	if r.Member != nil {
		class = r.Member.MemberType().Text
		if class == "" || strings.EqualFold(class, "void") {
			class = primitiveClass
		}
	}
	return f.newFinder(ctx, class, nil)
}

// newFinder loads class through the project and core roots, or the table
// schema for a Record class.
func (f *Finder) newFinder(ctx context.Context, class string, visited []string) *Finder {
	if class == "" {
		return nil
	}
	if table, ok := strings.CutPrefix(class, "Record"); ok && table != "" {
		return f.tableFinder(ctx, class, table, visited)
	}
	for _, file := range f.paths.classFiles(class) {
		text, err := f.loader.Load(ctx, file)
		if err != nil {
			continue
		}
		log.Debugf("loaded %s for %s", file, class)
		return &Finder{
			doc:     syntax.ParseDocument(text),
			paths:   f.paths.withActive(file),
			loader:  f.loader,
			routine: class,
			visited: visited,
		}
	}
	return nil
}

// Completions returns the members visible on the class chain evaluates
// to. Members of a subclass hide same-named members of its parents.
func (f *Finder) Completions(ctx context.Context, chain []syntax.Token) []syntax.Member {
	r := f.Resolve(ctx, chain)
	if r == nil {
		return nil
	}
	next := f.finderFor(ctx, r)

	var members []syntax.Member
	seen := make(map[string]bool)
	for next != nil {
		for _, p := range next.doc.Properties {
			if key := strings.ToLower(p.ID.Text); !seen[key] {
				seen[key] = true
				members = append(members, p)
			}
		}
		for _, m := range next.doc.Methods {
			if key := strings.ToLower(m.ID.Text); !m.BatchLabel && !seen[key] {
				seen[key] = true
				members = append(members, m)
			}
		}
		next = next.parent(ctx)
	}
	return members
}
