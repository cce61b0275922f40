package syntax

import (
	"strings"
	"testing"
)

var routineSource = strings.Join([]string{
	"\t#PACKAGE framework.psl",
	"\t#CLASSDEF extends = Parent public",
	"\t#PROPERTYDEF name class = String public position = 2",
	"\ttype static Util",
	"\t// ---------",
	"public String greet(String who,  // the name",
	"\tNumber count)",
	"\t/* Says hello. */",
	"\ttype String msg = \"hi\"",
	"\ttype Number i, j",
	"\tquit msg",
	"\t// ---------",
	"private void reset()",
	"\tset x = 1",
	"\tquit",
	"---- BATCH",
	"\tquit",
}, "\n")

func TestParseDocumentMethods(t *testing.T) {
	doc := ParseDocument(routineSource)

	expected := []struct {
		id      string
		line    int
		endLine int
		batch   bool
	}{
		{"greet", 5, 11, false},
		{"reset", 12, 14, false},
		{"BATCH", 15, -1, true},
	}

	if len(doc.Methods) != len(expected) {
		t.Fatalf("got %d methods, want %d", len(doc.Methods), len(expected))
	}
	for i, exp := range expected {
		m := doc.Methods[i]
		if m.ID.Text != exp.id {
			t.Errorf("methods[%d].ID = %q, want %q", i, m.ID.Text, exp.id)
		}
		if m.Line != exp.line {
			t.Errorf("methods[%d].Line = %d, want %d", i, m.Line, exp.line)
		}
		if m.EndLine != exp.endLine {
			t.Errorf("methods[%d].EndLine = %d, want %d", i, m.EndLine, exp.endLine)
		}
		if m.BatchLabel != exp.batch {
			t.Errorf("methods[%d].BatchLabel = %v, want %v", i, m.BatchLabel, exp.batch)
		}
	}
}

func TestParseDocumentHeader(t *testing.T) {
	doc := ParseDocument(routineSource)
	greet := doc.Methods[0]

	if greet.Type().Text != "String" {
		t.Errorf("greet type = %q, want String", greet.Type().Text)
	}
	if len(greet.Modifiers) != 2 || greet.Modifiers[0].Text != "public" {
		t.Errorf("greet modifiers = %v", greet.Modifiers)
	}
	if greet.Documentation == nil || strings.TrimSpace(greet.Documentation.Text) != "Says hello." {
		t.Errorf("greet documentation = %v", greet.Documentation)
	}
	if len(greet.Parameters) != 2 {
		t.Fatalf("greet parameters = %d, want 2", len(greet.Parameters))
	}

	who, count := greet.Parameters[0], greet.Parameters[1]
	if who.ID.Text != "who" || who.MemberType().Text != "String" {
		t.Errorf("who = %s %s", who.MemberType().Text, who.ID.Text)
	}
	if who.Comment == nil || strings.TrimSpace(who.Comment.Text) != "the name" {
		t.Errorf("who comment = %v", who.Comment)
	}
	if count.ID.Text != "count" || count.ID.Pos.Line != 6 {
		t.Errorf("count = %v at line %d", count.ID, count.ID.Pos.Line)
	}

	reset := doc.Methods[1]
	if reset.Type().Text != "void" {
		t.Errorf("reset type = %q, want void", reset.Type().Text)
	}
	if reset.OpenParen == nil || reset.CloseParen == nil || len(reset.Parameters) != 0 {
		t.Errorf("reset params = %v", reset.Parameters)
	}
}

func TestParseDocumentDirectives(t *testing.T) {
	doc := ParseDocument(routineSource)

	if doc.Package != "framework.psl" {
		t.Errorf("Package = %q, want framework.psl", doc.Package)
	}
	if doc.Extends == nil || doc.Extends.Text != "Parent" {
		t.Errorf("Extends = %v, want Parent", doc.Extends)
	}
	if len(doc.Properties) != 1 {
		t.Fatalf("got %d properties, want 1", len(doc.Properties))
	}

	prop := doc.Properties[0]
	if prop.ID.Text != "name" || prop.Type.Text != "String" {
		t.Errorf("property = %s %s", prop.Type.Text, prop.ID.Text)
	}
	if prop.Attributes["position"].Text != "2" {
		t.Errorf("position = %v", prop.Attributes["position"])
	}
	if len(prop.Modifiers) != 1 || prop.Modifiers[0].Text != "public" {
		t.Errorf("modifiers = %v", prop.Modifiers)
	}
	if prop.MemberKind() != KindProperty {
		t.Errorf("kind = %v, want property", prop.MemberKind())
	}
}

func TestParseDocumentDeclarations(t *testing.T) {
	doc := ParseDocument(routineSource)

	if len(doc.Declarations) != 1 {
		t.Fatalf("top-level declarations = %d, want 1", len(doc.Declarations))
	}
	util := doc.Declarations[0]
	if util.ID.Text != "Util" || util.Type.Text != "Util" || !util.IsStatic() {
		t.Errorf("static declaration = %+v", util)
	}

	greet := doc.Methods[0]
	expected := []struct{ typ, id string }{
		{"String", "msg"},
		{"Number", "i"},
		{"Number", "j"},
	}
	if len(greet.Declarations) != len(expected) {
		t.Fatalf("greet declarations = %d, want %d", len(greet.Declarations), len(expected))
	}
	for i, exp := range expected {
		d := greet.Declarations[i]
		if d.Type.Text != exp.typ || d.ID.Text != exp.id {
			t.Errorf("declarations[%d] = %s %s, want %s %s", i, d.Type.Text, d.ID.Text, exp.typ, exp.id)
		}
	}
	if len(doc.Methods[1].Declarations) != 0 {
		t.Errorf("reset declarations = %v, want none", doc.Methods[1].Declarations)
	}
}

func TestParseDocumentLoneType(t *testing.T) {
	doc := ParseDocument("\ttype String\nfoo(x, ret String y, req literal Number z)\n")

	if len(doc.Declarations) != 0 {
		t.Errorf("lone non-static type declared %v", doc.Declarations)
	}
	params := doc.Methods[0].Parameters
	if len(params) != 3 {
		t.Fatalf("got %d parameters, want 3", len(params))
	}
	if params[0].ID.Text != "x" || params[0].MemberType().Text != "void" {
		t.Errorf("x = %s %s, want void x", params[0].MemberType().Text, params[0].ID.Text)
	}
	if !params[1].Ret || params[1].Req {
		t.Errorf("y flags = %+v", params[1])
	}
	if !params[2].Req || !params[2].Literal || params[2].MemberType().Text != "Number" {
		t.Errorf("z = %+v", params[2])
	}
}

func TestParseDocumentMultiTypeParameter(t *testing.T) {
	doc := ParseDocument("run(Record(RecordA, RecordB) rec)\n")
	params := doc.Methods[0].Parameters
	if len(params) != 1 {
		t.Fatalf("got %d parameters, want 1", len(params))
	}
	var types []string
	for _, typ := range params[0].Types {
		types = append(types, typ.Text)
	}
	if strings.Join(types, ",") != "Record,RecordA,RecordB" || params[0].ID.Text != "rec" {
		t.Errorf("rec types = %v id = %s", types, params[0].ID.Text)
	}
}

func TestParseDocumentHeaderLines(t *testing.T) {
	source := "first()\n\tquit\nsecond\n\tquit\n\nthird(a)\n\tquit\n"
	doc := ParseDocument(source)
	want := []int{0, 2, 5}
	if len(doc.Methods) != len(want) {
		t.Fatalf("got %d methods, want %d", len(doc.Methods), len(want))
	}
	for i, line := range want {
		if doc.Methods[i].Line != line {
			t.Errorf("methods[%d].Line = %d, want %d", i, doc.Methods[i].Line, line)
		}
	}
}

func TestParseDocumentUnterminatedParameters(t *testing.T) {
	doc := ParseDocument("foo(a,\nbar()\n")
	if len(doc.Methods) != 2 {
		t.Fatalf("got %d methods, want 2", len(doc.Methods))
	}
	if len(doc.Methods[0].Parameters) != 1 || doc.Methods[0].CloseParen != nil {
		t.Errorf("foo params = %v", doc.Methods[0].Parameters)
	}
	if doc.Methods[1].ID.Text != "bar" || doc.Methods[1].Line != 1 {
		t.Errorf("second method = %v", doc.Methods[1].ID)
	}
}

func TestParseDocumentNotAHeader(t *testing.T) {
	doc := ParseDocument("x = 1\n")
	if len(doc.Methods) != 0 {
		t.Errorf("got %d methods, want 0", len(doc.Methods))
	}
}

func TestMethodAt(t *testing.T) {
	doc := ParseDocument(routineSource)
	tests := []struct {
		line int
		want string
	}{
		{3, ""},
		{5, "greet"},
		{9, "greet"},
		{13, "reset"},
		{16, "BATCH"},
	}
	for _, tc := range tests {
		m := doc.MethodAt(tc.line)
		got := ""
		if m != nil {
			got = m.ID.Text
		}
		if got != tc.want {
			t.Errorf("MethodAt(%d) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestDocumentComments(t *testing.T) {
	doc := ParseDocument(routineSource)
	if len(doc.Comments) != 4 {
		t.Errorf("got %d comments, want 4", len(doc.Comments))
	}
}
