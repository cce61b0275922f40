package finder

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/syntax"
)

// Schema is the structured preamble of a .TBL or .COL file.
type Schema struct {
	Description string `json:"DES"`
	Parent      string `json:"PARFID"`
	Type        string `json:"TYP"`
}

// columnTypes maps a column TYP code to the class its values have.
var columnTypes = map[string]string{
	"$": "Number",
	"B": "Blob",
	"C": "Time",
	"D": "Date",
	"F": "String",
	"L": "Boolean",
	"M": "Memo",
	"N": "Number",
	"T": "String",
	"U": "String",
}

// ColumnClass returns the class of a column TYP code.
func ColumnClass(typ string) string {
	if class, ok := columnTypes[strings.ToUpper(typ)]; ok {
		return class
	}
	return primitiveClass
}

// ParseSchema parses a schema file: a brace-delimited relaxed-JSON object
// followed by free-text documentation, which is returned as rest.
func ParseSchema(text string) (schema Schema, rest string, err error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return Schema{}, text, fmt.Errorf("no schema object")
	}
	end := closingBrace(text, start)
	if end < 0 {
		return Schema{}, text, fmt.Errorf("unterminated schema object")
	}

	data, err := hujson.Standardize([]byte(text[start : end+1]))
	if err != nil {
		return Schema{}, text, fmt.Errorf("invalid schema object: %w", err)
	}
	if err := json.Unmarshal(data, &schema); err != nil {
		return Schema{}, text, fmt.Errorf("invalid schema object: %w", err)
	}
	return schema, text[end+1:], nil
}

// closingBrace returns the index of the brace closing the one at start,
// skipping braces inside strings and comments.
func closingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '"':
			for i++; i < len(text) && text[i] != '"'; i++ {
				if text[i] == '\\' {
					i++
				}
			}
		case '/':
			if i+1 < len(text) && text[i+1] == '/' {
				for i < len(text) && text[i] != '\n' {
					i++
				}
			} else if i+1 < len(text) && text[i+1] == '*' {
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					return -1
				}
				i += end + 3
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// tableFinder builds a finder over a synthetic document whose properties
// are the columns of table and whose parent is the table's PARFID.
func (f *Finder) tableFinder(ctx context.Context, class, table string, visited []string) *Finder {
	upper := strings.ToUpper(table)
	dir := f.paths.tableDir(table)
	file := filepath.Join(dir, upper+".TBL")

	text, err := f.loader.Load(ctx, file)
	if err != nil {
		return nil
	}
	log.Debugf("loaded table %s", file)

	doc := &syntax.Document{}
	if schema, _, err := ParseSchema(text); err != nil {
		log.Debugf("%s: %v", file, err)
	} else if schema.Parent != "" {
		parent := syntax.NewToken(syntax.TokenAlphanumeric, "Record"+schema.Parent, syntax.Position{})
		doc.Extends = &parent
	}

	next := &Finder{
		doc:         doc,
		paths:       f.paths.withActive(file),
		loader:      f.loader,
		routine:     class,
		visited:     visited,
		table:       true,
		columnFiles: make(map[*syntax.Property]string),
	}

	names, err := loader.List(ctx, f.loader, dir)
	if err != nil {
		return next
	}
	prefix := upper + "-"
	for _, name := range names {
		base := strings.ToUpper(name)
		if !strings.HasPrefix(base, prefix) || !strings.HasSuffix(base, ".COL") {
			continue
		}
		column := name[len(prefix) : len(name)-len(".COL")]
		colFile := filepath.Join(dir, name)

		prop := &syntax.Property{
			ID:       syntax.NewToken(syntax.TokenAlphanumeric, column, syntax.Position{}),
			IsColumn: true,
		}
		if colText, err := f.loader.Load(ctx, colFile); err == nil {
			if schema, _, err := ParseSchema(colText); err == nil {
				prop.Description = schema.Description
				prop.Type = syntax.NewToken(syntax.TokenAlphanumeric, ColumnClass(schema.Type), syntax.Position{})
			}
		}
		doc.Properties = append(doc.Properties, prop)
		next.columnFiles[prop] = colFile
	}
	return next
}
