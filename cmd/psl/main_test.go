package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chazu/pslkit/index"
	"github.com/chazu/pslkit/lint"
	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/manifest"
)

const routine = "\t// ---\npublic run()\n\t/* Runs. */\n\tquit\n"

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "A.psl"), routine)
	writeFile(t, filepath.Join(dir, "src", "B.PROC"), routine)
	writeFile(t, filepath.Join(dir, "src", "GenC.psl"), routine)
	writeFile(t, filepath.Join(dir, "src", "notes.txt"), "")
	writeFile(t, filepath.Join(dir, "other.txt"), "")

	m := &manifest.Manifest{Dir: dir, Lint: manifest.Lint{Exclude: []string{"Gen*"}}}
	files, err := collectFiles(m, []string{filepath.Join(dir, "src"), filepath.Join(dir, "other.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "other.txt"),
		filepath.Join(dir, "src", "A.psl"),
		filepath.Join(dir, "src", "B.PROC"),
	}, files)

	_, err = collectFiles(m, []string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestLintFiles(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "Clean.psl")
	dirty := filepath.Join(dir, "Dirty.psl")
	writeFile(t, clean, routine)
	writeFile(t, dirty, "BadName()\n\tquit\n")

	engine := lint.NewEngine(lint.DefaultRules()...)
	results, err := lintFiles(context.Background(), engine, loader.FS{}, []string{clean, dirty})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, results[0])

	var rules []string
	for _, d := range results[1] {
		rules = append(rules, d.Rule)
	}
	assert.Equal(t, []string{"member-camel-case", "method-documentation", "method-separator"}, rules)

	_, err = lintFiles(context.Background(), engine, loader.FS{}, []string{filepath.Join(dir, "Gone.psl")})
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestLintFilesUsesLoader(t *testing.T) {
	files := loader.Map{
		"/p/Open.psl": "\t// ---\npublic run()\n\t/* Runs. */\n\tquit\n",
		"/p/Edit.psl": "Edited()\n\tquit\n",
	}
	engine := lint.NewEngine(lint.MemberCamelCaseRule{})
	results, err := lintFiles(context.Background(), engine, files, []string{"/p/Open.psl", "/p/Edit.psl"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, results[0])
	require.Len(t, results[1], 1)
	assert.Equal(t, "member-camel-case", results[1][0].Rule)
}

func TestOutlineFormats(t *testing.T) {
	file := filepath.Join(t.TempDir(), "Job.psl")
	writeFile(t, file, routine)

	run := func(format string) []byte {
		var out bytes.Buffer
		cmd := outlineCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--format", format, file})
		require.NoError(t, cmd.Execute())
		return out.Bytes()
	}

	var fromJSON index.Outline
	require.NoError(t, json.Unmarshal(run("json"), &fromJSON))
	assert.Equal(t, "Job", fromJSON.Routine)
	require.Len(t, fromJSON.Symbols, 1)
	assert.Equal(t, "run", fromJSON.Symbols[0].Name)

	var fromYAML index.Outline
	require.NoError(t, yaml.Unmarshal(run("yaml"), &fromYAML))
	assert.Equal(t, fromJSON, fromYAML)

	fromCBOR, err := index.UnmarshalOutline(run("cbor"))
	require.NoError(t, err)
	assert.Equal(t, &fromJSON, fromCBOR)

	cmd := outlineCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", file})
	assert.Error(t, cmd.Execute())
}

func TestOutlineMissingFile(t *testing.T) {
	cmd := outlineCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "Gone.psl")})
	assert.ErrorIs(t, cmd.Execute(), loader.ErrNotFound)
}
