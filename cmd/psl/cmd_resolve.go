package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chazu/pslkit/finder"
	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/syntax"
)

func resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve FILE LINE COL",
		Short: "Find the declaration of the name at a position (1-based)",
		Args:  cobra.ExactArgs(3),
		RunE:  runResolveCommand,
	}
}

func runResolveCommand(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	line, err := strconv.Atoi(args[1])
	if err != nil || line < 1 {
		return fmt.Errorf("invalid line %q", args[1])
	}
	col, err := strconv.Atoi(args[2])
	if err != nil || col < 1 {
		return fmt.Errorf("invalid column %q", args[2])
	}

	m, err := loadManifest()
	if err != nil {
		return err
	}
	text, err := loader.FS{}.Load(cmd.Context(), path)
	if err != nil {
		return err
	}

	doc := syntax.ParseDocument(text)
	f := finder.New(doc, m.FinderPaths(path), loader.FS{})
	chain := finder.CallChainAt(doc.Tokens, syntax.Position{Line: line - 1, Column: col - 1})
	if len(chain) == 0 {
		return fmt.Errorf("no name at %d:%d", line, col)
	}

	r := f.Resolve(cmd.Context(), chain)
	if r == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: unresolved\n", chain[len(chain)-1].Text)
		return errProblems
	}

	out := cmd.OutOrStdout()
	if r.Member == nil {
		fmt.Fprintf(out, "%s\tclass %s\n", r.File, r.Class)
		return nil
	}
	pos := r.Member.Identifier().Pos
	fmt.Fprintf(out, "%s:%d:%d\t%s %s\n", r.File, pos.Line+1, pos.Column+1, r.Member.MemberKind(), r.Member.Identifier().Text)
	return nil
}
