package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/pslkit/lint"
	"github.com/chazu/pslkit/loader"
)

func lintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [PATH...]",
		Short: "Check routines against the style rules",
		RunE:  runLintCommand,
	}
}

var severityColors = map[lint.Severity]*color.Color{
	lint.SeverityError:       color.New(color.Bold, color.FgRed),
	lint.SeverityWarning:     color.New(color.Bold, color.FgYellow),
	lint.SeverityInformation: color.New(color.Bold, color.FgCyan),
	lint.SeverityHint:        color.New(color.Faint),
}

func runLintCommand(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = m.SourceDirPaths()
	}
	files, err := collectFiles(m, args)
	if err != nil {
		return err
	}

	engine := lint.NewEngine(lint.Filter(lint.DefaultRules(), m.Lint.Disable)...)
	results, err := lintFiles(cmd.Context(), engine, loader.FS{}, files)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	problems := 0
	for i, diags := range results {
		for _, d := range diags {
			label := severityColors[d.Severity].Sprint(d.Severity)
			fmt.Fprintf(out, "%s:%d:%d: %s: %s %s\n",
				files[i], d.Range.Start.Line+1, d.Range.Start.Column+1,
				label, d.Message, color.New(color.Faint).Sprintf("[%s]", d.Rule))
			if d.Severity <= lint.SeverityWarning {
				problems++
			}
		}
	}

	if problems > 0 {
		fmt.Fprintf(out, "\n%d problems in %d files\n", problems, len(files))
		return errProblems
	}
	return nil
}

// lintFiles runs engine over files concurrently. results[i] holds the
// diagnostics of files[i].
func lintFiles(ctx context.Context, engine *lint.Engine, ld loader.Loader, files []string) ([][]lint.Diagnostic, error) {
	results := make([][]lint.Diagnostic, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := ld.Load(ctx, file)
			if err != nil {
				return err
			}
			results[i] = engine.Run(lint.NewSource(file, text))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
