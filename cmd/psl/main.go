// Command psl is the command-line front end for PSL routines.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/pslkit/manifest"

	_ "github.com/tliron/commonlog/simple"
)

// Flag values shared by every command.
var (
	verbosity  int
	projectDir string
)

// errProblems makes the process exit with status 1 after output that has
// already been printed.
var errProblems = errors.New("problems found")

func main() {
	root := &cobra.Command{
		Use:           "psl",
		Short:         "Tools for PSL routines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	root.PersistentFlags().StringVarP(&projectDir, "project", "C", ".", "directory to search upwards for "+manifest.FileName)

	root.AddCommand(
		tokensCommand(),
		outlineCommand(),
		resolveCommand(),
		lintCommand(),
		indexCommand(),
		lookupCommand(),
		lspCommand(),
	)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errProblems) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadManifest finds the project manifest, falling back to defaults
// rooted at the project directory.
func loadManifest() (*manifest.Manifest, error) {
	m, err := manifest.LoadOrDefault(projectDir)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return m, nil
}
