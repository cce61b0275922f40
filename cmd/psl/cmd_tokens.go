package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/syntax"
)

var tokensStatements bool

func tokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the tokens of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokensCommand,
	}
	cmd.Flags().BoolVarP(&tokensStatements, "statements", "s", false, "print parsed statements instead of tokens")
	return cmd
}

func runTokensCommand(cmd *cobra.Command, args []string) error {
	text, err := loader.FS{}.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if tokensStatements {
		for _, st := range syntax.ParseText(text) {
			fmt.Fprintf(out, "%s\t%s\t%d args\n", st.Pos(), st.Kind, len(st.Expressions))
		}
		return nil
	}

	for tok := range syntax.Tokenize(text) {
		fmt.Fprintf(out, "%s\t%s\t%q\n", tok.Pos, tok.Type, tok.Text)
	}
	return nil
}
