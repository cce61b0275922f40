package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chazu/pslkit/index"
	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/syntax"
)

var outlineFormat string

func outlineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outline FILE",
		Short: "Print the members of a routine",
		Args:  cobra.ExactArgs(1),
		RunE:  runOutlineCommand,
	}
	cmd.Flags().StringVarP(&outlineFormat, "format", "f", "json", "output format: json, yaml or cbor")
	return cmd
}

func runOutlineCommand(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	text, err := loader.FS{}.Load(cmd.Context(), path)
	if err != nil {
		return err
	}
	outline := index.OutlineOf(path, syntax.ParseDocument(text))
	out := cmd.OutOrStdout()

	switch outlineFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outline)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(outline); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		b, err := index.MarshalOutline(outline)
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or cbor)", outlineFormat)
	}
}
