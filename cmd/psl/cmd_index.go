package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/pslkit/index"
	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/manifest"
)

var (
	indexPath    string
	lookupPrefix bool
)

func indexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [PATH...]",
		Short: "Build the workspace symbol index",
		RunE:  runIndexCommand,
	}
	cmd.Flags().StringVar(&indexPath, "db", "", "index database (default from "+manifest.FileName+")")
	return cmd
}

func lookupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup NAME",
		Short: "Query the workspace symbol index",
		Args:  cobra.ExactArgs(1),
		RunE:  runLookupCommand,
	}
	cmd.Flags().StringVar(&indexPath, "db", "", "index database (default from "+manifest.FileName+")")
	cmd.Flags().BoolVarP(&lookupPrefix, "prefix", "p", false, "match names starting with NAME")
	return cmd
}

func openIndex(m *manifest.Manifest) (*index.Store, error) {
	path := indexPath
	if path == "" {
		path = m.IndexPath()
	}
	return index.Open(path)
}

func runIndexCommand(cmd *cobra.Command, args []string) error {
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

	store, err := openIndex(m)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := index.Build(cmd.Context(), store, loader.FS{}, files)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d files\n", n)
	return nil
}

func runLookupCommand(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}
	store, err := openIndex(m)
	if err != nil {
		return err
	}
	defer store.Close()

	var entries []index.Entry
	if lookupPrefix {
		entries, err = store.Search(cmd.Context(), args[0])
	} else {
		entries, err = store.Lookup(cmd.Context(), args[0])
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errProblems
	}

	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s:%d\t%s %s\t%s\n", e.Path, e.Line+1, e.Kind, e.Name, e.Type)
	}
	return nil
}
