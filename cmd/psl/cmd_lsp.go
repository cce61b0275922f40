package main

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/pslkit/index"
	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/server"
)

var lspNoIndex bool

func lspCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server on stdio",
		Args:  cobra.NoArgs,
		RunE:  runLspCommand,
	}
	cmd.Flags().BoolVar(&lspNoIndex, "no-index", false, "disable the workspace symbol index")
	return cmd
}

func runLspCommand(cmd *cobra.Command, args []string) error {
	log := commonlog.GetLogger("pslkit.lsp")

	m, err := loadManifest()
	if err != nil {
		return err
	}

	cache := loader.NewCache(loader.FS{})
	defer cache.Close()
	watched := append(m.SourceDirPaths(), m.CoreDir(), m.TableDir())
	if err := cache.Watch(watched...); err != nil {
		log.Warningf("file watching disabled: %s", err)
	}

	var store *index.Store
	if !lspNoIndex {
		store, err = index.Open(m.IndexPath())
		if err != nil {
			log.Warningf("workspace symbols disabled: %s", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	return server.NewLSP(server.Options{
		Manifest: m,
		Loader:   cache,
		Index:    store,
	}).Run()
}
