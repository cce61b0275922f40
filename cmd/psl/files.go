package main

import (
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/chazu/pslkit/manifest"
)

var sourceExtensions = []string{".psl", ".PSL", ".PROC"}

// collectFiles expands args into absolute source paths. Directories are
// walked for files with a source extension that pass the manifest's lint
// filters; files named explicitly are always kept.
func collectFiles(m *manifest.Manifest, args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		root, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if path == root || (slices.Contains(sourceExtensions, filepath.Ext(path)) && m.ShouldLint(path)) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
