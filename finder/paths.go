package finder

import (
	"path/filepath"
	"strings"
)

// Paths lists where the resolver looks for source, in priority order.
type Paths struct {
	ActiveFile   string
	ProjectRoots []string
	CoreRoot     string
	TableRoot    string
}

var (
	projectExtensions = []string{".PROC", ".psl", ".PSL"}
	coreExtensions    = []string{".PSL", ".psl"}
)

// classFiles returns the candidate files for class, first match wins.
func (p Paths) classFiles(class string) []string {
	var files []string
	for _, root := range p.ProjectRoots {
		for _, ext := range projectExtensions {
			files = append(files, filepath.Join(root, class+ext))
		}
	}
	if p.CoreRoot != "" {
		for _, ext := range coreExtensions {
			files = append(files, filepath.Join(p.CoreRoot, class+ext))
		}
	}
	return files
}

// tableDir returns the schema directory of a table.
func (p Paths) tableDir(table string) string {
	return filepath.Join(p.TableRoot, strings.ToLower(table))
}

// withActive returns a copy of p with a different active file.
func (p Paths) withActive(file string) Paths {
	p.ActiveFile = file
	return p
}

// routineName returns the routine a file defines: its base name without
// the extension.
func routineName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
