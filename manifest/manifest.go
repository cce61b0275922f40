// Package manifest handles psl.toml project configuration.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/pslkit/finder"
)

// FileName is the name of the project file.
const FileName = "psl.toml"

// ErrNoManifest is returned by FindAndLoad when no psl.toml exists in the
// start directory or any of its parents.
var ErrNoManifest = errors.New("no " + FileName + " found")

// Manifest represents a psl.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Core    Dir     `toml:"core"`
	Tables  Dir     `toml:"tables"`
	Lint    Lint    `toml:"lint"`
	Index   Index   `toml:"index"`

	// Dir is the directory containing the psl.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// Source configures the project search roots, in priority order.
type Source struct {
	Dirs []string `toml:"dirs"`
}

// Dir configures a single directory.
type Dir struct {
	Dir string `toml:"dir"`
}

// Lint configures which files are linted and which rules run.
type Lint struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	Disable []string `toml:"disable"`
}

// Index configures the workspace symbol index.
type Index struct {
	Path string `toml:"path"`
}

// Default returns the manifest used when a project has no psl.toml.
func Default(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m := &Manifest{Dir: abs}
	m.applyDefaults()
	return m, nil
}

// Load parses a psl.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m.applyDefaults()
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"."}
	}
	if m.Core.Dir == "" {
		m.Core.Dir = "core"
	}
	if m.Tables.Dir == "" {
		m.Tables.Dir = "table"
	}
	if m.Index.Path == "" {
		m.Index.Path = filepath.Join(".pslkit", "index.db")
	}
}

// FindAndLoad walks up from startDir to find a psl.toml file, then loads
// and returns the manifest.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoManifest
		}
		dir = parent
	}
}

// LoadOrDefault is FindAndLoad falling back to Default(startDir).
func LoadOrDefault(startDir string) (*Manifest, error) {
	m, err := FindAndLoad(startDir)
	if errors.Is(err, ErrNoManifest) {
		return Default(startDir)
	}
	return m, err
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, m.resolve(d))
	}
	return paths
}

// CoreDir returns the absolute core-library root.
func (m *Manifest) CoreDir() string {
	return m.resolve(m.Core.Dir)
}

// TableDir returns the absolute table-schema root.
func (m *Manifest) TableDir() string {
	return m.resolve(m.Tables.Dir)
}

// IndexPath returns the absolute path of the symbol index database.
func (m *Manifest) IndexPath() string {
	return m.resolve(m.Index.Path)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// FinderPaths returns the resolver search paths for activeFile. The
// directory of the active file is searched before the configured roots.
func (m *Manifest) FinderPaths(activeFile string) finder.Paths {
	roots := []string{filepath.Dir(activeFile)}
	for _, d := range m.SourceDirPaths() {
		if d != roots[0] {
			roots = append(roots, d)
		}
	}
	return finder.Paths{
		ActiveFile:   activeFile,
		ProjectRoots: roots,
		CoreRoot:     m.CoreDir(),
		TableRoot:    m.TableDir(),
	}
}

// ShouldLint reports whether a file passes the include and exclude
// patterns. Patterns match the base name.
func (m *Manifest) ShouldLint(file string) bool {
	base := filepath.Base(file)
	if len(m.Lint.Include) > 0 && !matchAny(m.Lint.Include, base) {
		return false
	}
	return !matchAny(m.Lint.Exclude, base)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
