// Package loader supplies source text to the resolver. It is the only
// place file I/O happens; everything above it treats a failed load as
// "not found".
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// ErrNotFound is returned when a path has no text.
var ErrNotFound = errors.New("not found")

// Loader loads the text of a file.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// Lister is implemented by loaders that can enumerate a directory. It
// returns the base names of the files in dir, sorted.
type Lister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// LoadFunc adapts a function to the Loader interface.
type LoadFunc func(ctx context.Context, path string) (string, error)

func (f LoadFunc) Load(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// ---------------------------------------------------------------------------
// FS: the real file system
// ---------------------------------------------------------------------------

// FS loads files from disk.
type FS struct{}

func (FS) Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return string(data), nil
}

func (FS) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// ---------------------------------------------------------------------------
// Map: in-memory files, keyed by cleaned path
// ---------------------------------------------------------------------------

// Map is an in-memory loader. It must not be mutated while in use.
type Map map[string]string

func (m Map) Load(_ context.Context, path string) (string, error) {
	text, ok := m[filepath.Clean(path)]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return text, nil
}

func (m Map) List(_ context.Context, dir string) ([]string, error) {
	dir = filepath.Clean(dir)
	var names []string
	for path := range m {
		if filepath.Dir(filepath.Clean(path)) == dir {
			names = append(names, filepath.Base(path))
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
	}
	slices.Sort(names)
	return names, nil
}

// List enumerates dir through l if it implements Lister.
func List(ctx context.Context, l Loader, dir string) ([]string, error) {
	lister, ok := l.(Lister)
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
	}
	return lister.List(ctx, dir)
}
