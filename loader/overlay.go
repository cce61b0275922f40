package loader

import (
	"context"
	"path/filepath"
	"sync"
)

// Overlay serves editor buffers in front of a base loader. Open documents
// shadow the files on disk until they are closed.
type Overlay struct {
	base Loader

	mu   sync.RWMutex
	docs map[string]string
}

// NewOverlay creates an overlay over base.
func NewOverlay(base Loader) *Overlay {
	return &Overlay{
		base: base,
		docs: make(map[string]string),
	}
}

// Set stores the current text of an open document.
func (o *Overlay) Set(path, text string) {
	o.mu.Lock()
	o.docs[filepath.Clean(path)] = text
	o.mu.Unlock()
}

// Delete forgets an open document.
func (o *Overlay) Delete(path string) {
	o.mu.Lock()
	delete(o.docs, filepath.Clean(path))
	o.mu.Unlock()
}

// Get returns the buffer for path, if open.
func (o *Overlay) Get(path string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	text, ok := o.docs[filepath.Clean(path)]
	return text, ok
}

// Paths returns the paths of all open documents.
func (o *Overlay) Paths() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	paths := make([]string, 0, len(o.docs))
	for p := range o.docs {
		paths = append(paths, p)
	}
	return paths
}

func (o *Overlay) Load(ctx context.Context, path string) (string, error) {
	if text, ok := o.Get(path); ok {
		return text, nil
	}
	return o.base.Load(ctx, path)
}

func (o *Overlay) List(ctx context.Context, dir string) ([]string, error) {
	return List(ctx, o.base, dir)
}
