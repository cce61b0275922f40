package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("pslkit.loader")

// Cache memoizes successful loads of a base loader. Entries are dropped by
// Invalidate or, once Watch is running, when the file changes on disk.
type Cache struct {
	base Loader

	mu      sync.Mutex
	entries map[string]string
	// gens counts invalidations per path. A load only stores its text when
	// no invalidation happened while it was reading.
	gens    map[string]uint64
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCache creates a cache over base.
func NewCache(base Loader) *Cache {
	return &Cache{
		base:    base,
		entries: make(map[string]string),
		gens:    make(map[string]uint64),
	}
}

func (c *Cache) Load(ctx context.Context, path string) (string, error) {
	key := filepath.Clean(path)

	c.mu.Lock()
	text, ok := c.entries[key]
	gen := c.gens[key]
	c.mu.Unlock()
	if ok {
		return text, nil
	}

	text, err := c.base.Load(ctx, path)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	if c.gens[key] == gen {
		c.entries[key] = text
	}
	c.mu.Unlock()
	return text, nil
}

func (c *Cache) List(ctx context.Context, dir string) ([]string, error) {
	return List(ctx, c.base, dir)
}

// Invalidate drops the cached text of path.
func (c *Cache) Invalidate(path string) {
	key := filepath.Clean(path)
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Watch invalidates entries when files in dirs change. Directories that
// do not exist are skipped.
func (c *Cache) Watch(dirs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return fmt.Errorf("cache is already watching")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			log.Debugf("not watching %s: %v", dir, err)
		}
	}
	c.watcher = w
	c.done = make(chan struct{})
	go c.watch(w, c.done)
	return nil
}

func (c *Cache) watch(w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Create) {
				log.Debugf("invalidating %s (%s)", event.Name, event.Op)
				c.Invalidate(event.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warningf("watch error: %v", err)
		}
	}
}

// Close stops watching.
func (c *Cache) Close() error {
	c.mu.Lock()
	w, done := c.watcher, c.done
	c.watcher, c.done = nil, nil
	c.mu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	return err
}
