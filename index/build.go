package index

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/pslkit/loader"
	"github.com/chazu/pslkit/syntax"
)

// Build parses files concurrently and stores each one. Files the loader
// cannot find are skipped. It returns the number of files indexed.
func Build(ctx context.Context, store *Store, ld loader.Loader, files []string) (int, error) {
	var indexed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, file := range files {
		g.Go(func() error {
			text, err := ld.Load(ctx, file)
			if errors.Is(err, loader.ErrNotFound) {
				log.Warningf("skipping %s: not found", file)
				return nil
			}
			if err != nil {
				return fmt.Errorf("loading %s: %w", file, err)
			}
			if err := store.Put(ctx, file, syntax.ParseDocument(text)); err != nil {
				return err
			}
			indexed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(indexed.Load()), err
	}

	log.Infof("indexed %d of %d files", indexed.Load(), len(files))
	return int(indexed.Load()), nil
}
