package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLoadAndList(t *testing.T) {
	ctx := context.Background()
	m := Map{
		"/proj/table/acn/ACN.TBL":     "{}",
		"/proj/table/acn/ACN-CID.COL": "{}",
		"/proj/table/acn/ACN-BAL.COL": "{}",
		"/proj/psl/Util.psl":          "util",
	}

	text, err := m.Load(ctx, "/proj/psl/../psl/Util.psl")
	require.NoError(t, err)
	assert.Equal(t, "util", text)

	_, err = m.Load(ctx, "/proj/psl/Missing.psl")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := List(ctx, m, "/proj/table/acn")
	require.NoError(t, err)
	assert.Equal(t, []string{"ACN-BAL.COL", "ACN-CID.COL", "ACN.TBL"}, names)
}

func TestListWithoutLister(t *testing.T) {
	l := LoadFunc(func(context.Context, string) (string, error) { return "", nil })
	_, err := List(context.Background(), l, "/any")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFS(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "A.psl")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	text, err := FS{}.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "text", text)

	_, err = FS{}.Load(ctx, filepath.Join(dir, "B.psl"))
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := FS{}.List(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.psl"}, names)
}

func TestOverlayShadowsBase(t *testing.T) {
	ctx := context.Background()
	o := NewOverlay(Map{"/a.psl": "disk"})

	text, err := o.Load(ctx, "/a.psl")
	require.NoError(t, err)
	assert.Equal(t, "disk", text)

	o.Set("/a.psl", "buffer")
	text, err = o.Load(ctx, "/a.psl")
	require.NoError(t, err)
	assert.Equal(t, "buffer", text)
	assert.Equal(t, []string{"/a.psl"}, o.Paths())

	o.Delete("/a.psl")
	text, err = o.Load(ctx, "/a.psl")
	require.NoError(t, err)
	assert.Equal(t, "disk", text)
}

type countingLoader struct {
	Map
	loads int
}

func (c *countingLoader) Load(ctx context.Context, path string) (string, error) {
	c.loads++
	return c.Map.Load(ctx, path)
}

func TestCacheMemoizes(t *testing.T) {
	ctx := context.Background()
	base := &countingLoader{Map: Map{"/a.psl": "a"}}
	c := NewCache(base)

	for range 3 {
		text, err := c.Load(ctx, "/a.psl")
		require.NoError(t, err)
		assert.Equal(t, "a", text)
	}
	assert.Equal(t, 1, base.loads)

	_, err := c.Load(ctx, "/missing.psl")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, c.Len(), "failures are not cached")

	c.Invalidate("/a.psl")
	_, err = c.Load(ctx, "/a.psl")
	require.NoError(t, err)
	assert.Equal(t, 3, base.loads)
}

func TestCacheDropsLoadRacingInvalidate(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	text := "old"
	base := LoadFunc(func(context.Context, string) (string, error) {
		if text == "old" {
			close(started)
			<-release
		}
		return text, nil
	})
	c := NewCache(base)

	done := make(chan string)
	go func() {
		got, _ := c.Load(ctx, "/a.psl")
		done <- got
	}()

	<-started
	c.Invalidate("/a.psl")
	close(release)
	assert.Equal(t, "old", <-done)
	assert.Equal(t, 0, c.Len(), "text read before the invalidation is not cached")

	text = "new"
	got, err := c.Load(ctx, "/a.psl")
	require.NoError(t, err)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheWatchInvalidates(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "A.psl")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	c := NewCache(FS{})
	require.NoError(t, c.Watch(dir))
	defer c.Close()

	text, err := c.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "old", text)

	require.NoError(t, os.WriteFile(path, []byte("new"), 0o644))
	assert.Eventually(t, func() bool {
		text, err := c.Load(ctx, path)
		return err == nil && text == "new"
	}, 5*time.Second, 20*time.Millisecond)
}
