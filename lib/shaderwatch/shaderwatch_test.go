package shaderwatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanuz/graphics/lib/rendering/shaders"
)

func TestOfferKeepsNewest(t *testing.T) {
	w := New(nil)

	w.Offer(shaders.Sources{Vertex: "a"})
	w.Offer(shaders.Sources{Vertex: "b"})

	select {
	case src := <-w.Updates:
		assert.Equal(t, "b", src.Vertex)
	default:
		t.Fatal("no update queued")
	}
	assert.Empty(t, w.Updates)
}

func TestReloadErrorOffersNothing(t *testing.T) {
	w := New(func() (shaders.Sources, error) {
		return shaders.Sources{}, errors.New("gone")
	})
	w.reload()
	assert.Empty(t, w.Updates)
}

func TestNewDropsEmptyPaths(t *testing.T) {
	w := New(nil, "", "/a.frag", "")
	assert.Equal(t, []string{"/a.frag"}, w.paths)
}

func TestWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.frag")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	w := New(func() (shaders.Sources, error) {
		b, err := os.ReadFile(path)
		return shaders.Sources{Fragment: string(b)}, err
	}, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Skipf("inotify unavailable: %s", err)
	}

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))

	select {
	case src := <-w.Updates:
		assert.Equal(t, "two", src.Fragment)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatchFileReplacedByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.frag")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	w := New(func() (shaders.Sources, error) {
		b, err := os.ReadFile(path)
		return shaders.Sources{Fragment: string(b)}, err
	}, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Skipf("inotify unavailable: %s", err)
	}

	next := func(what string) string {
		t.Helper()
		select {
		case src := <-w.Updates:
			return src.Fragment
		case <-time.After(5 * time.Second):
			t.Fatalf("no reload after %s", what)
			return ""
		}
	}

	tmp := filepath.Join(dir, ".tri.frag.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("two"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	assert.Equal(t, "two", next("rename"))

	// the watch must survive the old file being replaced
	require.NoError(t, os.WriteFile(path, []byte("three"), 0o644))
	assert.Equal(t, "three", next("write after rename"))
}

func TestUnrelatedFileIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.frag")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	w := New(func() (shaders.Sources, error) {
		return shaders.Sources{Fragment: "reloaded"}, nil
	}, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Skipf("inotify unavailable: %s", err)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-w.Updates:
		t.Fatal("reloaded for a file that is not a shader")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestFilesGroupsByDirectory(t *testing.T) {
	w := New(nil, "/s/a.vert", "/s/a.frag", "/t/b.frag")
	assert.Equal(t, map[string]map[string]bool{
		"/s": {"a.vert": true, "a.frag": true},
		"/t": {"b.frag": true},
	}, w.files())
}
