package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.hcl"))
	touch(t, filepath.Join(dir, "nested", "b.yaml"))
	touch(t, filepath.Join(dir, "nested", "c.yml"))
	touch(t, filepath.Join(dir, "notes.txt"))

	files, err := FindFilesByExtension(dir, ".yaml", ".yml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "nested", "b.yaml"),
		filepath.Join(dir, "nested", "c.yml"),
	}, files)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(dir) })
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.hcl")
	b := filepath.Join(dir, "sub", "b.hcl")
	odd := filepath.Join(dir, "graph.txt")
	touch(t, a)
	touch(t, b)
	touch(t, odd)

	files, err := CollectFiles([]string{odd, dir, a}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{odd, a, b}, files, "explicit files are kept, duplicates dropped")

	_, err = CollectFiles([]string{filepath.Join(dir, "missing")}, ".hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error accessing path")
}
