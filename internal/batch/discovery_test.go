package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	return path
}

func TestDiscoverEmissionFiles_PlainFiles(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.json"))
	b := touch(t, filepath.Join(dir, "b.json"))

	files, err := discoverEmissionFiles([]string{a, b}, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestDiscoverEmissionFiles_Directory(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.json"))
	b := touch(t, filepath.Join(dir, "b.json"))
	nested := touch(t, filepath.Join(dir, "sub", "c.json"))

	files, err := discoverEmissionFiles([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)

	files, err = discoverEmissionFiles([]string{dir}, true, nil, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b, nested}, files)
}

func TestDiscoverEmissionFiles_IncludeExclude(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.json"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "skip.json"))

	files, err := discoverEmissionFiles([]string{dir}, false,
		[]string{"*.json"}, []string{"skip.*"})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)
}

func TestDiscoverEmissionFiles_Missing(t *testing.T) {
	_, err := discoverEmissionFiles([]string{"does-not-exist"}, false, nil, nil)
	assert.Error(t, err)
}

func TestShouldIncludeFile(t *testing.T) {
	assert.True(t, shouldIncludeFile("x/a.json", nil, nil))
	assert.True(t, shouldIncludeFile("x/a.json", []string{"*.json"}, nil))
	assert.False(t, shouldIncludeFile("x/a.txt", []string{"*.json"}, nil))
	assert.False(t, shouldIncludeFile("x/a.json", []string{"*.json"}, []string{"a.*"}))
}
