package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader() *Loader {
	// Isolated viper instance so tests do not leak flag bindings.
	return &Loader{v: viper.New()}
}

func TestLoaderDefaults(t *testing.T) {
	l := newTestLoader()
	l.setDefaults()

	assert.Equal(t, "info", l.GetString("log_level"))
	assert.Equal(t, MethodBeamSearch, l.GetString("decoder.method"))
	assert.Equal(t, 10, l.v.GetInt("decoder.beam_width"))
	assert.Equal(t, 8080, l.v.GetInt("server.port"))
}

func TestLoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctcbeam.yaml")
	content := `
log_level: debug
decoder:
  method: greedy
  beam_width: 3
  alphabet_path: /tmp/alphabet.txt
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, MethodGreedy, cfg.Decoder.Method)
	assert.Equal(t, 3, cfg.Decoder.BeamWidth)
	assert.Equal(t, "/tmp/alphabet.txt", cfg.Decoder.AlphabetPath)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, 4, cfg.Decoder.Workers)
}

func TestLoadWithFile_Missing(t *testing.T) {
	_, err := newTestLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithFile_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctcbeam.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decoder:\n  beam_width: 0\n"), 0o600))

	_, err := newTestLoader().LoadWithFile(path)
	assert.Error(t, err)
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	assert.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, "/etc/ctcbeam")
}
