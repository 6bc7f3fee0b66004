package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteAlphabetFile writes an alphabet fixture, one symbol per line, and
// returns its path.
func WriteAlphabetFile(t *testing.T, dir string, symbols ...string) string {
	t.Helper()

	path := filepath.Join(dir, "alphabet.txt")
	content := strings.Join(symbols, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteEmissionsFile writes a JSON emissions fixture and returns its path.
// Frames are time-major with one probability per class.
func WriteEmissionsFile(t *testing.T, dir, name string, frames [][]float64) string {
	t.Helper()

	doc := struct {
		Frames [][]float64 `json:"frames"`
	}{Frames: frames}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// OneHotFrames builds frames that put all probability mass on one class per
// timestep. Useful for fixtures with a known decode result.
func OneHotFrames(classes int, sequence ...int) [][]float64 {
	frames := make([][]float64, len(sequence))
	for t, class := range sequence {
		frame := make([]float64, classes)
		frame[class] = 1.0
		frames[t] = frame
	}
	return frames
}
