package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/ctcbeam/internal/testutil"
)

func writeAlphabetFile(t *testing.T, dir string) string {
	t.Helper()
	return testutil.WriteAlphabetFile(t, dir, "a", "b")
}

func writeEmissionsFile(t *testing.T, dir, name string, frames [][]float64) string {
	t.Helper()
	return testutil.WriteEmissionsFile(t, dir, name, frames)
}

func TestDecodeCommand_Flags(t *testing.T) {
	cmd := decodeCmd

	assert.NotNil(t, cmd.Flags().Lookup("method"))
	assert.NotNil(t, cmd.Flags().Lookup("beam-width"))
	assert.NotNil(t, cmd.Flags().Lookup("top"))
	assert.NotNil(t, cmd.Flags().Lookup("workers"))
	assert.NotNil(t, cmd.Flags().Lookup("format"))
	assert.NotNil(t, cmd.Flags().Lookup("output"))
	assert.NotNil(t, cmd.Flags().Lookup("recursive"))
	assert.NotNil(t, cmd.Flags().Lookup("include"))
	assert.NotNil(t, cmd.Flags().Lookup("exclude"))
}

func TestDecodeCommand_NoInputFiles(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"decode"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestDecodeCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	alphabetPath := writeAlphabetFile(t, dir)
	emissionsPath := writeEmissionsFile(t, dir, "em.json", [][]float64{
		{0.1, 0.8, 0.1},
		{0.7, 0.2, 0.1},
	})

	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{
		"decode", emissionsPath, "--alphabet", alphabetPath,
	})
	require.NoError(t, err)
	assert.Contains(t, output, `"a"`)
}

func TestDecodeCommand_GreedyJSONOutput(t *testing.T) {
	dir := t.TempDir()
	alphabetPath := writeAlphabetFile(t, dir)
	emissionsPath := writeEmissionsFile(t, dir, "em.json", [][]float64{
		{0.1, 0.8, 0.1},
		{0.1, 0.8, 0.1},
		{0.1, 0.1, 0.8},
	})
	outPath := filepath.Join(dir, "results.json")

	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{
		"decode", emissionsPath,
		"--alphabet", alphabetPath,
		"--method", "greedy",
		"--format", "json",
		"--output", outPath,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var results []struct {
		Text  string  `json:"text"`
		Score float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "ab", results[0].Text)
	assert.InDelta(t, 0.8*0.8*0.8, results[0].Score, 1e-12)
}

func TestDecodeCommand_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	alphabetPath := writeAlphabetFile(t, dir)
	emissionsPath := writeEmissionsFile(t, dir, "em.json", [][]float64{{0.5, 0.3, 0.2}})

	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{
		"decode", emissionsPath, "--alphabet", alphabetPath, "--format", "xml",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestDecodeCommand_InvalidMethod(t *testing.T) {
	dir := t.TempDir()
	alphabetPath := writeAlphabetFile(t, dir)
	emissionsPath := writeEmissionsFile(t, dir, "em.json", [][]float64{{0.5, 0.3, 0.2}})

	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{
		"decode", emissionsPath, "--alphabet", alphabetPath,
		"--method", "viterbi", "--format", "text",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid decode method")
}
