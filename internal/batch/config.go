package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/ctcbeam/internal/ctc"
)

// Config holds all configuration for batch decoding.
type Config struct {
	// Decoder settings
	AlphabetPath string
	Method       string
	BeamWidth    int
	Top          int

	// Output settings
	Format         string
	OutputFile     string
	ScorePrecision int

	// Parallel processing settings
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	Quiet     bool
	ShowStats bool
}

// FileResult is the decode outcome for one emissions file.
type FileResult struct {
	File       string           `json:"file" yaml:"file"`
	Text       string           `json:"text" yaml:"text"`
	Score      float64          `json:"score" yaml:"score"`
	Method     string           `json:"method" yaml:"method"`
	BeamWidth  int              `json:"beam_width,omitempty" yaml:"beam_width,omitempty"`
	Timesteps  int              `json:"timesteps" yaml:"timesteps"`
	Hypotheses []ctc.Hypothesis `json:"hypotheses,omitempty" yaml:"hypotheses,omitempty"`
	DurationMs float64          `json:"duration_ms" yaml:"duration_ms"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result holds the result of a batch decode run.
type Result struct {
	Results     []FileResult
	Duration    time.Duration
	WorkerCount int
}

// Failed reports how many files failed to decode.
func (r *Result) Failed() int {
	var n int
	for _, res := range r.Results {
		if res.Error != "" {
			n++
		}
	}
	return n
}

// FormatResults formats the batch results in the specified format.
func (r *Result) FormatResults(format string, precision int) (string, error) {
	return formatBatchResults(r.Results, format, precision)
}

// SaveResults writes the formatted results to a file, or to w when no
// output file is configured.
func (r *Result) SaveResults(w io.Writer, format, outputFile string, precision int, quiet bool) error {
	output, err := r.FormatResults(format, precision)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(w, output)
	}

	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer, quiet bool) {
	if quiet {
		return
	}

	processed := len(r.Results) - r.Failed()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total files: %d\n", len(r.Results))
	_, _ = fmt.Fprintf(w, "  Decoded: %d\n", processed)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", r.Failed())
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if processed > 0 {
		avg := r.Duration / time.Duration(processed)
		_, _ = fmt.Fprintf(w, "  Avg per file: %v\n", avg.Round(time.Millisecond))
		_, _ = fmt.Fprintf(w, "  Throughput: %.1f files/sec\n",
			float64(processed)/r.Duration.Seconds())
	}
}
