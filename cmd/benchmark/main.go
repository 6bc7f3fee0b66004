// Command benchmark compares greedy and beam-search decoding throughput
// over synthetic emission sequences.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/ctcbeam/internal/benchmark"
	"github.com/MeKo-Tech/ctcbeam/internal/ctc"
)

func main() {
	var (
		alphabetPath = flag.String("alphabet", "", "Alphabet file, one symbol per line (default: a-z)")
		iterations   = flag.Int("iterations", 10, "Number of iterations per benchmark")
		widthsCSV    = flag.String("widths", "1,5,10,25", "Comma-separated beam widths to benchmark")
		outputFile   = flag.String("output", "", "Output file for results (optional)")
	)
	flag.Parse()

	fmt.Println("ctcbeam Greedy vs Beam Search Benchmark")
	fmt.Println("=======================================")

	alphabet, err := loadAlphabet(*alphabetPath)
	if err != nil {
		log.Fatalf("Failed to load alphabet: %v", err)
	}

	widths, err := parseWidths(*widthsCSV)
	if err != nil {
		log.Fatalf("Invalid beam widths: %v", err)
	}

	fmt.Printf("Running benchmarks with %d iterations per test...\n", *iterations)

	db := benchmark.NewDecoderBenchmark(alphabet, widths)
	results, err := db.Run(*iterations)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	db.PrintResults(os.Stdout)

	if *outputFile != "" {
		f, err := os.Create(*outputFile) //nolint:gosec // G304: output path comes from the user
		if err != nil {
			log.Printf("Failed to save results to file: %v", err)
			return
		}
		defer func() { _ = f.Close() }()

		for _, result := range results {
			_, _ = fmt.Fprintln(f, result.String())
		}
		fmt.Printf("Results saved to: %s\n", *outputFile)
	}
}

// loadAlphabet reads the alphabet file, or falls back to lowercase a-z.
func loadAlphabet(path string) (*ctc.Alphabet, error) {
	if path != "" {
		return ctc.LoadAlphabet(path)
	}

	symbols := make([]string, 26)
	for i := range symbols {
		symbols[i] = string(rune('a' + i))
	}
	return ctc.NewAlphabet(symbols)
}

func parseWidths(csv string) ([]int, error) {
	parts := strings.Split(csv, ",")
	widths := make([]int, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		widths = append(widths, w)
	}
	return widths, nil
}
