package benchmark

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/MeKo-Tech/ctcbeam/internal/common"
	"github.com/MeKo-Tech/ctcbeam/internal/ctc"
)

// DecoderCase describes one synthetic input shape to benchmark against.
type DecoderCase struct {
	Name      string
	Timesteps int
}

// DecoderBenchmark compares greedy decoding against beam search at several
// widths over synthetic emission sequences.
type DecoderBenchmark struct {
	alphabet   *ctc.Alphabet
	beamWidths []int
	cases      []DecoderCase
	results    []common.BenchmarkResult
}

// NewDecoderBenchmark creates a decoder benchmark for the given alphabet.
func NewDecoderBenchmark(alphabet *ctc.Alphabet, beamWidths []int) *DecoderBenchmark {
	return &DecoderBenchmark{
		alphabet:   alphabet,
		beamWidths: beamWidths,
		cases: []DecoderCase{
			{Name: "short", Timesteps: 50},
			{Name: "medium", Timesteps: 200},
			{Name: "long", Timesteps: 1000},
		},
	}
}

// AddCase adds an input shape to the benchmark.
func (db *DecoderBenchmark) AddCase(name string, timesteps int) {
	db.cases = append(db.cases, DecoderCase{Name: name, Timesteps: timesteps})
}

// syntheticEmissions builds a normalized pseudo-random emissions tensor. The
// seed is fixed so repeated runs see identical inputs.
func syntheticEmissions(alphabet *ctc.Alphabet, timesteps int, seed int64) (*ctc.Emissions, error) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: deterministic inputs, not cryptographic
	classes := alphabet.Size() + 1

	frames := make([][]float64, timesteps)
	for t := range frames {
		frame := make([]float64, classes)
		var sum float64
		for c := range frame {
			frame[c] = rng.Float64()
			sum += frame[c]
		}
		for c := range frame {
			frame[c] /= sum
		}
		frames[t] = frame
	}
	return ctc.EmissionsFromFrames(frames)
}

// Run executes all case/decoder combinations with the given iteration count.
func (db *DecoderBenchmark) Run(iterations int) ([]common.BenchmarkResult, error) {
	suite := NewSuite()
	greedy := ctc.NewGreedyDecoder(db.alphabet)

	for _, c := range db.cases {
		em, err := syntheticEmissions(db.alphabet, c.Timesteps, int64(c.Timesteps))
		if err != nil {
			return nil, fmt.Errorf("failed to build emissions for case %s: %w", c.Name, err)
		}

		suite.Add(fmt.Sprintf("%s/greedy", c.Name), func() error {
			_, _, err := greedy.Decode(em)
			return err
		})

		for _, width := range db.beamWidths {
			beam, err := ctc.NewBeamSearchDecoder(db.alphabet, width)
			if err != nil {
				return nil, err
			}
			suite.Add(fmt.Sprintf("%s/beam_width%d", c.Name, width), func() error {
				_, _, err := beam.Decode(em)
				return err
			})
		}
	}

	db.results = suite.RunAll(iterations)
	return db.results, nil
}

// PrintResults writes formatted benchmark results to w.
func (db *DecoderBenchmark) PrintResults(w io.Writer) {
	_, _ = fmt.Fprintln(w, "\nDecoder Benchmark Results:")
	_, _ = fmt.Fprintln(w, "==========================")
	for _, result := range db.results {
		_, _ = fmt.Fprintln(w, result.String())
	}
	_, _ = fmt.Fprintln(w)
}
