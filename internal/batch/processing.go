package batch

import (
	"sync"

	"github.com/MeKo-Tech/ctcbeam/internal/common"
	"github.com/MeKo-Tech/ctcbeam/internal/config"
	"github.com/MeKo-Tech/ctcbeam/internal/ctc"
)

// decoders bundles the decoder instances shared by all workers. Both are
// immutable, so a single instance serves the whole pool.
type decoders struct {
	greedy *ctc.GreedyDecoder
	beam   *ctc.BeamSearchDecoder
}

// buildDecoders loads the alphabet and constructs the decoders the
// configuration calls for.
func buildDecoders(cfg *Config) (*decoders, error) {
	alphabet, err := ctc.LoadAlphabet(cfg.AlphabetPath)
	if err != nil {
		return nil, err
	}

	d := &decoders{greedy: ctc.NewGreedyDecoder(alphabet)}
	if cfg.Method == config.MethodBeamSearch {
		d.beam, err = ctc.NewBeamSearchDecoder(alphabet, cfg.BeamWidth)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// decodeSingleFile decodes one emissions file. Errors are reported in the
// result so one bad file does not abort the batch.
func decodeSingleFile(path string, cfg *Config, d *decoders) FileResult {
	result := FileResult{File: path, Method: cfg.Method}

	timer := common.NewNamedTimer(path)
	defer func() {
		timer.Stop()
		result.DurationMs = timer.Milliseconds()
	}()

	em, err := ctc.LoadEmissions(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Timesteps = em.Steps()

	switch cfg.Method {
	case config.MethodGreedy:
		text, score, err := d.greedy.Decode(em)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		result.Text = text
		result.Score = score
	case config.MethodBeamSearch:
		text, scores, err := d.beam.Decode(em)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		result.Text = text
		result.Score = scores[text]
		result.BeamWidth = cfg.BeamWidth
		result.Hypotheses = ctc.TopHypotheses(scores, cfg.Top)
	}
	return result
}

// decodeFilesParallel decodes files with a worker pool, keeping input order
// in the output.
func decodeFilesParallel(paths []string, cfg *Config, d *decoders) []FileResult {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]FileResult, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = decodeSingleFile(paths[i], cfg, d)
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
