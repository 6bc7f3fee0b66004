// Package batch provides batch decoding of emissions files.
package batch

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/ctcbeam/internal/common"
)

// ProcessBatch decodes a batch of emissions files with the given configuration.
func ProcessBatch(paths []string, cfg *Config) (*Result, error) {
	// Discover emissions files
	files, err := discoverEmissionFiles(paths, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover emissions files: %w", err)
	}

	if len(files) == 0 {
		return nil, errors.New("no emissions files found")
	}

	// Build decoders once; they are shared by all workers
	d, err := buildDecoders(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build decoders: %w", err)
	}

	// Decode files in parallel
	timer := common.NewTimer()
	results := decodeFilesParallel(files, cfg, d)
	duration := timer.Stop()

	return &Result{
		Results:     results,
		Duration:    duration,
		WorkerCount: cfg.Workers,
	}, nil
}
