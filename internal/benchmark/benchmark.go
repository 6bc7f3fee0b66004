// Package benchmark provides timing and memory measurement for decoder runs.
package benchmark

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/ctcbeam/internal/common"
)

// Benchmark represents a benchmark function.
type Benchmark struct {
	Name string
	Func func() error
}

// Suite manages multiple benchmarks.
type Suite struct {
	benchmarks []Benchmark
	results    []common.BenchmarkResult
	mu         sync.Mutex
}

// NewSuite creates a new benchmark suite.
func NewSuite() *Suite {
	return &Suite{
		benchmarks: make([]Benchmark, 0),
		results:    make([]common.BenchmarkResult, 0),
	}
}

// Add adds a benchmark to the suite.
func (s *Suite) Add(name string, fn func() error) {
	s.benchmarks = append(s.benchmarks, Benchmark{
		Name: name,
		Func: fn,
	})
}

// Run runs a single benchmark with the specified number of iterations.
func (s *Suite) Run(name string, iterations int) common.BenchmarkResult {
	for _, b := range s.benchmarks {
		if b.Name == name {
			return runBenchmark(b, iterations)
		}
	}
	return common.BenchmarkResult{
		Name:  name,
		Error: fmt.Errorf("benchmark '%s' not found", name),
	}
}

// RunAll runs all benchmarks in the suite.
func (s *Suite) RunAll(iterations int) []common.BenchmarkResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = make([]common.BenchmarkResult, 0, len(s.benchmarks))

	for _, b := range s.benchmarks {
		s.results = append(s.results, runBenchmark(b, iterations))
	}

	return s.results
}

// runBenchmark executes a single benchmark.
func runBenchmark(b Benchmark, iterations int) common.BenchmarkResult {
	// Force garbage collection before measuring
	runtime.GC()
	memBefore := common.GetMemoryStats()

	timer := common.NewNamedTimer(b.Name)
	var err error

	for range iterations {
		if e := b.Func(); e != nil {
			err = e
			break
		}
	}

	duration := timer.Stop()
	memAfter := common.GetMemoryStats()

	return common.BenchmarkResult{
		Name:         b.Name,
		Duration:     duration,
		MemoryBefore: memBefore,
		MemoryAfter:  memAfter,
		Iterations:   iterations,
		Error:        err,
	}
}

// Results returns the last run results.
func (s *Suite) Results() []common.BenchmarkResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}
