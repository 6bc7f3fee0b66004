package ctc

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Alphabet is the ordered symbol inventory for a decoder. Symbol i maps to
// emission class i+1; class 0 is always blank and is never part of the
// alphabet. Alphabets are immutable after construction.
type Alphabet struct {
	symbols []string
	index   map[string]int
}

// NewAlphabet builds an alphabet from an ordered list of symbols.
// Empty lists, empty symbols and duplicates are rejected here so that
// decoders never have to deal with them mid-decode.
func NewAlphabet(symbols []string) (*Alphabet, error) {
	if len(symbols) == 0 {
		return nil, errors.New("alphabet cannot be empty")
	}
	index := make(map[string]int, len(symbols))
	owned := make([]string, len(symbols))
	for i, s := range symbols {
		if s == "" {
			return nil, fmt.Errorf("alphabet symbol %d is empty", i)
		}
		if prev, ok := index[s]; ok {
			return nil, fmt.Errorf("duplicate alphabet symbol %q at indices %d and %d", s, prev, i)
		}
		index[s] = i
		owned[i] = s
	}
	return &Alphabet{symbols: owned, index: index}, nil
}

// LoadAlphabet loads an alphabet file where each non-empty line is a symbol.
// Leading/trailing whitespace is trimmed. UTF-8 BOM is removed if present.
func LoadAlphabet(path string) (*Alphabet, error) {
	if path == "" {
		return nil, errors.New("alphabet path cannot be empty")
	}
	f, err := os.Open(path) //nolint:gosec // G304: Opening user-provided alphabet file is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open alphabet: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing alphabet file: %v\n", err)
		}
	}()

	scanner := bufio.NewScanner(f)
	symbols := make([]string, 0, 64)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if line == "" {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading alphabet: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("alphabet file is empty: %s", path)
	}

	return NewAlphabet(symbols)
}

// Size returns the number of symbols, excluding blank.
func (a *Alphabet) Size() int { return len(a.symbols) }

// Symbols returns a copy of the ordered symbol list.
func (a *Alphabet) Symbols() []string {
	out := make([]string, len(a.symbols))
	copy(out, a.symbols)
	return out
}

// Symbol returns the symbol at index i, or empty string if out of range.
func (a *Alphabet) Symbol(i int) string {
	if a == nil || i < 0 || i >= len(a.symbols) {
		return ""
	}
	return a.symbols[i]
}

// Index returns the alphabet index of a symbol, or -1 if not present.
func (a *Alphabet) Index(symbol string) int {
	if a == nil {
		return -1
	}
	if i, ok := a.index[symbol]; ok {
		return i
	}
	return -1
}
