package ctc

import "sort"

// Hypothesis is one decoded candidate with its accumulated forward
// probability.
type Hypothesis struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// TopHypotheses ranks a merged score map and returns up to n entries,
// best first. Equal scores are ordered lexicographically by path so the
// ranking is stable across runs. n <= 0 returns the full ranking.
func TopHypotheses(scores map[string]float64, n int) []Hypothesis {
	out := make([]Hypothesis, 0, len(scores))
	for path, score := range scores {
		out = append(out, Hypothesis{Path: path, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
