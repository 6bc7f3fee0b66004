package ctc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBeamDecoder(t *testing.T, a *Alphabet, width int) *BeamSearchDecoder {
	t.Helper()
	d, err := NewBeamSearchDecoder(a, width)
	require.NoError(t, err)
	return d
}

func TestNewBeamSearchDecoder_RejectsWidth(t *testing.T) {
	a := mustAlphabet(t, "a")
	for _, width := range []int{0, -1, -10} {
		_, err := NewBeamSearchDecoder(a, width)
		assert.Error(t, err, "width %d", width)
	}
	d, err := NewBeamSearchDecoder(a, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, d.BeamWidth())
}

func TestBeamDecode_NoTimesteps(t *testing.T) {
	a := mustAlphabet(t, "a")
	em, err := NewEmissions(nil, 2, 0, 1)
	require.NoError(t, err)
	_, _, err = mustBeamDecoder(t, a, 2).Decode(em)
	assert.Error(t, err)
}

// Hand-computed two-timestep search over {a, b} with no pruning.
//
//	t=0: blank 0.5, a 0.3, b 0.2
//	t=1: blank 0.4, a 0.5, b 0.1
func TestBeamDecode_MergedScores(t *testing.T) {
	a := mustAlphabet(t, "a", "b")
	em, err := EmissionsFromFrames([][]float64{
		{0.5, 0.3, 0.2},
		{0.4, 0.5, 0.1},
	})
	require.NoError(t, err)

	best, scores, err := mustBeamDecoder(t, a, 10).Decode(em)
	require.NoError(t, err)

	// "a" collects three histories: blank-then-a (0.5*0.5), a-then-a
	// collapsed (0.3*0.5), and a-then-blank (0.3*0.4).
	assert.Equal(t, "a", best)
	require.Len(t, scores, 5)
	assert.InDelta(t, 0.52, scores["a"], 1e-12)
	assert.InDelta(t, 0.20, scores[""], 1e-12)
	assert.InDelta(t, 0.15, scores["b"], 1e-12)
	assert.InDelta(t, 0.10, scores["ba"], 1e-12)
	assert.InDelta(t, 0.03, scores["ab"], 1e-12)

	// Without pruning and with proper per-timestep distributions the merged
	// scores partition the full probability mass.
	var sum float64
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestBeamDecode_MergeSumsBlankAndSymbolHistories(t *testing.T) {
	// One timestep: the symbol-terminated "a" and the blank-terminated ""
	// are the only hypotheses; the merged map must keep both keys intact.
	a := mustAlphabet(t, "a")
	em, err := EmissionsFromFrames([][]float64{{0.4, 0.6}})
	require.NoError(t, err)

	best, scores, err := mustBeamDecoder(t, a, 5).Decode(em)
	require.NoError(t, err)
	assert.Equal(t, "a", best)
	assert.InDelta(t, 0.6, scores["a"], 1e-12)
	assert.InDelta(t, 0.4, scores[""], 1e-12)
}

func TestExtendWithSymbol_SelfLoopCollapses(t *testing.T) {
	a := mustAlphabet(t, "a", "b")
	d := mustBeamDecoder(t, a, 5)
	em, err := EmissionsFromFrames([][]float64{
		{0.2, 0.5, 0.3},
		{0.1, 0.8, 0.1},
	})
	require.NoError(t, err)

	state := beamState{
		blankPaths:   []string{"a"},
		symbolPaths:  []string{"a"},
		blankScores:  map[string]float64{"a": 0.25},
		symbolScores: map[string]float64{"a": 0.5},
	}
	paths, scores := d.extendWithSymbol(state, em, 1)

	// Symbol-terminated "a" extended by "a" stays "a" (repeat without an
	// intervening blank); blank-terminated "a" extended by "a" becomes "aa".
	assert.Contains(t, paths, "a")
	assert.Contains(t, paths, "aa")
	assert.InDelta(t, 0.5*0.8, scores["a"], 1e-12)
	assert.InDelta(t, 0.25*0.8, scores["aa"], 1e-12)
	assert.InDelta(t, 0.25*0.1+0.5*0.1, scores["ab"], 1e-12)
}

func TestExtendWithBlank_SumsConvergingHistories(t *testing.T) {
	a := mustAlphabet(t, "a")
	d := mustBeamDecoder(t, a, 5)
	em, err := EmissionsFromFrames([][]float64{
		{0.5, 0.5},
		{0.4, 0.6},
	})
	require.NoError(t, err)

	state := beamState{
		blankPaths:   []string{"a"},
		symbolPaths:  []string{"a"},
		blankScores:  map[string]float64{"a": 0.3},
		symbolScores: map[string]float64{"a": 0.2},
	}
	paths, scores := d.extendWithBlank(state, em, 1)

	require.Equal(t, []string{"a"}, paths)
	assert.InDelta(t, (0.3+0.2)*0.4, scores["a"], 1e-12)
}

func TestPrune_TieInclusiveCutoff(t *testing.T) {
	a := mustAlphabet(t, "a", "b")
	d := mustBeamDecoder(t, a, 2)

	state := beamState{
		blankPaths:   []string{""},
		symbolPaths:  []string{"a", "b", "ab"},
		blankScores:  map[string]float64{"": 0.9},
		symbolScores: map[string]float64{"a": 0.5, "b": 0.5, "ab": 0.1},
	}
	pruned := d.prune(state)

	// Cutoff is the 2nd largest score (0.5); both paths tied at the cutoff
	// survive, so three hypotheses remain despite beam width 2.
	assert.Equal(t, []string{""}, pruned.blankPaths)
	assert.Equal(t, []string{"a", "b"}, pruned.symbolPaths)
	assert.NotContains(t, pruned.symbolScores, "ab")
}

func TestPrune_BeamNotFull(t *testing.T) {
	a := mustAlphabet(t, "a")
	d := mustBeamDecoder(t, a, 10)

	state := beamState{
		blankPaths:   []string{""},
		symbolPaths:  []string{"a"},
		blankScores:  map[string]float64{"": 0.7},
		symbolScores: map[string]float64{"a": 0.3},
	}
	pruned := d.prune(state)

	// Fewer paths than the beam width: nothing is dropped.
	assert.Equal(t, []string{""}, pruned.blankPaths)
	assert.Equal(t, []string{"a"}, pruned.symbolPaths)
}

func TestBeamDecode_WidthOneTracksGreedy(t *testing.T) {
	// Every timestep has a strictly dominant class, so the single surviving
	// hypothesis follows the greedy path.
	a := mustAlphabet(t, "a", "b")
	frames := oneHotFrames(3, []int{1, 0, 2, 2, 0, 1})
	for _, f := range frames {
		for c := range f {
			// Strictly dominant but not degenerate.
			f[c] = f[c]*0.8 + 0.05
		}
	}
	em, err := EmissionsFromFrames(frames)
	require.NoError(t, err)

	greedyText, _, err := NewGreedyDecoder(a).Decode(em)
	require.NoError(t, err)
	beamText, _, err := mustBeamDecoder(t, a, 1).Decode(em)
	require.NoError(t, err)
	assert.Equal(t, greedyText, beamText)
	assert.Equal(t, "aba", beamText)
}

func TestBeamDecode_BlankOnlyInput(t *testing.T) {
	a := mustAlphabet(t, "a")
	em, err := EmissionsFromFrames([][]float64{
		{0.9, 0.1},
		{0.9, 0.1},
		{0.9, 0.1},
	})
	require.NoError(t, err)

	best, scores, err := mustBeamDecoder(t, a, 3).Decode(em)
	require.NoError(t, err)
	assert.Equal(t, "", best)
	assert.Greater(t, scores[""], scores["a"])
}

func TestBeamDecode_ScoreConservationBound(t *testing.T) {
	// With pruning, the merged mass can only lose hypotheses relative to
	// the full distribution, so it must stay <= 1 for distribution input.
	a := mustAlphabet(t, "a", "b", "c")
	frames := make([][]float64, 12)
	for t2 := range frames {
		f := []float64{0.1, 0.2, 0.3, 0.4}
		f[t2%4] += 0.0 // keep as proper distribution
		frames[t2] = f
	}
	em, err := EmissionsFromFrames(frames)
	require.NoError(t, err)

	_, scores, err := mustBeamDecoder(t, a, 2).Decode(em)
	require.NoError(t, err)
	var sum float64
	for _, s := range scores {
		sum += s
	}
	assert.LessOrEqual(t, sum, 1.0+1e-9)
	assert.Positive(t, sum)
}

func TestBeamDecode_AlphabetPermutationInvariance(t *testing.T) {
	original := mustAlphabet(t, "a", "b")
	permuted := mustAlphabet(t, "b", "a")

	frames := [][]float64{
		{0.5, 0.3, 0.2},
		{0.2, 0.3, 0.5},
		{0.4, 0.4, 0.2},
	}
	swapped := make([][]float64, len(frames))
	for i, f := range frames {
		swapped[i] = []float64{f[0], f[2], f[1]}
	}

	em1, err := EmissionsFromFrames(frames)
	require.NoError(t, err)
	em2, err := EmissionsFromFrames(swapped)
	require.NoError(t, err)

	best1, scores1, err := mustBeamDecoder(t, original, 4).Decode(em1)
	require.NoError(t, err)
	best2, scores2, err := mustBeamDecoder(t, permuted, 4).Decode(em2)
	require.NoError(t, err)

	assert.Equal(t, best1, best2)
	require.Equal(t, len(scores1), len(scores2))
	for path, score := range scores1 {
		assert.InDelta(t, score, scores2[path], 1e-12, "path %q", path)
	}
}

func TestBeamDecode_Deterministic(t *testing.T) {
	a := mustAlphabet(t, "a", "b", "c")
	frames := make([][]float64, 15)
	for t2 := range frames {
		frames[t2] = []float64{0.25, 0.25, 0.25, 0.25}
		frames[t2][t2%4] += 0.0
	}
	em, err := EmissionsFromFrames(frames)
	require.NoError(t, err)

	d := mustBeamDecoder(t, a, 3)
	best1, scores1, err := d.Decode(em)
	require.NoError(t, err)
	best2, scores2, err := d.Decode(em)
	require.NoError(t, err)
	assert.Equal(t, best1, best2)
	assert.Equal(t, scores1, scores2)
}

func TestTopHypotheses(t *testing.T) {
	scores := map[string]float64{
		"ab": 0.1,
		"a":  0.5,
		"b":  0.3,
		"ba": 0.1,
	}
	top := TopHypotheses(scores, 3)
	require.Len(t, top, 3)
	assert.Equal(t, Hypothesis{Path: "a", Score: 0.5}, top[0])
	assert.Equal(t, Hypothesis{Path: "b", Score: 0.3}, top[1])
	// Lexicographic tie-break between "ab" and "ba".
	assert.Equal(t, Hypothesis{Path: "ab", Score: 0.1}, top[2])

	all := TopHypotheses(scores, 0)
	assert.Len(t, all, 4)
}
