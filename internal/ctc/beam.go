package ctc

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MeKo-Tech/ctcbeam/internal/mempool"
)

// BeamSearchDecoder performs an approximate search over label sequences,
// keeping a bounded set of hypotheses per timestep. Hypotheses that are
// acoustically different but collapse to the same label string are merged by
// summing their forward probabilities. Like the greedy decoder it is
// immutable after construction; every Decode call allocates fresh state.
type BeamSearchDecoder struct {
	alphabet  *Alphabet
	beamWidth int
}

// NewBeamSearchDecoder creates a beam-search decoder. beamWidth is the
// number of hypotheses targeted by pruning and must be at least 1.
func NewBeamSearchDecoder(alphabet *Alphabet, beamWidth int) (*BeamSearchDecoder, error) {
	if beamWidth < 1 {
		return nil, fmt.Errorf("beam width must be >= 1, got %d", beamWidth)
	}
	return &BeamSearchDecoder{alphabet: alphabet, beamWidth: beamWidth}, nil
}

// Alphabet returns the decoder's symbol inventory.
func (d *BeamSearchDecoder) Alphabet() *Alphabet { return d.alphabet }

// BeamWidth returns the configured beam width.
func (d *BeamSearchDecoder) BeamWidth() int { return d.beamWidth }

// beamState carries the hypothesis sets between search phases. Paths are
// partitioned by terminal class: strings whose last emission was blank and
// strings whose last emission was a symbol. The same visible string may
// appear in both partitions with independent scores until the final merge.
// Order slices preserve insertion order so that iteration, and therefore
// tie-breaking, is deterministic.
type beamState struct {
	blankPaths   []string
	symbolPaths  []string
	blankScores  map[string]float64
	symbolScores map[string]float64
}

// pathList is an insertion-ordered string set.
type pathList struct {
	order []string
	seen  map[string]struct{}
}

func newPathList(capacity int) *pathList {
	return &pathList{
		order: make([]string, 0, capacity),
		seen:  make(map[string]struct{}, capacity),
	}
}

func (l *pathList) add(path string) {
	if _, ok := l.seen[path]; ok {
		return
	}
	l.seen[path] = struct{}{}
	l.order = append(l.order, path)
}

func (l *pathList) contains(path string) bool {
	_, ok := l.seen[path]
	return ok
}

// Decode runs the full search: Init, then Prune/ExtendBlank/ExtendSymbol for
// each remaining timestep, then Merge and Select. It returns the best path
// and the merged score map over all surviving hypotheses, for callers that
// want an N-best list or score inspection.
func (d *BeamSearchDecoder) Decode(em *Emissions) (string, map[string]float64, error) {
	if err := checkShape(em, d.alphabet); err != nil {
		return "", nil, err
	}
	if em.Steps() == 0 {
		return "", nil, errors.New("emissions have no timesteps")
	}

	state := d.initializePaths(em)

	for t := 1; t < em.Steps(); t++ {
		pruned := d.prune(state)
		blankPaths, blankScores := d.extendWithBlank(pruned, em, t)
		symbolPaths, symbolScores := d.extendWithSymbol(pruned, em, t)
		state = beamState{
			blankPaths:   blankPaths,
			symbolPaths:  symbolPaths,
			blankScores:  blankScores,
			symbolScores: symbolScores,
		}
	}

	mergedPaths, mergedScores := mergeIdenticalPaths(state)

	// First seen wins on exact ties; mergedPaths is insertion-ordered, so
	// the outcome does not depend on map iteration.
	bestPath := ""
	bestScore := -1.0
	for _, path := range mergedPaths {
		if mergedScores[path] > bestScore {
			bestScore = mergedScores[path]
			bestPath = path
		}
	}
	return bestPath, mergedScores, nil
}

// initializePaths seeds the beam from the t=0 column: the empty string as
// the sole blank-terminated path, and one single-symbol path per alphabet
// entry. The two partitions are disjoint by construction.
func (d *BeamSearchDecoder) initializePaths(em *Emissions) beamState {
	state := beamState{
		blankPaths:   []string{""},
		symbolPaths:  make([]string, 0, d.alphabet.Size()),
		blankScores:  map[string]float64{"": em.At(blankClass, 0, 0)},
		symbolScores: make(map[string]float64, d.alphabet.Size()),
	}
	for i := 0; i < d.alphabet.Size(); i++ {
		path := d.alphabet.Symbol(i)
		state.symbolPaths = append(state.symbolPaths, path)
		state.symbolScores[path] = em.At(i+1, 0, 0)
	}
	return state
}

// prune keeps every path whose score reaches the beam-width cutoff. The
// cutoff is the K-th largest score across both partitions, or the minimum
// score when the beam is not yet full. The comparison is inclusive, so
// paths tied at the cutoff all survive even if that exceeds the beam width;
// pruning therefore never arbitrarily breaks ties between equally probable
// hypotheses.
func (d *BeamSearchDecoder) prune(state beamState) beamState {
	total := len(state.blankPaths) + len(state.symbolPaths)
	scores := mempool.GetFloat64(total)[:0]
	defer mempool.PutFloat64(scores)
	for _, path := range state.blankPaths {
		scores = append(scores, state.blankScores[path])
	}
	for _, path := range state.symbolPaths {
		scores = append(scores, state.symbolScores[path])
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	cutoff := scores[len(scores)-1]
	if len(scores) >= d.beamWidth {
		cutoff = scores[d.beamWidth-1]
	}

	pruned := beamState{
		blankScores:  make(map[string]float64, len(state.blankPaths)),
		symbolScores: make(map[string]float64, len(state.symbolPaths)),
	}
	for _, path := range state.blankPaths {
		if s := state.blankScores[path]; s >= cutoff {
			pruned.blankPaths = append(pruned.blankPaths, path)
			pruned.blankScores[path] = s
		}
	}
	for _, path := range state.symbolPaths {
		if s := state.symbolScores[path]; s >= cutoff {
			pruned.symbolPaths = append(pruned.symbolPaths, path)
			pruned.symbolScores[path] = s
		}
	}
	return pruned
}

// extendWithBlank builds the next blank-terminated partition from scratch.
// Blank-terminated paths carry forward with their score multiplied by the
// blank probability; symbol-terminated paths become blank-terminated
// candidates with the same visible string. When both histories converge on
// one string their contributions are summed.
func (d *BeamSearchDecoder) extendWithBlank(state beamState, em *Emissions, t int) ([]string, map[string]float64) {
	blankProb := em.At(blankClass, t, 0)

	updated := newPathList(len(state.blankPaths) + len(state.symbolPaths))
	scores := make(map[string]float64, len(state.blankPaths)+len(state.symbolPaths))

	for _, path := range state.blankPaths {
		updated.add(path)
		scores[path] = state.blankScores[path] * blankProb
	}
	for _, path := range state.symbolPaths {
		if updated.contains(path) {
			scores[path] += state.symbolScores[path] * blankProb
		} else {
			updated.add(path)
			scores[path] = state.symbolScores[path] * blankProb
		}
	}
	return updated.order, scores
}

// extendWithSymbol builds the next symbol-terminated partition from scratch.
// A blank-terminated path always concatenates: the intervening blank keeps a
// repeated symbol distinct. A symbol-terminated path extended by its own
// terminal symbol stays the same string (the CTC collapsing rule applied
// during search); any other symbol concatenates. All (origin, symbol) pairs
// that land on the same resulting string accumulate probability mass.
func (d *BeamSearchDecoder) extendWithSymbol(state beamState, em *Emissions, t int) ([]string, map[string]float64) {
	size := d.alphabet.Size()
	updated := newPathList((len(state.blankPaths) + len(state.symbolPaths)) * size)
	scores := make(map[string]float64, (len(state.blankPaths)+len(state.symbolPaths))*size)

	for _, path := range state.blankPaths {
		for i := 0; i < size; i++ {
			newPath := path + d.alphabet.Symbol(i)
			updated.add(newPath)
			scores[newPath] = state.blankScores[path] * em.At(i+1, t, 0)
		}
	}
	for _, path := range state.symbolPaths {
		for i := 0; i < size; i++ {
			symbol := d.alphabet.Symbol(i)
			newPath := path
			if !endsWith(path, symbol) {
				newPath = path + symbol
			}
			prob := state.symbolScores[path] * em.At(i+1, t, 0)
			if updated.contains(newPath) {
				scores[newPath] += prob
			} else {
				updated.add(newPath)
				scores[newPath] = prob
			}
		}
	}
	return updated.order, scores
}

// mergeIdenticalPaths folds the two partitions into one score map keyed by
// visible string. Symbol-terminated scores are kept as-is; blank-terminated
// scores are added to a matching string or inserted fresh, so each string's
// final score is the total forward probability over both terminal classes.
func mergeIdenticalPaths(state beamState) ([]string, map[string]float64) {
	merged := newPathList(len(state.symbolPaths) + len(state.blankPaths))
	scores := make(map[string]float64, len(state.symbolPaths)+len(state.blankPaths))

	for _, path := range state.symbolPaths {
		merged.add(path)
		scores[path] = state.symbolScores[path]
	}
	for _, path := range state.blankPaths {
		if merged.contains(path) {
			scores[path] += state.blankScores[path]
		} else {
			merged.add(path)
			scores[path] = state.blankScores[path]
		}
	}
	return merged.order, scores
}

// endsWith reports whether path's terminal symbol is exactly symbol. Paths
// in the symbol partition are non-empty by construction, but guard anyway.
func endsWith(path, symbol string) bool {
	if len(path) < len(symbol) {
		return false
	}
	return path[len(path)-len(symbol):] == symbol
}
