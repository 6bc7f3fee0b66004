package ctc

import "strings"

// GreedyDecoder collapses emissions by per-timestep argmax. It holds no
// state across calls, so one instance can serve concurrent decodes.
type GreedyDecoder struct {
	alphabet *Alphabet
}

// NewGreedyDecoder creates a greedy decoder over the given alphabet.
func NewGreedyDecoder(alphabet *Alphabet) *GreedyDecoder {
	return &GreedyDecoder{alphabet: alphabet}
}

// Alphabet returns the decoder's symbol inventory.
func (d *GreedyDecoder) Alphabet() *Alphabet { return d.alphabet }

// Decode picks the most probable class at every timestep, multiplies the
// running path probability by that maximum, drops blanks and collapses
// adjacent repeats. Ties go to the lowest class index. A zero-length
// sequence decodes to ("", 1.0).
func (d *GreedyDecoder) Decode(em *Emissions) (string, float64, error) {
	if err := checkShape(em, d.alphabet); err != nil {
		return "", 0, err
	}

	pathProb := 1.0
	raw := make([]string, 0, em.Steps())
	for t := 0; t < em.Steps(); t++ {
		maxIdx := 0
		maxProb := em.At(0, t, 0)
		for c := 1; c < em.Classes(); c++ {
			if p := em.At(c, t, 0); p > maxProb {
				maxProb = p
				maxIdx = c
			}
		}
		pathProb *= maxProb
		if maxIdx != blankClass {
			raw = append(raw, d.alphabet.Symbol(maxIdx-1))
		}
	}

	// Blanks are gone already, so adjacent equal symbols are a single run.
	var sb strings.Builder
	for i, s := range raw {
		if i == 0 || s != raw[i-1] {
			sb.WriteString(s)
		}
	}
	return sb.String(), pathProb, nil
}
