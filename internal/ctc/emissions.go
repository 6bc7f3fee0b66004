package ctc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// blankClass is the emission class reserved for the CTC blank.
const blankClass = 0

// Emissions holds a dense 3-D probability tensor with axes (class, time,
// batch). Class 0 is blank; class i+1 corresponds to alphabet symbol i.
// Values are read as-is: the decoders trust the input and never renormalize,
// so scores live in linear probability space and may underflow over long
// sequences. That matches the reference behavior and is accepted.
type Emissions struct {
	data    []float64
	classes int
	steps   int
	batch   int
}

// NewEmissions wraps flat class-major data as an emissions tensor.
// data is indexed [class*steps*batch + t*batch + b].
func NewEmissions(data []float64, classes, steps, batch int) (*Emissions, error) {
	if classes < 1 {
		return nil, fmt.Errorf("invalid class count: %d", classes)
	}
	if steps < 0 {
		return nil, fmt.Errorf("invalid timestep count: %d", steps)
	}
	if batch < 1 {
		return nil, fmt.Errorf("invalid batch size: %d", batch)
	}
	if len(data) != classes*steps*batch {
		return nil, fmt.Errorf("emissions data length %d does not match shape (%d, %d, %d)",
			len(data), classes, steps, batch)
	}
	return &Emissions{data: data, classes: classes, steps: steps, batch: batch}, nil
}

// EmissionsFromFrames builds a single-batch tensor from time-major frames,
// one frame per timestep with one probability per class. This is the wire
// format used by the CLI and the server.
func EmissionsFromFrames(frames [][]float64) (*Emissions, error) {
	if len(frames) == 0 {
		return &Emissions{data: nil, classes: 1, steps: 0, batch: 1}, nil
	}
	classes := len(frames[0])
	if classes < 1 {
		return nil, errors.New("emission frames must have at least one class")
	}
	data := make([]float64, classes*len(frames))
	for t, frame := range frames {
		if len(frame) != classes {
			return nil, fmt.Errorf("frame %d has %d classes, expected %d", t, len(frame), classes)
		}
		for c, p := range frame {
			data[c*len(frames)+t] = p
		}
	}
	return &Emissions{data: data, classes: classes, steps: len(frames), batch: 1}, nil
}

// LoadEmissions reads a JSON emissions file of the form
// {"frames": [[p0, p1, ...], ...]} and wraps it as a single-batch tensor.
func LoadEmissions(path string) (*Emissions, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: emissions path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read emissions file %s: %w", path, err)
	}

	var doc struct {
		Frames [][]float64 `json:"frames"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse emissions file %s: %w", path, err)
	}
	em, err := EmissionsFromFrames(doc.Frames)
	if err != nil {
		return nil, fmt.Errorf("invalid emissions in %s: %w", path, err)
	}
	return em, nil
}

// Classes returns the class axis length (alphabet size + 1).
func (e *Emissions) Classes() int { return e.classes }

// Steps returns the number of timesteps.
func (e *Emissions) Steps() int { return e.steps }

// Batch returns the batch axis length.
func (e *Emissions) Batch() int { return e.batch }

// At returns the probability for (class, t, batch) without bounds checking
// beyond the slice itself; callers go through checkShape first.
func (e *Emissions) At(class, t, batch int) float64 {
	return e.data[class*e.steps*e.batch+t*e.batch+batch]
}

// checkShape validates the decode contract for an alphabet: batch axis of
// exactly 1 and one emission class per symbol plus blank.
func checkShape(e *Emissions, a *Alphabet) error {
	if e == nil {
		return errors.New("emissions are nil")
	}
	if e.batch != 1 {
		return fmt.Errorf("batch size must be 1 for a decode call, got %d", e.batch)
	}
	if e.classes != a.Size()+1 {
		return fmt.Errorf("emissions have %d classes, expected %d (alphabet size %d + blank)",
			e.classes, a.Size()+1, a.Size())
	}
	return nil
}
