package ctc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmissions(t *testing.T) {
	data := []float64{
		// class 0 over T=2
		0.5, 0.4,
		// class 1 over T=2
		0.3, 0.5,
		// class 2 over T=2
		0.2, 0.1,
	}
	em, err := NewEmissions(data, 3, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, em.Classes())
	assert.Equal(t, 2, em.Steps())
	assert.Equal(t, 1, em.Batch())
	assert.InDelta(t, 0.5, em.At(0, 0, 0), 1e-12)
	assert.InDelta(t, 0.5, em.At(1, 1, 0), 1e-12)
	assert.InDelta(t, 0.1, em.At(2, 1, 0), 1e-12)
}

func TestNewEmissions_Rejects(t *testing.T) {
	_, err := NewEmissions([]float64{1, 2}, 3, 2, 1)
	assert.Error(t, err)
	_, err = NewEmissions(nil, 0, 1, 1)
	assert.Error(t, err)
	_, err = NewEmissions(nil, 1, -1, 1)
	assert.Error(t, err)
	_, err = NewEmissions(nil, 1, 0, 0)
	assert.Error(t, err)
}

func TestEmissionsFromFrames(t *testing.T) {
	em, err := EmissionsFromFrames([][]float64{
		{0.5, 0.3, 0.2},
		{0.4, 0.5, 0.1},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, em.Classes())
	assert.Equal(t, 2, em.Steps())
	assert.Equal(t, 1, em.Batch())
	assert.InDelta(t, 0.3, em.At(1, 0, 0), 1e-12)
	assert.InDelta(t, 0.4, em.At(0, 1, 0), 1e-12)
}

func TestEmissionsFromFrames_Empty(t *testing.T) {
	em, err := EmissionsFromFrames(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, em.Steps())
	assert.Equal(t, 1, em.Batch())
}

func TestEmissionsFromFrames_RaggedFrames(t *testing.T) {
	_, err := EmissionsFromFrames([][]float64{
		{0.5, 0.5},
		{0.5, 0.3, 0.2},
	})
	assert.Error(t, err)
}

func TestCheckShape(t *testing.T) {
	a, err := NewAlphabet([]string{"a", "b"})
	require.NoError(t, err)

	em, err := EmissionsFromFrames([][]float64{{0.5, 0.3, 0.2}})
	require.NoError(t, err)
	assert.NoError(t, checkShape(em, a))

	// class axis mismatch
	bad, err := EmissionsFromFrames([][]float64{{0.5, 0.5}})
	require.NoError(t, err)
	assert.Error(t, checkShape(bad, a))

	// batch axis must be 1
	multi, err := NewEmissions(make([]float64, 3*1*2), 3, 1, 2)
	require.NoError(t, err)
	assert.Error(t, checkShape(multi, a))

	assert.Error(t, checkShape(nil, a))
}
