package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// row builds a probability row of the given width with p at idx and the
// remainder spread over the other classes.
func row(classes, idx int, p float32) []float32 {
	r := make([]float32, classes)
	rest := (1 - p) / float32(classes-1)
	for i := range r {
		r[i] = rest
	}
	r[idx] = p
	return r
}

func TestGreedyDecodeCollapsesRepeatsAndBlanks(t *testing.T) {
	const classes = 4
	// Sequence: a a <blank> a b → "a a b" after collapse.
	var logits []float32
	for _, idx := range []int{1, 1, 0, 1, 2} {
		logits = append(logits, row(classes, idx, 0.9)...)
	}

	indices, probs := greedyDecode(logits, 5, classes)
	assert.Equal(t, []int{1, 1, 2}, indices)
	assert.Len(t, probs, 3)
	for _, p := range probs {
		assert.InDelta(t, 0.9, p, 1e-6)
	}
}

func TestGreedyDecodeAllBlanks(t *testing.T) {
	const classes = 3
	var logits []float32
	for i := 0; i < 4; i++ {
		logits = append(logits, row(classes, 0, 0.95)...)
	}
	indices, probs := greedyDecode(logits, 4, classes)
	assert.Empty(t, indices)
	assert.Empty(t, probs)
}

func TestGreedyDecodeRejectsBadShapes(t *testing.T) {
	indices, probs := greedyDecode(nil, 0, 0)
	assert.Nil(t, indices)
	assert.Nil(t, probs)

	indices, probs = greedyDecode([]float32{0.1, 0.9}, 3, 2)
	assert.Nil(t, indices)
	assert.Nil(t, probs)
}

func TestArgmax(t *testing.T) {
	idx, best := argmax([]float32{0.1, 0.7, 0.2})
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 0.7, best, 1e-6)

	idx, _ = argmax(nil)
	assert.Equal(t, -1, idx)
}

func TestSoftmaxProb(t *testing.T) {
	// Probability-like rows pass through unchanged.
	p := softmaxProb([]float32{0.2, 0.5, 0.3}, 1)
	assert.InDelta(t, 0.5, p, 1e-6)

	// Raw logits get softmaxed; the larger logit gets the larger share.
	hi := softmaxProb([]float32{1, 5, 1}, 1)
	lo := softmaxProb([]float32{1, 5, 1}, 0)
	assert.Greater(t, hi, 0.9)
	assert.Less(t, lo, 0.05)
	assert.InDelta(t, 1.0, hi+2*lo, 1e-6)
}

func TestMeanProb(t *testing.T) {
	assert.Zero(t, meanProb(nil))
	assert.InDelta(t, 0.5, meanProb([]float64{0.25, 0.75}), 1e-9)
}
