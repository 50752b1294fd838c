package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sift-ml/sift/internal/tensor"
)

func TestAttentionShapeLaw(t *testing.T) {
	for _, heads := range []int{1, 2, 4, 8} {
		attn := NewMultiHeadSelfAttention(8, heads)
		input := tensor.Randn(tensor.Shape{2, 5, 8})
		out := attn.Forward(input)
		assert.True(t, out.Shape().Equal(input.Shape()),
			"%d heads: attention must preserve shape, got %v", heads, out.Shape())
	}
}

func TestAttentionHeadDivisibilityPrecondition(t *testing.T) {
	assert.Panics(t, func() { NewMultiHeadSelfAttention(7, 2) })
	assert.Panics(t, func() { NewMultiHeadSelfAttention(8, 3) })
	assert.Panics(t, func() { NewMultiHeadSelfAttention(8, 0) })
	assert.NotPanics(t, func() { NewMultiHeadSelfAttention(8, 4) })
}

func TestAttentionNoCrossSequenceMixing(t *testing.T) {
	attn := NewMultiHeadSelfAttention(4, 2)

	first := tensor.Randn(tensor.Shape{1, 3, 4})
	second := tensor.Randn(tensor.Shape{1, 3, 4})

	// Processing the two sequences in one batch must equal processing
	// them separately.
	batch := tensor.New(tensor.Shape{2, 3, 4})
	copy(batch.Data()[:12], first.Data())
	copy(batch.Data()[12:], second.Data())

	batchOut := attn.Forward(batch)
	firstOut := attn.Forward(first)
	secondOut := attn.Forward(second)

	for i := 0; i < 12; i++ {
		assert.InDelta(t, firstOut.Data()[i], batchOut.Data()[i], 1e-12)
		assert.InDelta(t, secondOut.Data()[i], batchOut.Data()[12+i], 1e-12)
	}
}

func TestAttentionUniformInputGivesUniformWeights(t *testing.T) {
	// With identical tokens, every attention row is uniform and the
	// output rows are identical to one another.
	attn := NewMultiHeadSelfAttention(4, 2)
	input := tensor.Ones(tensor.Shape{1, 3, 4})

	out := attn.Forward(input)
	data := out.Data()
	for l := 1; l < 3; l++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, data[j], data[l*4+j], 1e-12, "token %d, feature %d", l, j)
		}
	}
}

func TestAttentionParameterCount(t *testing.T) {
	attn := NewMultiHeadSelfAttention(8, 2)
	// Per head: q/k/v weight and bias.
	require.Len(t, attn.Parameters(), 2*3*2)
	assert.Equal(t, 2, attn.NumHeads())
}

func TestAttentionBackwardBeforeForwardPanics(t *testing.T) {
	attn := NewMultiHeadSelfAttention(4, 2)
	assert.Panics(t, func() { attn.Backward(tensor.Zeros(tensor.Shape{1, 3, 4})) })
}
