package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sift-ml/sift/internal/tensor"
)

func TestTransformerBlockPreservesShape(t *testing.T) {
	block := NewTransformerBlock(8, 2, 4)
	input := tensor.Randn(tensor.Shape{2, 5, 8})

	out := block.Forward(input)
	assert.True(t, out.Shape().Equal(input.Shape()))
}

func TestTransformerBlockResidualDominatesAtZeroWeights(t *testing.T) {
	// With every weight zeroed (including LayerNorm's gamma), both
	// branches contribute only the FFN bias path; zeroing all biases
	// too makes the block the identity. Residuals must add, never
	// replace.
	block := NewTransformerBlock(4, 2, 2)
	for _, p := range block.Parameters() {
		data := p.Data().Data()
		for i := range data {
			data[i] = 0
		}
	}

	input := tensor.Randn(tensor.Shape{1, 3, 4})
	out := block.Forward(input)
	for i, v := range input.Data() {
		assert.InDelta(t, v, out.Data()[i], 1e-12, "element %d", i)
	}
}

func TestTransformerBlockHeadPrecondition(t *testing.T) {
	assert.Panics(t, func() { NewTransformerBlock(7, 2, 4) })
}

func TestTransformerBlockParameterSet(t *testing.T) {
	block := NewTransformerBlock(8, 2, 4)
	// 2 norms * 2 + 2 heads * 6 attention params + 2 FFN linears * 2.
	require.Len(t, block.Parameters(), 4+12+4)
}

func TestTransformerBlockBatchIndependence(t *testing.T) {
	block := NewTransformerBlock(4, 2, 2)

	first := tensor.Randn(tensor.Shape{1, 3, 4})
	second := tensor.Randn(tensor.Shape{1, 3, 4})
	batch := tensor.New(tensor.Shape{2, 3, 4})
	copy(batch.Data()[:12], first.Data())
	copy(batch.Data()[12:], second.Data())

	batchOut := block.Forward(batch)
	firstOut := block.Forward(first)

	for i := 0; i < 12; i++ {
		assert.InDelta(t, firstOut.Data()[i], batchOut.Data()[i], 1e-12)
	}
}
