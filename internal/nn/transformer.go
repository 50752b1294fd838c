package nn

import (
	"fmt"

	"github.com/sift-ml/sift/internal/tensor"
)

// LayerNormEpsilon is the numerical-stability constant used by the
// transformer blocks.
const LayerNormEpsilon = 1e-5

// TransformerBlock is a pre-norm transformer encoder block:
//
//	out1 = x + MHSA(LayerNorm(x))
//	out2 = out1 + FeedForward(LayerNorm(out1))
//
// FeedForward is a two-layer projection d -> mlpRatio*d -> d with GELU
// in between. Both residual connections are strict additive skips.
type TransformerBlock struct {
	dim   int
	norm1 *LayerNorm
	attn  *MultiHeadSelfAttention
	norm2 *LayerNorm
	ffn   *Sequential
}

// NewTransformerBlock creates a transformer block over token dimension
// dim with numHeads attention heads and a feed-forward hidden size of
// mlpRatio*dim.
//
// Panics if dim is not divisible by numHeads.
func NewTransformerBlock(dim, numHeads, mlpRatio int) *TransformerBlock {
	return &TransformerBlock{
		dim:   dim,
		norm1: NewLayerNorm(dim, LayerNormEpsilon),
		attn:  NewMultiHeadSelfAttention(dim, numHeads),
		norm2: NewLayerNorm(dim, LayerNormEpsilon),
		ffn: NewSequential(
			NewLinear(dim, mlpRatio*dim),
			NewGELU(),
			NewLinear(mlpRatio*dim, dim),
		),
	}
}

// Forward applies the block to a batch of sequences.
//
// Input and output shape: [N, L, dim].
func (b *TransformerBlock) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 3 || shape[2] != b.dim {
		panic(fmt.Sprintf("TransformerBlock.Forward: expected input [N, L, %d], got shape %v", b.dim, shape))
	}
	n, l := shape[0], shape[1]

	out1 := input.Add(b.attn.Forward(b.norm1.Forward(input)))

	// Linear layers operate on 2D views; Reshape shares the buffer.
	ffnOut := b.ffn.Forward(b.norm2.Forward(out1).Reshape(n*l, b.dim))
	return out1.Add(ffnOut.Reshape(n, l, b.dim))
}

// Backward propagates through both residual branches in reverse.
func (b *TransformerBlock) Backward(grad *tensor.Tensor) *tensor.Tensor {
	shape := grad.Shape()
	n, l := shape[0], shape[1]

	// out2 = out1 + FFN(LN2(out1))
	ffnGrad := b.ffn.Backward(grad.Reshape(n*l, b.dim))
	dOut1 := grad.Add(b.norm2.Backward(ffnGrad.Reshape(n, l, b.dim)))

	// out1 = x + MHSA(LN1(x))
	attnGrad := b.attn.Backward(dOut1)
	return dOut1.Add(b.norm1.Backward(attnGrad))
}

// Parameters returns the parameters of both norms, the attention and
// the feed-forward projection.
func (b *TransformerBlock) Parameters() []*Parameter {
	var params []*Parameter
	params = append(params, b.norm1.Parameters()...)
	params = append(params, b.attn.Parameters()...)
	params = append(params, b.norm2.Parameters()...)
	params = append(params, b.ffn.Parameters()...)
	return params
}
