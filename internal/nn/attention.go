package nn

import (
	"fmt"
	"math"

	"github.com/sift-ml/sift/internal/tensor"
)

// MultiHeadSelfAttention implements scaled dot-product self-attention
// with per-head projections.
//
// Each token vector of dimension d is split into numHeads contiguous
// sub-vectors of size d/numHeads. Every head owns three independent
// linear maps (query, key, value) from the head sub-dimension to
// itself. Per head:
//
//	scores = Q @ K.T / sqrt(d_head)
//	output = softmax(scores) @ V
//
// Head outputs are concatenated along the feature axis in head order,
// so the layer preserves the [L, d] shape of every sequence. Sequences
// in a batch are processed independently; there is no cross-sequence
// mixing.
type MultiHeadSelfAttention struct {
	dim      int
	numHeads int
	headDim  int
	scale    float64 // 1 / sqrt(headDim)

	wq, wk, wv []*Parameter // per head, [headDim, headDim]
	bq, bk, bv []*Parameter // per head, [headDim]

	// Cached activations for backward, indexed [sample][head].
	lastBatch, lastSeqLen int
	lastSub, lastQ, lastK [][]*tensor.Tensor
	lastV, lastAttn       [][]*tensor.Tensor
}

// NewMultiHeadSelfAttention creates a self-attention layer over token
// dimension dim with numHeads heads.
//
// Panics if dim is not divisible by numHeads.
func NewMultiHeadSelfAttention(dim, numHeads int) *MultiHeadSelfAttention {
	if numHeads <= 0 || dim%numHeads != 0 {
		panic(fmt.Sprintf("MultiHeadSelfAttention: dimension %d is not divisible by %d heads", dim, numHeads))
	}
	headDim := dim / numHeads

	m := &MultiHeadSelfAttention{
		dim:      dim,
		numHeads: numHeads,
		headDim:  headDim,
		scale:    1.0 / math.Sqrt(float64(headDim)),
	}
	for h := 0; h < numHeads; h++ {
		m.wq = append(m.wq, NewParameter(fmt.Sprintf("q%d.weight", h), Xavier(headDim, headDim, tensor.Shape{headDim, headDim})))
		m.wk = append(m.wk, NewParameter(fmt.Sprintf("k%d.weight", h), Xavier(headDim, headDim, tensor.Shape{headDim, headDim})))
		m.wv = append(m.wv, NewParameter(fmt.Sprintf("v%d.weight", h), Xavier(headDim, headDim, tensor.Shape{headDim, headDim})))
		m.bq = append(m.bq, NewParameter(fmt.Sprintf("q%d.bias", h), tensor.Zeros(tensor.Shape{headDim})))
		m.bk = append(m.bk, NewParameter(fmt.Sprintf("k%d.bias", h), tensor.Zeros(tensor.Shape{headDim})))
		m.bv = append(m.bv, NewParameter(fmt.Sprintf("v%d.bias", h), tensor.Zeros(tensor.Shape{headDim})))
	}
	return m
}

// Forward applies self-attention to a batch of sequences.
//
// Input and output shape: [N, L, dim].
func (m *MultiHeadSelfAttention) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 3 || shape[2] != m.dim {
		panic(fmt.Sprintf("MultiHeadSelfAttention.Forward: expected input [N, L, %d], got shape %v", m.dim, shape))
	}
	batch, seqLen := shape[0], shape[1]

	m.lastBatch, m.lastSeqLen = batch, seqLen
	m.lastSub = makeCache(batch, m.numHeads)
	m.lastQ = makeCache(batch, m.numHeads)
	m.lastK = makeCache(batch, m.numHeads)
	m.lastV = makeCache(batch, m.numHeads)
	m.lastAttn = makeCache(batch, m.numHeads)

	out := tensor.New(shape)
	for n := 0; n < batch; n++ {
		for h := 0; h < m.numHeads; h++ {
			sub := m.headSlice(input, n, h, seqLen)

			q := affine(sub, m.wq[h].Data(), m.bq[h].Data())
			k := affine(sub, m.wk[h].Data(), m.bk[h].Data())
			v := affine(sub, m.wv[h].Data(), m.bv[h].Data())

			scores := q.MatMul(k.Transpose()).MulScalar(m.scale)
			softmaxRows(scores.Data(), seqLen, seqLen)

			headOut := scores.MatMul(v)
			m.writeHeadSlice(out, headOut, n, h, seqLen)

			m.lastSub[n][h] = sub
			m.lastQ[n][h] = q
			m.lastK[n][h] = k
			m.lastV[n][h] = v
			m.lastAttn[n][h] = scores
		}
	}
	return out
}

// Backward propagates the output gradient through the attention
// computation of every sequence and head, accumulating projection
// weight gradients.
func (m *MultiHeadSelfAttention) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if m.lastSub == nil {
		panic("MultiHeadSelfAttention.Backward: called before Forward")
	}
	batch, seqLen := m.lastBatch, m.lastSeqLen

	out := tensor.New(grad.Shape())
	for n := 0; n < batch; n++ {
		for h := 0; h < m.numHeads; h++ {
			g := m.headSlice(grad, n, h, seqLen)
			attn := m.lastAttn[n][h]

			// output = attn @ V
			dV := attn.Transpose().MatMul(g)
			dAttn := g.MatMul(m.lastV[n][h].Transpose())

			// Row-wise softmax backward on the attention weights.
			dScores := tensor.New(dAttn.Shape())
			aData, daData, dsData := attn.Data(), dAttn.Data(), dScores.Data()
			for r := 0; r < seqLen; r++ {
				off := r * seqLen
				dot := 0.0
				for j := 0; j < seqLen; j++ {
					dot += daData[off+j] * aData[off+j]
				}
				for j := 0; j < seqLen; j++ {
					dsData[off+j] = aData[off+j] * (daData[off+j] - dot)
				}
			}

			// scores = (Q @ K.T) * scale
			dQ := dScores.MatMul(m.lastK[n][h]).MulScalar(m.scale)
			dK := dScores.Transpose().MatMul(m.lastQ[n][h]).MulScalar(m.scale)

			sub := m.lastSub[n][h]
			dSub := affineBackward(sub, dQ, m.wq[h], m.bq[h])
			dSub.AddInPlace(affineBackward(sub, dK, m.wk[h], m.bk[h]))
			dSub.AddInPlace(affineBackward(sub, dV, m.wv[h], m.bv[h]))

			m.accumulateHeadSlice(out, dSub, n, h, seqLen)
		}
	}
	return out
}

// Parameters returns the query, key and value projections of every head.
func (m *MultiHeadSelfAttention) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 6*m.numHeads)
	for h := 0; h < m.numHeads; h++ {
		params = append(params, m.wq[h], m.bq[h], m.wk[h], m.bk[h], m.wv[h], m.bv[h])
	}
	return params
}

// NumHeads returns the number of attention heads.
func (m *MultiHeadSelfAttention) NumHeads() int {
	return m.numHeads
}

// headSlice copies the columns belonging to head h of sample n into a
// fresh [L, headDim] tensor.
func (m *MultiHeadSelfAttention) headSlice(t *tensor.Tensor, n, h, seqLen int) *tensor.Tensor {
	out := tensor.New(tensor.Shape{seqLen, m.headDim})
	data := out.Data()
	src := t.Data()
	base := n*seqLen*m.dim + h*m.headDim
	for l := 0; l < seqLen; l++ {
		copy(data[l*m.headDim:(l+1)*m.headDim], src[base+l*m.dim:base+l*m.dim+m.headDim])
	}
	return out
}

func (m *MultiHeadSelfAttention) writeHeadSlice(dst, headOut *tensor.Tensor, n, h, seqLen int) {
	data := dst.Data()
	src := headOut.Data()
	base := n*seqLen*m.dim + h*m.headDim
	for l := 0; l < seqLen; l++ {
		copy(data[base+l*m.dim:base+l*m.dim+m.headDim], src[l*m.headDim:(l+1)*m.headDim])
	}
}

func (m *MultiHeadSelfAttention) accumulateHeadSlice(dst, headGrad *tensor.Tensor, n, h, seqLen int) {
	data := dst.Data()
	src := headGrad.Data()
	base := n*seqLen*m.dim + h*m.headDim
	for l := 0; l < seqLen; l++ {
		for j := 0; j < m.headDim; j++ {
			data[base+l*m.dim+j] += src[l*m.headDim+j]
		}
	}
}

// affine computes x @ W.T + b for a [L, d] input.
func affine(x, w, b *tensor.Tensor) *tensor.Tensor {
	out := x.MatMul(w.Transpose())
	rows, cols := out.Shape()[0], out.Shape()[1]
	data := out.Data()
	bias := b.Data()
	for r := 0; r < rows; r++ {
		row := data[r*cols : (r+1)*cols]
		for j, bv := range bias {
			row[j] += bv
		}
	}
	return out
}

// affineBackward accumulates dW = dY.T @ X and db = column sums of dY
// into the given parameters, and returns dX = dY @ W.
func affineBackward(x, dy *tensor.Tensor, w, b *Parameter) *tensor.Tensor {
	w.Grad().AddInPlace(dy.Transpose().MatMul(x))

	rows, cols := dy.Shape()[0], dy.Shape()[1]
	dyData := dy.Data()
	biasGrad := b.Grad().Data()
	for r := 0; r < rows; r++ {
		row := dyData[r*cols : (r+1)*cols]
		for j, g := range row {
			biasGrad[j] += g
		}
	}
	return dy.MatMul(w.Data())
}

func makeCache(batch, heads int) [][]*tensor.Tensor {
	cache := make([][]*tensor.Tensor, batch)
	for n := range cache {
		cache[n] = make([]*tensor.Tensor, heads)
	}
	return cache
}
