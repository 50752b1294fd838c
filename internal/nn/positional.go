package nn

import (
	"fmt"
	"math"

	"github.com/sift-ml/sift/internal/tensor"
)

// SinusoidalTable returns the fixed sinusoidal positional embedding
// table of shape [seqLen, dim] from "Attention is All You Need":
//
//	PE(i, 2k)   = sin(i / 10000^(2k/dim))
//	PE(i, 2k+1) = cos(i / 10000^(2k/dim))
//
// Each sine/cosine column pair shares the even column's frequency.
// The table is a pure function of (seqLen, dim): no randomness, no
// trainable state. Callers that reuse it (the vision classifier adds
// it to every batch) cache the returned tensor.
func SinusoidalTable(seqLen, dim int) *tensor.Tensor {
	if seqLen <= 0 {
		panic(fmt.Sprintf("SinusoidalTable: seqLen must be positive, got %d", seqLen))
	}
	if dim <= 0 {
		panic(fmt.Sprintf("SinusoidalTable: dim must be positive, got %d", dim))
	}

	table := tensor.New(tensor.Shape{seqLen, dim})
	data := table.Data()
	for i := 0; i < seqLen; i++ {
		for j := 0; j < dim; j++ {
			// Even and odd columns pair up on the even exponent.
			exponent := float64(j-j%2) / float64(dim)
			angle := float64(i) / math.Pow(10000, exponent)

			idx := i*dim + j
			if j%2 == 0 {
				data[idx] = math.Sin(angle)
			} else {
				data[idx] = math.Cos(angle)
			}
		}
	}
	return table
}
