package nn

import (
	"math"

	"github.com/sift-ml/sift/internal/tensor"
)

// Softmax normalizes each row along the last dimension into a
// probability distribution summing to 1.
type Softmax struct {
	lastOutput *tensor.Tensor
}

// NewSoftmax creates a new Softmax module.
func NewSoftmax() *Softmax {
	return &Softmax{}
}

// Forward applies a row-wise softmax over the last dimension.
func (s *Softmax) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	cols := shape[len(shape)-1]
	rows := input.NumElements() / cols

	out := input.Clone()
	softmaxRows(out.Data(), rows, cols)
	s.lastOutput = out
	return out
}

// Backward computes, per row, dx_i = y_i * (dy_i - sum_j dy_j * y_j).
func (s *Softmax) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if s.lastOutput == nil {
		panic("Softmax.Backward: called before Forward")
	}
	shape := grad.Shape()
	cols := shape[len(shape)-1]
	rows := grad.NumElements() / cols

	out := tensor.New(shape)
	y, g, data := s.lastOutput.Data(), grad.Data(), out.Data()
	for r := 0; r < rows; r++ {
		off := r * cols
		dot := 0.0
		for j := 0; j < cols; j++ {
			dot += g[off+j] * y[off+j]
		}
		for j := 0; j < cols; j++ {
			data[off+j] = y[off+j] * (g[off+j] - dot)
		}
	}
	return out
}

// Parameters returns an empty slice (Softmax has no trainable parameters).
func (s *Softmax) Parameters() []*Parameter {
	return nil
}

// softmaxRows applies a numerically stable softmax in place to each of
// the rows stored contiguously in data.
func softmaxRows(data []float64, rows, cols int) {
	for r := 0; r < rows; r++ {
		row := data[r*cols : (r+1)*cols]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		sum := 0.0
		for j, v := range row {
			e := math.Exp(v - maxVal)
			row[j] = e
			sum += e
		}
		for j := range row {
			row[j] /= sum
		}
	}
}
