// Package tensor provides the public tensor API for the sift library.
//
// A Tensor is a dense, row-major float64 array with shape bookkeeping,
// element-wise arithmetic, and BLAS-backed 2D matrix multiplication.
//
// Basic usage:
//
//	x := tensor.Randn(tensor.Shape{2, 3})
//	y := tensor.Ones(tensor.Shape{2, 3})
//	z := x.Add(y)
//	w := x.MatMul(y.Transpose())
package tensor

import (
	"github.com/sift-ml/sift/internal/tensor"
)

// Shape describes the dimensions of a tensor.
type Shape = tensor.Shape

// Tensor is a dense tensor of float64 values in row-major order.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// FromSlice creates a tensor backed by a copy of data.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// Rand creates a tensor with values drawn uniformly from [0, 1).
func Rand(shape Shape) *Tensor {
	return tensor.Rand(shape)
}

// Randn creates a tensor with values drawn from N(0, 1).
func Randn(shape Shape) *Tensor {
	return tensor.Randn(shape)
}
