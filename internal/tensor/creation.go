package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float64) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Rand creates a tensor with values drawn uniformly from [0, 1).
//
// Uses math/rand's global source; weight initialization is not
// security-critical.
func Rand(shape Shape) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = rand.Float64()
	}
	return t
}

// Randn creates a tensor with values drawn from the standard normal
// distribution N(0, 1).
func Randn(shape Shape) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = rand.NormFloat64()
	}
	return t
}
