package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Add returns the element-wise sum t + other. Shapes must match.
func (t *Tensor) Add(other *Tensor) *Tensor {
	t.checkSameShape("Add", other)
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v + other.data[i]
	}
	return out
}

// Sub returns the element-wise difference t - other. Shapes must match.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	t.checkSameShape("Sub", other)
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v - other.data[i]
	}
	return out
}

// Mul returns the element-wise product t * other. Shapes must match.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	t.checkSameShape("Mul", other)
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v * other.data[i]
	}
	return out
}

// MulScalar returns t scaled by s.
func (t *Tensor) MulScalar(s float64) *Tensor {
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v * s
	}
	return out
}

// AddInPlace accumulates other into t element-wise. Shapes must match.
func (t *Tensor) AddInPlace(other *Tensor) {
	t.checkSameShape("AddInPlace", other)
	for i, v := range other.data {
		t.data[i] += v
	}
}

// MatMul computes the 2D matrix product t @ other.
//
// Shapes: [m, k] @ [k, n] -> [m, n]. The flat buffers are wrapped as
// gonum dense matrices without copying, so the multiplication runs on
// gonum's BLAS kernels.
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		panic(fmt.Sprintf("tensor.MatMul: expected 2D operands, got %v and %v", t.shape, other.shape))
	}
	m, k := t.shape[0], t.shape[1]
	k2, n := other.shape[0], other.shape[1]
	if k != k2 {
		panic(fmt.Sprintf("tensor.MatMul: inner dimensions differ: %v and %v", t.shape, other.shape))
	}

	a := mat.NewDense(m, k, t.data)
	b := mat.NewDense(k2, n, other.data)
	out := New(Shape{m, n})
	c := mat.NewDense(m, n, out.data)
	c.Mul(a, b)
	return out
}

// Transpose returns the transpose of a 2D tensor.
func (t *Tensor) Transpose() *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor.Transpose: expected 2D tensor, got %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols, rows})
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[j*rows+i] = t.data[i*cols+j]
		}
	}
	return out
}

func (t *Tensor) checkSameShape(op string, other *Tensor) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor.%s: shape mismatch: %v vs %v", op, t.shape, other.shape))
	}
}
