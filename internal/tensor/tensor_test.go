package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	tt, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, tt.Shape())
	assert.Equal(t, 3.0, tt.At(0, 2))
	assert.Equal(t, 4.0, tt.At(1, 0))

	_, err = FromSlice([]float64{1, 2}, Shape{2, 3})
	assert.Error(t, err)
}

func TestSetAt(t *testing.T) {
	tt := Zeros(Shape{2, 2, 2})
	tt.Set(7.5, 1, 0, 1)
	assert.Equal(t, 7.5, tt.At(1, 0, 1))
	assert.Equal(t, 7.5, tt.Data()[5])

	assert.Panics(t, func() { tt.At(2, 0, 0) })
	assert.Panics(t, func() { tt.At(0, 0) })
}

func TestReshapeSharesData(t *testing.T) {
	tt, err := FromSlice([]float64{1, 2, 3, 4}, Shape{2, 2})
	require.NoError(t, err)

	flat := tt.Reshape(4)
	flat.Set(9, 0)
	assert.Equal(t, 9.0, tt.At(0, 0), "reshape must be a view")

	assert.Panics(t, func() { tt.Reshape(3) })
}

func TestCloneIsIndependent(t *testing.T) {
	tt := Ones(Shape{3})
	c := tt.Clone()
	c.Set(5, 0)
	assert.Equal(t, 1.0, tt.At(0))
}

func TestMatMul(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	b, err := FromSlice([]float64{7, 8, 9, 10, 11, 12}, Shape{3, 2})
	require.NoError(t, err)

	c := a.MatMul(b)
	assert.Equal(t, Shape{2, 2}, c.Shape())
	// [1 2 3; 4 5 6] @ [7 8; 9 10; 11 12] = [58 64; 139 154]
	assert.InDelta(t, 58, c.At(0, 0), 1e-12)
	assert.InDelta(t, 64, c.At(0, 1), 1e-12)
	assert.InDelta(t, 139, c.At(1, 0), 1e-12)
	assert.InDelta(t, 154, c.At(1, 1), 1e-12)

	assert.Panics(t, func() { a.MatMul(a) })
}

func TestTranspose(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	at := a.Transpose()
	assert.Equal(t, Shape{3, 2}, at.Shape())
	assert.Equal(t, a.At(0, 1), at.At(1, 0))
	assert.Equal(t, a.At(1, 2), at.At(2, 1))
}

func TestElementwise(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	b, _ := FromSlice([]float64{4, 5, 6}, Shape{3})

	assert.Equal(t, []float64{5, 7, 9}, a.Add(b).Data())
	assert.Equal(t, []float64{-3, -3, -3}, a.Sub(b).Data())
	assert.Equal(t, []float64{4, 10, 18}, a.Mul(b).Data())
	assert.Equal(t, []float64{2, 4, 6}, a.MulScalar(2).Data())

	c := Zeros(Shape{3})
	c.AddInPlace(a)
	c.AddInPlace(a)
	assert.Equal(t, []float64{2, 4, 6}, c.Data())

	bad := Zeros(Shape{2})
	assert.Panics(t, func() { a.Add(bad) })
}

func TestShapeHelpers(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.True(t, s.Equal(Shape{2, 3, 4}))
	assert.False(t, s.Equal(Shape{2, 3}))
	assert.Equal(t, "[2, 3, 4]", s.String())

	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 2, s[0])
}
