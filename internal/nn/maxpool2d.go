package nn

import (
	"fmt"
	"math"

	"github.com/sift-ml/sift/internal/tensor"
)

// MaxPool2D applies 2D max pooling over spatial windows.
//
// Input shape: [N, C, H, W]. Output shape: [N, C, out_h, out_w] with
// out_h = (H - kernel)/stride + 1.
type MaxPool2D struct {
	kernelSize int
	stride     int

	lastShape  tensor.Shape
	lastArgmax []int // flat input index of the max per output element
}

// NewMaxPool2D creates a max-pooling layer.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	return &MaxPool2D{kernelSize: kernelSize, stride: stride}
}

// OutputSize returns the spatial output size for a given input size.
func (m *MaxPool2D) OutputSize(in int) int {
	return (in-m.kernelSize)/m.stride + 1
}

// Forward takes the maximum over each pooling window, remembering the
// winning positions for the backward pass.
func (m *MaxPool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("MaxPool2D.Forward: expected 4D input [N, C, H, W], got shape %v", shape))
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	oh, ow := m.OutputSize(h), m.OutputSize(w)

	out := tensor.New(tensor.Shape{n, c, oh, ow})
	m.lastShape = shape.Clone()
	m.lastArgmax = make([]int, out.NumElements())

	in := input.Data()
	data := out.Data()
	for idx := 0; idx < n; idx++ {
		for ch := 0; ch < c; ch++ {
			planeOff := (idx*c + ch) * h * w
			for y := 0; y < oh; y++ {
				for x := 0; x < ow; x++ {
					best := math.Inf(-1)
					bestIdx := -1
					for ky := 0; ky < m.kernelSize; ky++ {
						for kx := 0; kx < m.kernelSize; kx++ {
							iy := y*m.stride + ky
							ix := x*m.stride + kx
							v := in[planeOff+iy*w+ix]
							if v > best {
								best = v
								bestIdx = planeOff + iy*w + ix
							}
						}
					}
					outIdx := ((idx*c+ch)*oh+y)*ow + x
					data[outIdx] = best
					m.lastArgmax[outIdx] = bestIdx
				}
			}
		}
	}
	return out
}

// Backward routes each output gradient to the input position that won
// the corresponding pooling window.
func (m *MaxPool2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if m.lastArgmax == nil {
		panic("MaxPool2D.Backward: called before Forward")
	}
	dIn := tensor.New(m.lastShape)
	data := dIn.Data()
	for outIdx, inIdx := range m.lastArgmax {
		data[inIdx] += grad.Data()[outIdx]
	}
	return dIn
}

// Parameters returns an empty slice (pooling has no trainable parameters).
func (m *MaxPool2D) Parameters() []*Parameter {
	return nil
}
