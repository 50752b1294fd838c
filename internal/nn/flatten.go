package nn

import (
	"github.com/sift-ml/sift/internal/tensor"
)

// Flatten collapses every dimension after the first into one, turning
// [N, ...] into [N, rest]. Used to feed convolutional feature maps
// into fully connected layers.
type Flatten struct {
	lastShape tensor.Shape
}

// NewFlatten creates a Flatten module.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward reshapes [N, ...] to [N, rest] without copying.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	f.lastShape = shape.Clone()
	return input.Reshape(shape[0], input.NumElements()/shape[0])
}

// Backward restores the gradient to the original input shape.
func (f *Flatten) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if f.lastShape == nil {
		panic("Flatten.Backward: called before Forward")
	}
	return grad.Reshape(f.lastShape...)
}

// Parameters returns an empty slice (Flatten has no trainable parameters).
func (f *Flatten) Parameters() []*Parameter {
	return nil
}
