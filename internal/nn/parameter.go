package nn

import (
	"github.com/sift-ml/sift/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// A parameter owns its value tensor and a gradient tensor of the same
// shape. Backward passes accumulate into the gradient; the optimizer
// reads it, updates the value, and clears it with ZeroGrad.
type Parameter struct {
	name string
	data *tensor.Tensor
	grad *tensor.Tensor
}

// NewParameter creates a trainable parameter with a zeroed gradient.
func NewParameter(name string, data *tensor.Tensor) *Parameter {
	return &Parameter{
		name: name,
		data: data,
		grad: tensor.Zeros(data.Shape()),
	}
}

// Name returns the parameter name (e.g. "weight", "bias").
func (p *Parameter) Name() string {
	return p.name
}

// Data returns the parameter value tensor.
func (p *Parameter) Data() *tensor.Tensor {
	return p.data
}

// Grad returns the accumulated gradient tensor.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// ZeroGrad clears the accumulated gradient.
//
// Call before each training iteration to avoid mixing gradients from
// previous batches.
func (p *Parameter) ZeroGrad() {
	data := p.grad.Data()
	for i := range data {
		data[i] = 0
	}
}
