package nn

import (
	"fmt"

	"github.com/sift-ml/sift/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation y = x @ W.T + b where:
//   - x is the input with shape [batch, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights use Xavier initialization, biases start at zero.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]

	lastInput *tensor.Tensor // cached for backward
}

// NewLinear creates a new Linear layer.
func NewLinear(inFeatures, outFeatures int) *Linear {
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures})),
		bias:        NewParameter("bias", tensor.Zeros(tensor.Shape{outFeatures})),
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch, in_features]. Output shape: [batch, out_features].
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, shape[1]))
	}
	l.lastInput = input

	output := input.MatMul(l.weight.Data().Transpose())

	batch := shape[0]
	outData := output.Data()
	biasData := l.bias.Data().Data()
	for n := 0; n < batch; n++ {
		row := outData[n*l.outFeatures : (n+1)*l.outFeatures]
		for j, b := range biasData {
			row[j] += b
		}
	}
	return output
}

// Backward accumulates dW = dY.T @ X and db = column sums of dY, and
// returns dX = dY @ W.
func (l *Linear) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if l.lastInput == nil {
		panic("Linear.Backward: called before Forward")
	}
	shape := grad.Shape()
	if len(shape) != 2 || shape[0] != l.lastInput.Shape()[0] || shape[1] != l.outFeatures {
		panic(fmt.Sprintf("Linear.Backward: gradient shape %v does not match output [%d, %d]",
			shape, l.lastInput.Shape()[0], l.outFeatures))
	}

	l.weight.Grad().AddInPlace(grad.Transpose().MatMul(l.lastInput))

	batch := shape[0]
	gradData := grad.Data()
	biasGrad := l.bias.Grad().Data()
	for n := 0; n < batch; n++ {
		row := gradData[n*l.outFeatures : (n+1)*l.outFeatures]
		for j, g := range row {
			biasGrad[j] += g
		}
	}

	return grad.MatMul(l.weight.Data())
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
