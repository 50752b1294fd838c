package classifier

import (
	"github.com/sift-ml/sift/internal/nn"
	"github.com/sift-ml/sift/internal/tensor"
)

// MLP is a fully connected classifier over flat feature rows:
//
//	input -> 128 -> 64 -> 32 -> classes
//
// with ReLU between the linear blocks. Returns pre-softmax logits.
type MLP struct {
	net        *nn.Sequential
	numClasses int
}

// NewMLP creates an MLP for inputSize features and numClasses classes.
func NewMLP(inputSize, numClasses int) *MLP {
	return &MLP{
		numClasses: numClasses,
		net: nn.NewSequential(
			nn.NewLinear(inputSize, 128),
			nn.NewReLU(),
			nn.NewLinear(128, 64),
			nn.NewReLU(),
			nn.NewLinear(64, 32),
			nn.NewReLU(),
			nn.NewLinear(32, numClasses),
		),
	}
}

// Forward maps [N, D] feature rows to [N, classes] logits.
func (m *MLP) Forward(input *tensor.Tensor) *tensor.Tensor {
	return m.net.Forward(input)
}

// Backward propagates the logit gradient through the stack.
func (m *MLP) Backward(grad *tensor.Tensor) *tensor.Tensor {
	return m.net.Backward(grad)
}

// Parameters returns the parameters of all linear blocks.
func (m *MLP) Parameters() []*nn.Parameter {
	return m.net.Parameters()
}

// InputLayout reports that the MLP consumes flat feature rows.
func (m *MLP) InputLayout() InputLayout {
	return LayoutFlat
}

// NumClasses returns the number of output classes.
func (m *MLP) NumClasses() int {
	return m.numClasses
}
