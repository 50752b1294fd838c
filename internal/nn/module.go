// Package nn implements neural network layers for the sift library.
//
// This package provides the building blocks used by the classifiers:
//   - Module interface: forward/backward/parameter contract
//   - Linear: fully connected layer
//   - Activations: ReLU, GELU, Softmax
//   - LayerNorm: per-token normalization
//   - Conv2D, MaxPool2D, Flatten: convolutional building blocks
//   - MultiHeadSelfAttention, TransformerBlock: attention stack
//   - Patchify, SinusoidalTable: vision-transformer preprocessing
//   - CrossEntropyLoss: classification criterion
//
// Design inspired by PyTorch's nn.Module. Gradients are computed by
// explicit per-layer backward passes: each layer caches what it needs
// during Forward and accumulates parameter gradients during Backward.
package nn

import (
	"github.com/sift-ml/sift/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Forward computes the layer output and caches the activations the
// backward pass needs. Backward consumes the gradient of the loss
// with respect to the layer output, accumulates gradients into the
// layer's parameters, and returns the gradient with respect to the
// layer input.
//
// A Backward call must follow the Forward call whose activations it
// uses; the trainer drives exactly one forward/backward pair per batch.
type Module interface {
	Forward(input *tensor.Tensor) *tensor.Tensor
	Backward(grad *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable
	// state return an empty slice.
	Parameters() []*Parameter
}
