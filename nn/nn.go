// Package nn provides the public neural network building blocks of the
// sift library: layers, activations, attention, and the cross-entropy
// criterion.
//
// Every layer implements the Module interface with explicit Forward and
// Backward passes; Backward accumulates parameter gradients for the
// optimizer to consume.
package nn

import (
	"github.com/sift-ml/sift/internal/nn"
	"github.com/sift-ml/sift/internal/tensor"
)

// Module is the common interface for all network layers.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a trainable parameter with a zeroed gradient.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Linear is a fully connected layer computing y = x·Wᵀ + b.
type Linear = nn.Linear

// NewLinear creates a linear layer with Xavier initialization.
func NewLinear(inFeatures, outFeatures int) *Linear {
	return nn.NewLinear(inFeatures, outFeatures)
}

// Conv2D is a 2D convolutional layer.
type Conv2D = nn.Conv2D

// NewConv2D creates a convolutional layer with the given kernel size,
// stride, and zero padding.
func NewConv2D(inChannels, outChannels, kernelSize, stride, padding int) *Conv2D {
	return nn.NewConv2D(inChannels, outChannels, kernelSize, stride, padding)
}

// MaxPool2D is a 2D max pooling layer.
type MaxPool2D = nn.MaxPool2D

// NewMaxPool2D creates a max pooling layer.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	return nn.NewMaxPool2D(kernelSize, stride)
}

// Flatten collapses all dimensions after the batch dimension.
type Flatten = nn.Flatten

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return nn.NewFlatten()
}

// LayerNorm normalizes the last dimension to zero mean and unit
// variance, then applies a learned affine transform.
type LayerNorm = nn.LayerNorm

// NewLayerNorm creates a layer normalization over dim features.
func NewLayerNorm(dim int, epsilon float64) *LayerNorm {
	return nn.NewLayerNorm(dim, epsilon)
}

// LayerNormEpsilon is the default variance epsilon used by the
// transformer block.
const LayerNormEpsilon = nn.LayerNormEpsilon

// MultiHeadSelfAttention splits tokens across heads and attends within
// each head independently.
type MultiHeadSelfAttention = nn.MultiHeadSelfAttention

// NewMultiHeadSelfAttention creates self-attention over dim features
// split across numHeads heads. Panics unless numHeads divides dim.
func NewMultiHeadSelfAttention(dim, numHeads int) *MultiHeadSelfAttention {
	return nn.NewMultiHeadSelfAttention(dim, numHeads)
}

// TransformerBlock is a pre-norm transformer encoder block with
// residual connections around attention and the feed-forward network.
type TransformerBlock = nn.TransformerBlock

// NewTransformerBlock creates a transformer block with the given
// feed-forward expansion ratio.
func NewTransformerBlock(dim, numHeads, mlpRatio int) *TransformerBlock {
	return nn.NewTransformerBlock(dim, numHeads, mlpRatio)
}

// Sequential chains modules, feeding each output into the next.
type Sequential = nn.Sequential

// NewSequential creates a sequential container from the given modules.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Activations

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// GELU is the Gaussian error linear activation (exact erf form).
type GELU = nn.GELU

// NewGELU creates a GELU activation.
func NewGELU() *GELU {
	return nn.NewGELU()
}

// Softmax normalizes the last dimension into a probability
// distribution.
type Softmax = nn.Softmax

// NewSoftmax creates a softmax activation.
func NewSoftmax() *Softmax {
	return nn.NewSoftmax()
}

// Loss

// CrossEntropyLoss is the mean cross-entropy criterion over integer
// class targets.
type CrossEntropyLoss = nn.CrossEntropyLoss

// NewCrossEntropyLoss creates a cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return nn.NewCrossEntropyLoss()
}

// Helpers

// Xavier returns a tensor initialized with Xavier/Glorot uniform
// values for the given fan-in and fan-out.
func Xavier(fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor {
	return nn.Xavier(fanIn, fanOut, shape)
}

// SinusoidalTable returns the fixed sinusoidal positional embedding
// table of shape [seqLen, dim].
func SinusoidalTable(seqLen, dim int) *tensor.Tensor {
	return nn.SinusoidalTable(seqLen, dim)
}

// Patchify splits [N, C, H, W] images into [N, P², C·s²] patch rows,
// where P is patches per side and s the patch size.
func Patchify(images *tensor.Tensor, nPatches int) *tensor.Tensor {
	return nn.Patchify(images, nPatches)
}

// Unpatchify is the exact inverse of Patchify.
func Unpatchify(patches *tensor.Tensor, nPatches, channels, patchSize int) *tensor.Tensor {
	return nn.Unpatchify(patches, nPatches, channels, patchSize)
}
