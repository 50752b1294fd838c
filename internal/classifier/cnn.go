package classifier

import (
	"fmt"

	"github.com/sift-ml/sift/internal/nn"
	"github.com/sift-ml/sift/internal/tensor"
)

// CNN is a convolutional classifier:
//
//	conv(3x3, pad 1) -> ReLU -> maxpool(2)   channels -> 8
//	conv(3x3, pad 1) -> ReLU -> maxpool(2)   8 -> 16
//	conv(3x3, pad 2) -> ReLU -> maxpool(2)   16 -> 32
//	flatten -> 256 -> ReLU -> 128 -> ReLU -> classes
//
// Returns pre-softmax logits. For 28x28 inputs the flattened feature
// map is 32*4*4.
type CNN struct {
	net        *nn.Sequential
	channels   int
	imageSize  int
	numClasses int
}

// NewCNN creates a CNN for square inputs of the given channel count
// and spatial size.
//
// Panics if the input is too small for the three pooling stages.
func NewCNN(channels, imageSize, numClasses int) *CNN {
	conv1 := nn.NewConv2D(channels, 8, 3, 1, 1)
	pool1 := nn.NewMaxPool2D(2, 2)
	conv2 := nn.NewConv2D(8, 16, 3, 1, 1)
	pool2 := nn.NewMaxPool2D(2, 2)
	conv3 := nn.NewConv2D(16, 32, 3, 1, 2)
	pool3 := nn.NewMaxPool2D(2, 2)

	// Trace the spatial size through the conv/pool stack to size the
	// first fully connected layer.
	size := pool1.OutputSize(conv1.OutputSize(imageSize))
	size = pool2.OutputSize(conv2.OutputSize(size))
	size = pool3.OutputSize(conv3.OutputSize(size))
	if size <= 0 {
		panic(fmt.Sprintf("NewCNN: image size %d is too small for three pooling stages", imageSize))
	}

	return &CNN{
		channels:   channels,
		imageSize:  imageSize,
		numClasses: numClasses,
		net: nn.NewSequential(
			conv1, nn.NewReLU(), pool1,
			conv2, nn.NewReLU(), pool2,
			conv3, nn.NewReLU(), pool3,
			nn.NewFlatten(),
			nn.NewLinear(32*size*size, 256),
			nn.NewReLU(),
			nn.NewLinear(256, 128),
			nn.NewReLU(),
			nn.NewLinear(128, numClasses),
		),
	}
}

// Forward maps [N, C, H, W] images to [N, classes] logits.
func (c *CNN) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 || shape[1] != c.channels || shape[2] != c.imageSize || shape[3] != c.imageSize {
		panic(fmt.Sprintf("CNN.Forward: expected input [N, %d, %d, %d], got shape %v",
			c.channels, c.imageSize, c.imageSize, shape))
	}
	return c.net.Forward(input)
}

// Backward propagates the logit gradient through the stack.
func (c *CNN) Backward(grad *tensor.Tensor) *tensor.Tensor {
	return c.net.Backward(grad)
}

// Parameters returns the parameters of all conv and linear blocks.
func (c *CNN) Parameters() []*nn.Parameter {
	return c.net.Parameters()
}

// InputLayout reports that the CNN consumes channel-major images.
func (c *CNN) InputLayout() InputLayout {
	return LayoutImage
}

// ImageSize returns the expected spatial input size.
func (c *CNN) ImageSize() int {
	return c.imageSize
}

// NumClasses returns the number of output classes.
func (c *CNN) NumClasses() int {
	return c.numClasses
}
