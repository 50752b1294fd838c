// Package classifier assembles the sift network layers into three
// trainable classifiers: a fully connected MLP, a convolutional
// network, and a vision transformer.
//
// All three implement the Classifier interface, which extends
// nn.Module with a declared input layout. The training harness queries
// the layout to decide how to reshape flat feature rows, instead of
// inspecting which concrete classifier it holds.
package classifier

import (
	"github.com/sift-ml/sift/internal/nn"
)

// InputLayout describes the tensor layout a classifier consumes.
type InputLayout int

const (
	// LayoutFlat means the classifier consumes [N, D] feature rows.
	LayoutFlat InputLayout = iota
	// LayoutImage means the classifier consumes [N, C, H, W] images.
	LayoutImage
)

// String returns a readable name for the layout.
func (l InputLayout) String() string {
	switch l {
	case LayoutFlat:
		return "flat"
	case LayoutImage:
		return "image"
	default:
		return "unknown"
	}
}

// ImageSized is implemented by classifiers that consume images of a
// fixed spatial size. The training harness uses it to reject flat rows
// that reshape to the wrong image size before they reach Forward.
type ImageSized interface {
	ImageSize() int
}

// Classifier is a trainable model producing per-class scores.
//
// Forward consumes a batch in the classifier's declared layout and
// returns [N, classes] scores. The MLP and CNN return pre-softmax
// logits; the vision transformer returns post-softmax probabilities.
type Classifier interface {
	nn.Module

	// InputLayout declares the batch layout Forward expects.
	InputLayout() InputLayout

	// NumClasses returns the size of the score dimension.
	NumClasses() int
}
