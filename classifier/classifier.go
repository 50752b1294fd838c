// Package classifier provides the public sift classifiers: a fully
// connected MLP, a convolutional network, and a vision transformer.
//
// All three implement the Classifier interface and are trained with
// the trainer package:
//
//	model := classifier.NewMLP(784, 10)
//	t := trainer.New(model, trainer.Config{Epochs: 5})
//	preds, err := t.Fit(data, labels)
package classifier

import (
	"github.com/sift-ml/sift/internal/classifier"
)

// Classifier is a trainable model producing per-class scores.
type Classifier = classifier.Classifier

// ImageSized is implemented by classifiers that consume images of a
// fixed spatial size.
type ImageSized = classifier.ImageSized

// InputLayout describes the tensor layout a classifier consumes.
type InputLayout = classifier.InputLayout

const (
	// LayoutFlat means the classifier consumes [N, D] feature rows.
	LayoutFlat = classifier.LayoutFlat
	// LayoutImage means the classifier consumes [N, C, H, W] images.
	LayoutImage = classifier.LayoutImage
)

// MLP is a fully connected classifier over flat feature rows.
type MLP = classifier.MLP

// NewMLP creates an MLP for inputSize features and numClasses classes.
func NewMLP(inputSize, numClasses int) *MLP {
	return classifier.NewMLP(inputSize, numClasses)
}

// CNN is a convolutional classifier over square images.
type CNN = classifier.CNN

// NewCNN creates a CNN for square inputs of the given channel count
// and spatial size.
func NewCNN(channels, imageSize, numClasses int) *CNN {
	return classifier.NewCNN(channels, imageSize, numClasses)
}

// ViT is a vision transformer classifier. Unlike the MLP and CNN it
// returns post-softmax probabilities rather than logits.
type ViT = classifier.ViT

// ViTConfig collects the vision-transformer hyperparameters.
type ViTConfig = classifier.ViTConfig

// NewViT creates a vision transformer from the given configuration.
func NewViT(cfg ViTConfig) *ViT {
	return classifier.NewViT(cfg)
}
