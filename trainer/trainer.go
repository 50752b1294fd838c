// Package trainer provides the public training harness of the sift
// library.
//
// The trainer consumes flat (N, D) feature rows regardless of the
// model: it queries the classifier's declared input layout and
// reshapes batches to images when needed.
package trainer

import (
	"github.com/sift-ml/sift/internal/classifier"
	"github.com/sift-ml/sift/internal/trainer"
)

// Config holds the training hyperparameters.
type Config = trainer.Config

// Trainer trains a classifier and runs batched inference.
type Trainer = trainer.Trainer

// New creates a Trainer for the given model.
func New(model classifier.Classifier, config Config) *Trainer {
	return trainer.New(model, config)
}
