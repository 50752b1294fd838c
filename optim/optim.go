// Package optim provides the public optimizers of the sift library.
package optim

import (
	"github.com/sift-ml/sift/internal/nn"
	"github.com/sift-ml/sift/internal/optim"
)

// Optimizer is the common interface for all optimizers.
type Optimizer = optim.Optimizer

// SGD is the stochastic gradient descent optimizer with optional
// momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer over the given parameters.
//
// Example:
//
//	model := classifier.NewMLP(784, 10)
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}
