// Package optim implements gradient-based optimizers for training the
// sift classifiers.
//
// Optimizers read the gradients accumulated on nn.Parameter by the
// backward passes and update the parameter values in place.
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//	for each batch {
//	    optimizer.ZeroGrad()
//	    scores := model.Forward(batch)
//	    loss := criterion.Forward(scores, labels)
//	    model.Backward(criterion.Backward())
//	    optimizer.Step()
//	}
package optim

import (
	"github.com/sift-ml/sift/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to all managed parameters.
	Step()

	// ZeroGrad clears the gradients of all managed parameters. Call
	// before each backward pass to prevent accumulation across batches.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
