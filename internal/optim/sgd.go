package optim

import (
	"github.com/sift-ml/sift/internal/nn"
	"github.com/sift-ml/sift/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param -= lr * grad
//
// With momentum:
//
//	velocity = momentum * velocity + grad
//	param   -= lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter]*tensor.Tensor
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // learning rate (default 0.01)
	Momentum float64 // momentum factor in [0, 1) (default 0)
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Tensor),
	}
}

// Step applies one gradient update to every parameter.
func (s *SGD) Step() {
	for _, param := range s.params {
		data := param.Data().Data()
		grad := param.Grad().Data()

		if s.momentum == 0 {
			for i := range data {
				data[i] -= s.lr * grad[i]
			}
			continue
		}

		velocity, ok := s.velocities[param]
		if !ok {
			velocity = tensor.Zeros(param.Data().Shape())
			s.velocities[param] = velocity
		}
		vData := velocity.Data()
		for i := range data {
			vData[i] = s.momentum*vData[i] + grad[i]
			data[i] -= s.lr * vData[i]
		}
	}
}

// ZeroGrad clears all parameter gradients.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate; useful for scheduling.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
