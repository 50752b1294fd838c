package nn

import (
	"math"

	"github.com/sift-ml/sift/internal/tensor"
)

// ReLU applies the rectified linear unit f(x) = max(0, x) element-wise.
type ReLU struct {
	lastInput *tensor.Tensor
}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies f(x) = max(0, x).
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	r.lastInput = input
	out := tensor.New(input.Shape())
	in, data := input.Data(), out.Data()
	for i, v := range in {
		if v > 0 {
			data[i] = v
		}
	}
	return out
}

// Backward passes the gradient through where the input was positive.
func (r *ReLU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if r.lastInput == nil {
		panic("ReLU.Backward: called before Forward")
	}
	out := tensor.New(grad.Shape())
	in, g, data := r.lastInput.Data(), grad.Data(), out.Data()
	for i, v := range in {
		if v > 0 {
			data[i] = g[i]
		}
	}
	return out
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// GELU applies the Gaussian Error Linear Unit in its exact erf form:
//
//	gelu(x) = 0.5 * x * (1 + erf(x / sqrt(2)))
type GELU struct {
	lastInput *tensor.Tensor
}

// NewGELU creates a new GELU activation module.
func NewGELU() *GELU {
	return &GELU{}
}

// Forward applies gelu(x) = x * Phi(x), with Phi the standard normal CDF.
func (g *GELU) Forward(input *tensor.Tensor) *tensor.Tensor {
	g.lastInput = input
	out := tensor.New(input.Shape())
	in, data := input.Data(), out.Data()
	for i, v := range in {
		data[i] = 0.5 * v * (1 + math.Erf(v/math.Sqrt2))
	}
	return out
}

// Backward applies the derivative Phi(x) + x * phi(x), with phi the
// standard normal density.
func (g *GELU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if g.lastInput == nil {
		panic("GELU.Backward: called before Forward")
	}
	out := tensor.New(grad.Shape())
	in, gr, data := g.lastInput.Data(), grad.Data(), out.Data()
	invSqrt2Pi := 1.0 / math.Sqrt(2*math.Pi)
	for i, v := range in {
		cdf := 0.5 * (1 + math.Erf(v/math.Sqrt2))
		pdf := invSqrt2Pi * math.Exp(-0.5*v*v)
		data[i] = gr[i] * (cdf + v*pdf)
	}
	return out
}

// Parameters returns an empty slice (GELU has no trainable parameters).
func (g *GELU) Parameters() []*Parameter {
	return nil
}
