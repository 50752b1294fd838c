package nn

import (
	"fmt"
	"math"

	"github.com/sift-ml/sift/internal/tensor"
)

// LayerNorm normalizes each token vector independently along the last
// dimension:
//
//	y = gamma * (x - mean(x)) / sqrt(var(x) + eps) + beta
//
// gamma (scale) and beta (shift) are learned per-feature parameters.
// Variance is the population variance (divide by d).
type LayerNorm struct {
	dim     int
	epsilon float64
	gamma   *Parameter // [dim]
	beta    *Parameter // [dim]

	lastNorm   *tensor.Tensor // cached normalized input (x - mu) / sigma
	lastInvStd []float64      // cached 1/sigma per row
}

// NewLayerNorm creates a LayerNorm over the last dimension of size dim.
//
// gamma starts at ones, beta at zeros. epsilon guards the division for
// near-constant tokens; 1e-5 is the conventional value.
func NewLayerNorm(dim int, epsilon float64) *LayerNorm {
	return &LayerNorm{
		dim:     dim,
		epsilon: epsilon,
		gamma:   NewParameter("gamma", tensor.Ones(tensor.Shape{dim})),
		beta:    NewParameter("beta", tensor.Zeros(tensor.Shape{dim})),
	}
}

// Forward normalizes every vector along the last dimension.
//
// Accepts any shape [..., dim].
func (l *LayerNorm) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if shape[len(shape)-1] != l.dim {
		panic(fmt.Sprintf("LayerNorm.Forward: last dimension %d does not match normalized dim %d",
			shape[len(shape)-1], l.dim))
	}
	rows := input.NumElements() / l.dim

	out := tensor.New(shape)
	norm := tensor.New(shape)
	invStd := make([]float64, rows)

	in := input.Data()
	normData := norm.Data()
	outData := out.Data()
	gamma := l.gamma.Data().Data()
	beta := l.beta.Data().Data()

	for r := 0; r < rows; r++ {
		row := in[r*l.dim : (r+1)*l.dim]

		mean := 0.0
		for _, v := range row {
			mean += v
		}
		mean /= float64(l.dim)

		variance := 0.0
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
		variance /= float64(l.dim)

		inv := 1.0 / math.Sqrt(variance+l.epsilon)
		invStd[r] = inv

		off := r * l.dim
		for j, v := range row {
			n := (v - mean) * inv
			normData[off+j] = n
			outData[off+j] = gamma[j]*n + beta[j]
		}
	}

	l.lastNorm = norm
	l.lastInvStd = invStd
	return out
}

// Backward accumulates gamma/beta gradients and returns the input
// gradient:
//
//	dx = invStd * (dxhat - mean(dxhat) - xhat * mean(dxhat * xhat))
//
// with dxhat = dy * gamma, means taken along the feature axis.
func (l *LayerNorm) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if l.lastNorm == nil {
		panic("LayerNorm.Backward: called before Forward")
	}
	rows := grad.NumElements() / l.dim

	out := tensor.New(grad.Shape())
	g := grad.Data()
	normData := l.lastNorm.Data()
	outData := out.Data()
	gamma := l.gamma.Data().Data()
	gammaGrad := l.gamma.Grad().Data()
	betaGrad := l.beta.Grad().Data()

	dxhat := make([]float64, l.dim)
	for r := 0; r < rows; r++ {
		off := r * l.dim

		meanDxhat := 0.0
		meanDxhatNorm := 0.0
		for j := 0; j < l.dim; j++ {
			dy := g[off+j]
			xhat := normData[off+j]
			gammaGrad[j] += dy * xhat
			betaGrad[j] += dy

			d := dy * gamma[j]
			dxhat[j] = d
			meanDxhat += d
			meanDxhatNorm += d * xhat
		}
		meanDxhat /= float64(l.dim)
		meanDxhatNorm /= float64(l.dim)

		inv := l.lastInvStd[r]
		for j := 0; j < l.dim; j++ {
			outData[off+j] = inv * (dxhat[j] - meanDxhat - normData[off+j]*meanDxhatNorm)
		}
	}
	return out
}

// Parameters returns [gamma, beta].
func (l *LayerNorm) Parameters() []*Parameter {
	return []*Parameter{l.gamma, l.beta}
}
