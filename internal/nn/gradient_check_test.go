package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sift-ml/sift/internal/tensor"
)

// weightedSum reduces a forward output to a scalar with fixed,
// non-uniform coefficients so that layers with normalized outputs
// (softmax rows sum to one) still produce informative gradients.
func weightedSum(t *tensor.Tensor) float64 {
	sum := 0.0
	for i, v := range t.Data() {
		sum += coeff(i) * v
	}
	return sum
}

func coeff(i int) float64 {
	return math.Sin(float64(i) + 3)
}

// checkGradients verifies a module's analytic gradients against
// central finite differences of the scalar loss
// L = sum_i coeff(i) * Forward(input)_i, for every parameter element
// and every input element.
func checkGradients(t *testing.T, m Module, input *tensor.Tensor, tol float64) {
	t.Helper()

	loss := func() float64 { return weightedSum(m.Forward(input)) }

	out := m.Forward(input)
	grad := tensor.New(out.Shape())
	for i := range grad.Data() {
		grad.Data()[i] = coeff(i)
	}
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
	dInput := m.Backward(grad)

	const eps = 1e-5
	for _, p := range m.Parameters() {
		analytic := append([]float64(nil), p.Grad().Data()...)
		data := p.Data().Data()
		for i := range data {
			num := centralDiff(loss, data, i, eps)
			if !closeEnough(analytic[i], num, tol) {
				t.Fatalf("parameter %s[%d]: analytic gradient %v, numeric %v", p.Name(), i, analytic[i], num)
			}
		}
	}

	analytic := append([]float64(nil), dInput.Data()...)
	data := input.Data()
	for i := range data {
		num := centralDiff(loss, data, i, eps)
		if !closeEnough(analytic[i], num, tol) {
			t.Fatalf("input[%d]: analytic gradient %v, numeric %v", i, analytic[i], num)
		}
	}
}

func centralDiff(loss func() float64, data []float64, i int, eps float64) float64 {
	orig := data[i]
	data[i] = orig + eps
	plus := loss()
	data[i] = orig - eps
	minus := loss()
	data[i] = orig
	return (plus - minus) / (2 * eps)
}

func closeEnough(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*(1+math.Abs(a)+math.Abs(b))
}

// patterned fills a tensor with a smooth, deterministic pattern that
// keeps values away from ReLU's kink at zero.
func patterned(shape tensor.Shape) *tensor.Tensor {
	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		data[i] = math.Cos(0.7*float64(i) + 0.3)
	}
	return t
}

func TestGradientsLinear(t *testing.T) {
	checkGradients(t, NewLinear(3, 2), patterned(tensor.Shape{4, 3}), 1e-6)
}

func TestGradientsReLU(t *testing.T) {
	checkGradients(t, NewReLU(), patterned(tensor.Shape{2, 5}), 1e-6)
}

func TestGradientsGELU(t *testing.T) {
	checkGradients(t, NewGELU(), patterned(tensor.Shape{2, 5}), 1e-6)
}

func TestGradientsSoftmax(t *testing.T) {
	checkGradients(t, NewSoftmax(), patterned(tensor.Shape{3, 4}), 1e-6)
}

func TestGradientsLayerNorm(t *testing.T) {
	checkGradients(t, NewLayerNorm(4, LayerNormEpsilon), patterned(tensor.Shape{3, 4}), 1e-5)
}

func TestGradientsLayerNorm3D(t *testing.T) {
	checkGradients(t, NewLayerNorm(4, LayerNormEpsilon), patterned(tensor.Shape{2, 3, 4}), 1e-5)
}

func TestGradientsMultiHeadSelfAttention(t *testing.T) {
	checkGradients(t, NewMultiHeadSelfAttention(4, 2), patterned(tensor.Shape{2, 3, 4}), 1e-5)
}

func TestGradientsTransformerBlock(t *testing.T) {
	checkGradients(t, NewTransformerBlock(4, 2, 2), patterned(tensor.Shape{2, 3, 4}), 1e-5)
}

func TestGradientsConv2D(t *testing.T) {
	checkGradients(t, NewConv2D(2, 3, 3, 1, 1), patterned(tensor.Shape{2, 2, 5, 5}), 1e-6)
}

func TestGradientsMaxPool2D(t *testing.T) {
	checkGradients(t, NewMaxPool2D(2, 2), patterned(tensor.Shape{2, 2, 4, 4}), 1e-6)
}

func TestGradientsSequentialMLP(t *testing.T) {
	model := NewSequential(
		NewLinear(6, 5),
		NewReLU(),
		NewLinear(5, 3),
	)
	// Deterministic weights keep the hidden pre-activations away from
	// ReLU's kink, where finite differences are unreliable.
	for _, p := range model.Parameters() {
		data := p.Data().Data()
		for i := range data {
			data[i] = 0.3 * math.Sin(1.3*float64(i)+0.5)
		}
	}
	checkGradients(t, model, patterned(tensor.Shape{4, 6}), 1e-6)
}

func TestGradientsCrossEntropy(t *testing.T) {
	criterion := NewCrossEntropyLoss()
	scores := patterned(tensor.Shape{3, 4})
	targets := []int{1, 3, 0}

	criterion.Forward(scores, targets)
	analytic := criterion.Backward()

	const eps = 1e-5
	loss := func() float64 { return criterion.Forward(scores, targets) }
	data := scores.Data()
	for i := range data {
		num := centralDiff(loss, data, i, eps)
		assert.InDelta(t, analytic.Data()[i], num, 1e-8, "scores[%d]", i)
	}
}
