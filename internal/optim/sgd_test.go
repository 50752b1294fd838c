package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sift-ml/sift/internal/nn"
	"github.com/sift-ml/sift/internal/tensor"
)

func newParam(t *testing.T, values, grads []float64) *nn.Parameter {
	t.Helper()
	data, err := tensor.FromSlice(values, tensor.Shape{len(values)})
	require.NoError(t, err)
	p := nn.NewParameter("weight", data)
	copy(p.Grad().Data(), grads)
	return p
}

func TestSGDVanillaStep(t *testing.T) {
	p := newParam(t, []float64{1, 2, 3}, []float64{0.5, -1, 0})
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	opt.Step()
	assert.InDelta(t, 0.95, p.Data().At(0), 1e-12)
	assert.InDelta(t, 2.1, p.Data().At(1), 1e-12)
	assert.InDelta(t, 3.0, p.Data().At(2), 1e-12)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	p := newParam(t, []float64{0}, []float64{1})
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: v = 1, param = -0.1.
	opt.Step()
	assert.InDelta(t, -0.1, p.Data().At(0), 1e-12)

	// Step 2 with the same gradient: v = 0.9 + 1 = 1.9, param = -0.29.
	opt.Step()
	assert.InDelta(t, -0.29, p.Data().At(0), 1e-12)
}

func TestSGDDefaultsAndLR(t *testing.T) {
	opt := NewSGD(nil, SGDConfig{})
	assert.InDelta(t, 0.01, opt.GetLR(), 1e-12)

	opt.SetLR(0.5)
	assert.InDelta(t, 0.5, opt.GetLR(), 1e-12)
}

func TestSGDZeroGrad(t *testing.T) {
	p := newParam(t, []float64{1, 2}, []float64{3, 4})
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	opt.ZeroGrad()
	assert.Equal(t, []float64{0, 0}, p.Grad().Data())
}
