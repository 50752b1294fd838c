package trainer

import (
	"bytes"
	"log"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sift-ml/sift/internal/classifier"
	"github.com/sift-ml/sift/internal/nn"
	"github.com/sift-ml/sift/internal/tensor"
)

// twoBlobs builds a linearly separable dataset: class 0 clusters around
// -1 in every feature, class 1 around +1.
func twoBlobs(n, dim int, rng *rand.Rand) (*tensor.Tensor, []int) {
	data := tensor.New(tensor.Shape{n, dim})
	labels := make([]int, n)
	raw := data.Data()
	for i := 0; i < n; i++ {
		center := -1.0
		if i%2 == 1 {
			labels[i] = 1
			center = 1.0
		}
		for j := 0; j < dim; j++ {
			raw[i*dim+j] = center + rng.NormFloat64()*0.2
		}
	}
	return data, labels
}

func meanLoss(model classifier.Classifier, data *tensor.Tensor, labels []int) float64 {
	criterion := nn.NewCrossEntropyLoss()
	return criterion.Forward(model.Forward(data), labels)
}

func TestFitLearnsSeparableBlobs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data, labels := twoBlobs(80, 4, rng)

	model := classifier.NewMLP(4, 2)
	before := meanLoss(model, data, labels)

	tr := New(model, Config{LR: 0.1, Epochs: 30, BatchSize: 8})
	preds, err := tr.Fit(data, labels)
	require.NoError(t, err)
	require.Len(t, preds, 80)

	after := meanLoss(model, data, labels)
	assert.Less(t, after, before, "training must reduce the loss")

	correct := 0
	for i, p := range preds {
		if p == labels[i] {
			correct++
		}
	}
	assert.GreaterOrEqual(t, correct, 72, "expected at least 90%% training accuracy, got %d/80", correct)
}

func TestFitUpdatesParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data, labels := twoBlobs(16, 4, rng)

	model := classifier.NewMLP(4, 2)
	before := make([][]float64, 0)
	for _, p := range model.Parameters() {
		before = append(before, append([]float64(nil), p.Data().Data()...))
	}

	tr := New(model, Config{Epochs: 1, BatchSize: 4})
	_, err := tr.Fit(data, labels)
	require.NoError(t, err)

	changed := false
	for i, p := range model.Parameters() {
		for j, v := range p.Data().Data() {
			if v != before[i][j] {
				changed = true
			}
		}
	}
	assert.True(t, changed, "at least one parameter must move")
}

func TestFitValidation(t *testing.T) {
	model := classifier.NewMLP(4, 2)
	tr := New(model, Config{Epochs: 1})

	_, err := tr.Fit(tensor.Zeros(tensor.Shape{8}), []int{0})
	assert.Error(t, err, "non-2D data")

	_, err = tr.Fit(tensor.Zeros(tensor.Shape{4, 4}), []int{0, 1})
	assert.Error(t, err, "label count mismatch")

	_, err = tr.Fit(tensor.Zeros(tensor.Shape{2, 4}), []int{0, 2})
	assert.Error(t, err, "label out of range")

	_, err = tr.Fit(tensor.Zeros(tensor.Shape{2, 4}), []int{0, -1})
	assert.Error(t, err, "negative label")
}

func TestImageLayoutReshaping(t *testing.T) {
	model := classifier.NewViT(classifier.ViTConfig{
		Channels:   1,
		ImageSize:  4,
		NumPatches: 2,
		NumBlocks:  1,
		HiddenDim:  4,
		NumHeads:   2,
		NumClasses: 2,
	})
	tr := New(model, Config{Epochs: 1, BatchSize: 4})

	// 16 flat features form a 4x4 single-channel image.
	data := tensor.Randn(tensor.Shape{6, 16})
	preds, err := tr.Predict(data)
	require.NoError(t, err)
	assert.Len(t, preds, 6)
	for _, p := range preds {
		assert.GreaterOrEqual(t, p, 0)
		assert.Less(t, p, 2)
	}

	// 15 features cannot form a square image.
	_, err = tr.Predict(tensor.Randn(tensor.Shape{6, 15}))
	assert.Error(t, err)

	// 25 features form square 5x5 images, but the model expects 4x4;
	// the trainer must fail with an error, not panic inside the model.
	_, err = tr.Predict(tensor.Randn(tensor.Shape{6, 25}))
	assert.Error(t, err)
	_, err = tr.Fit(tensor.Randn(tensor.Shape{6, 25}), []int{0, 1, 0, 1, 0, 1})
	assert.Error(t, err)
}

func TestPredictBatchesCoverAllRows(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	data, _ := twoBlobs(10, 4, rng)

	tr := New(classifier.NewMLP(4, 2), Config{BatchSize: 3})
	preds, err := tr.Predict(data)
	require.NoError(t, err)
	assert.Len(t, preds, 10)
}

func TestLossLogging(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	data, labels := twoBlobs(32, 4, rng)

	var buf bytes.Buffer
	tr := New(classifier.NewMLP(4, 2), Config{
		Epochs:    1,
		BatchSize: 8,
		LogEvery:  2,
		Logger:    log.New(&buf, "", 0),
	})
	_, err := tr.Fit(data, labels)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "average loss:")
	assert.Contains(t, buf.String(), "[epoch 1, batch 2]")
}

func TestLoggingDisabledByDefault(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	data, labels := twoBlobs(16, 4, rng)

	var buf bytes.Buffer
	tr := New(classifier.NewMLP(4, 2), Config{
		Epochs:    1,
		BatchSize: 4,
		Logger:    log.New(&buf, "", 0),
	})
	_, err := tr.Fit(data, labels)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
