// Package trainer implements the training and inference harness for
// the sift classifiers.
//
// The trainer is the interface between flat (N, D) feature rows and
// the classifiers: it reshapes batches according to each classifier's
// declared input layout, drives the forward/backward passes, and
// applies SGD updates.
package trainer

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/sift-ml/sift/internal/classifier"
	"github.com/sift-ml/sift/internal/nn"
	"github.com/sift-ml/sift/internal/optim"
	"github.com/sift-ml/sift/internal/tensor"
)

// Config holds the training hyperparameters.
type Config struct {
	LR        float64 // learning rate (default 0.01)
	Momentum  float64 // SGD momentum (default 0)
	Epochs    int     // training epochs (default 10)
	BatchSize int     // samples per batch (default 64)

	// LogEvery is the number of batches between running-loss log
	// lines; 0 disables loss logging.
	LogEvery int
	Logger   *log.Logger // destination for loss logs (default log.Default())

	// Channels is the channel count assumed when reshaping flat rows
	// for image-layout classifiers (default 1).
	Channels int
}

// Trainer trains a classifier and runs batched inference.
type Trainer struct {
	model     classifier.Classifier
	criterion *nn.CrossEntropyLoss
	optimizer *optim.SGD
	config    Config
}

// New creates a Trainer for the given model.
func New(model classifier.Classifier, config Config) *Trainer {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Epochs == 0 {
		config.Epochs = 10
	}
	if config.BatchSize == 0 {
		config.BatchSize = 64
	}
	if config.Channels == 0 {
		config.Channels = 1
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	return &Trainer{
		model:     model,
		criterion: nn.NewCrossEntropyLoss(),
		optimizer: optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: config.LR, Momentum: config.Momentum}),
		config:    config,
	}
}

// Fit trains the model on flat (N, D) feature rows with integer labels
// and returns the model's predictions on the training data.
func (t *Trainer) Fit(data *tensor.Tensor, labels []int) ([]int, error) {
	shape := data.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("trainer: expected 2D training data [N, D], got shape %v", shape)
	}
	n := shape[0]
	if len(labels) != n {
		return nil, fmt.Errorf("trainer: %d labels for %d samples", len(labels), n)
	}
	for i, label := range labels {
		if label < 0 || label >= t.model.NumClasses() {
			return nil, fmt.Errorf("trainer: label %d at index %d out of range [0, %d)", label, i, t.model.NumClasses())
		}
	}
	if _, err := t.batchShape(shape[1]); err != nil {
		return nil, err
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		rand.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		t.trainEpoch(data, labels, indices, epoch)
	}

	return t.Predict(data)
}

// trainEpoch runs one pass over the shuffled training set.
func (t *Trainer) trainEpoch(data *tensor.Tensor, labels []int, indices []int, epoch int) {
	n := data.Shape()[0]
	dim := data.Shape()[1]

	runningLoss := 0.0
	for start, batchIdx := 0, 0; start < n; start, batchIdx = start+t.config.BatchSize, batchIdx+1 {
		end := min(start+t.config.BatchSize, n)
		batch, batchLabels := t.gatherBatch(data, labels, indices[start:end], dim)

		t.optimizer.ZeroGrad()
		scores := t.model.Forward(batch)
		loss := t.criterion.Forward(scores, batchLabels)
		t.model.Backward(t.criterion.Backward())
		t.optimizer.Step()

		runningLoss += loss
		if t.config.LogEvery > 0 && (batchIdx+1)%t.config.LogEvery == 0 {
			t.config.Logger.Printf("[epoch %d, batch %d] average loss: %.6f",
				epoch+1, batchIdx+1, runningLoss/float64(t.config.LogEvery))
			runningLoss = 0
		}
	}
}

// Predict runs batched inference on flat (N, D) feature rows and
// returns the argmax class label per row.
func (t *Trainer) Predict(data *tensor.Tensor) ([]int, error) {
	shape := data.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("trainer: expected 2D data [N, D], got shape %v", shape)
	}
	n, dim := shape[0], shape[1]
	if _, err := t.batchShape(dim); err != nil {
		return nil, err
	}

	labels := make([]int, 0, n)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for start := 0; start < n; start += t.config.BatchSize {
		end := min(start+t.config.BatchSize, n)
		batch, _ := t.gatherBatch(data, nil, indices[start:end], dim)

		scores := t.model.Forward(batch)
		classes := scores.Shape()[1]
		scoreData := scores.Data()
		for i := 0; i < end-start; i++ {
			row := scoreData[i*classes : (i+1)*classes]
			best := 0
			for j, v := range row {
				if v > row[best] {
					best = j
				}
			}
			labels = append(labels, best)
		}
	}
	return labels, nil
}

// gatherBatch copies the selected rows into a batch tensor shaped for
// the model's declared input layout.
func (t *Trainer) gatherBatch(data *tensor.Tensor, labels []int, rows []int, dim int) (*tensor.Tensor, []int) {
	batch := tensor.New(tensor.Shape{len(rows), dim})
	batchData := batch.Data()
	src := data.Data()
	var batchLabels []int
	for i, row := range rows {
		copy(batchData[i*dim:(i+1)*dim], src[row*dim:(row+1)*dim])
		if labels != nil {
			batchLabels = append(batchLabels, labels[row])
		}
	}

	if t.model.InputLayout() == classifier.LayoutImage {
		side, _ := t.batchShape(dim) // validated by the callers
		batch = batch.Reshape(len(rows), t.config.Channels, side, side)
	}
	return batch, batchLabels
}

// batchShape validates that flat rows of width dim can be reshaped for
// the model's layout and returns the spatial side length for images.
func (t *Trainer) batchShape(dim int) (int, error) {
	if t.model.InputLayout() == classifier.LayoutFlat {
		return 0, nil
	}
	pixels := dim / t.config.Channels
	side := int(math.Sqrt(float64(pixels)))
	if side*side*t.config.Channels != dim {
		return 0, fmt.Errorf("trainer: %d features do not form square %d-channel images", dim, t.config.Channels)
	}
	if sized, ok := t.model.(classifier.ImageSized); ok && side != sized.ImageSize() {
		return 0, fmt.Errorf("trainer: %d features form %dx%d images, model expects %dx%d",
			dim, side, side, sized.ImageSize(), sized.ImageSize())
	}
	return side, nil
}
