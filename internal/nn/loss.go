package nn

import (
	"fmt"
	"math"

	"github.com/sift-ml/sift/internal/tensor"
)

// CrossEntropyLoss computes the mean cross-entropy between per-class
// scores and integer target labels.
//
// Forward expects raw scores of shape [N, classes]; the softmax is
// folded into the loss via the log-sum-exp trick for numerical
// stability. Backward returns the classic gradient
//
//	(softmax(scores) - one_hot(targets)) / N
//
// Like its PyTorch counterpart, the criterion does not care whether
// the scores were already normalized; feeding it probabilities simply
// treats them as scores.
type CrossEntropyLoss struct {
	lastScores  *tensor.Tensor
	lastTargets []int
}

// NewCrossEntropyLoss creates a cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward returns the mean cross-entropy loss over the batch.
//
// scores: [N, classes]; targets: N class indices in [0, classes).
func (c *CrossEntropyLoss) Forward(scores *tensor.Tensor, targets []int) float64 {
	shape := scores.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("CrossEntropyLoss.Forward: expected 2D scores [N, classes], got shape %v", shape))
	}
	n, classes := shape[0], shape[1]
	if len(targets) != n {
		panic(fmt.Sprintf("CrossEntropyLoss.Forward: %d targets for batch of %d", len(targets), n))
	}

	data := scores.Data()
	total := 0.0
	for i, target := range targets {
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("CrossEntropyLoss.Forward: target %d out of range [0, %d)", target, classes))
		}
		row := data[i*classes : (i+1)*classes]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		sumExp := 0.0
		for _, v := range row {
			sumExp += math.Exp(v - maxVal)
		}
		// log(softmax(x)_t) = x_t - max - log(sum(exp(x - max)))
		total -= row[target] - maxVal - math.Log(sumExp)
	}

	c.lastScores = scores
	c.lastTargets = targets
	return total / float64(n)
}

// Backward returns dL/dscores = (softmax(scores) - one_hot) / N.
func (c *CrossEntropyLoss) Backward() *tensor.Tensor {
	if c.lastScores == nil {
		panic("CrossEntropyLoss.Backward: called before Forward")
	}
	shape := c.lastScores.Shape()
	n, classes := shape[0], shape[1]

	grad := c.lastScores.Clone()
	data := grad.Data()
	softmaxRows(data, n, classes)
	for i, target := range c.lastTargets {
		data[i*classes+target] -= 1
	}
	for i := range data {
		data[i] /= float64(n)
	}
	return grad
}
