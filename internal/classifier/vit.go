package classifier

import (
	"fmt"

	"github.com/sift-ml/sift/internal/nn"
	"github.com/sift-ml/sift/internal/tensor"
)

// ViT is a vision transformer classifier.
//
// Pipeline: patchify -> linear embedding to hiddenDim -> prepend a
// learned classification token -> add the fixed sinusoidal positional
// table -> numBlocks transformer blocks -> classification head on the
// transformed class token.
//
// Unlike the MLP and CNN, Forward returns post-softmax probabilities
// rather than logits. The asymmetry is deliberate and callers (the
// trainer in particular) must not re-normalize.
type ViT struct {
	channels   int
	imageSize  int
	nPatches   int
	patchSize  int
	hiddenDim  int
	numClasses int

	embed      *nn.Linear    // patch pixels -> hiddenDim
	classToken *nn.Parameter // [hiddenDim]
	positional *tensor.Tensor
	blocks     []*nn.TransformerBlock
	head       *nn.Sequential // Linear(hiddenDim, classes) + Softmax

	lastBatch int
}

// ViTConfig collects the vision-transformer hyperparameters.
type ViTConfig struct {
	Channels   int // input image channels
	ImageSize  int // spatial size (images are square)
	NumPatches int // patches per side
	NumBlocks  int // transformer depth
	HiddenDim  int // token embedding dimension
	NumHeads   int // attention heads per block
	NumClasses int // output classes
	MLPRatio   int // feed-forward expansion factor (default 4)
}

// NewViT creates a vision transformer.
//
// Panics if the image size is not divisible by NumPatches or the
// hidden dimension is not divisible by NumHeads.
func NewViT(cfg ViTConfig) *ViT {
	if cfg.NumPatches <= 0 || cfg.ImageSize%cfg.NumPatches != 0 {
		panic(fmt.Sprintf("NewViT: image size %d is not divisible by %d patches", cfg.ImageSize, cfg.NumPatches))
	}
	if cfg.NumHeads <= 0 || cfg.HiddenDim%cfg.NumHeads != 0 {
		panic(fmt.Sprintf("NewViT: hidden dimension %d is not divisible by %d heads", cfg.HiddenDim, cfg.NumHeads))
	}
	if cfg.MLPRatio == 0 {
		cfg.MLPRatio = 4
	}

	patchSize := cfg.ImageSize / cfg.NumPatches
	inputDim := cfg.Channels * patchSize * patchSize
	seqLen := cfg.NumPatches*cfg.NumPatches + 1

	blocks := make([]*nn.TransformerBlock, cfg.NumBlocks)
	for i := range blocks {
		blocks[i] = nn.NewTransformerBlock(cfg.HiddenDim, cfg.NumHeads, cfg.MLPRatio)
	}

	return &ViT{
		channels:   cfg.Channels,
		imageSize:  cfg.ImageSize,
		nPatches:   cfg.NumPatches,
		patchSize:  patchSize,
		hiddenDim:  cfg.HiddenDim,
		numClasses: cfg.NumClasses,
		embed:      nn.NewLinear(inputDim, cfg.HiddenDim),
		classToken: nn.NewParameter("class_token", tensor.Rand(tensor.Shape{cfg.HiddenDim})),
		positional: nn.SinusoidalTable(seqLen, cfg.HiddenDim),
		blocks:     blocks,
		head: nn.NewSequential(
			nn.NewLinear(cfg.HiddenDim, cfg.NumClasses),
			nn.NewSoftmax(),
		),
	}
}

// Forward maps [N, C, H, W] images to [N, classes] probabilities.
func (v *ViT) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 || shape[1] != v.channels || shape[2] != v.imageSize || shape[3] != v.imageSize {
		panic(fmt.Sprintf("ViT.Forward: expected input [N, %d, %d, %d], got shape %v",
			v.channels, v.imageSize, v.imageSize, shape))
	}
	batch := shape[0]
	v.lastBatch = batch

	numPatches := v.nPatches * v.nPatches
	seqLen := numPatches + 1

	patches := nn.Patchify(input, v.nPatches)
	tokens := v.embed.Forward(patches.Reshape(batch*numPatches, v.embed.InFeatures()))

	// Prepend the class token and add the positional table.
	seq := tensor.New(tensor.Shape{batch, seqLen, v.hiddenDim})
	seqData := seq.Data()
	tokenData := tokens.Data()
	clsData := v.classToken.Data().Data()
	posData := v.positional.Data()
	for n := 0; n < batch; n++ {
		base := n * seqLen * v.hiddenDim
		copy(seqData[base:base+v.hiddenDim], clsData)
		copy(seqData[base+v.hiddenDim:base+seqLen*v.hiddenDim],
			tokenData[n*numPatches*v.hiddenDim:(n+1)*numPatches*v.hiddenDim])
		for i := 0; i < seqLen*v.hiddenDim; i++ {
			seqData[base+i] += posData[i]
		}
	}

	out := seq
	for _, block := range v.blocks {
		out = block.Forward(out)
	}

	// Classify on the transformed class token only.
	cls := tensor.New(tensor.Shape{batch, v.hiddenDim})
	clsOut := cls.Data()
	outData := out.Data()
	for n := 0; n < batch; n++ {
		copy(clsOut[n*v.hiddenDim:(n+1)*v.hiddenDim], outData[n*seqLen*v.hiddenDim:n*seqLen*v.hiddenDim+v.hiddenDim])
	}
	return v.head.Forward(cls)
}

// Backward propagates the probability gradient back to the image
// gradient, accumulating all parameter gradients on the way.
func (v *ViT) Backward(grad *tensor.Tensor) *tensor.Tensor {
	batch := v.lastBatch
	numPatches := v.nPatches * v.nPatches
	seqLen := numPatches + 1

	dCls := v.head.Backward(grad)

	// Only sequence position 0 feeds the head; the rest get zero
	// gradient from above.
	dSeq := tensor.New(tensor.Shape{batch, seqLen, v.hiddenDim})
	dSeqData := dSeq.Data()
	dClsData := dCls.Data()
	for n := 0; n < batch; n++ {
		copy(dSeqData[n*seqLen*v.hiddenDim:n*seqLen*v.hiddenDim+v.hiddenDim],
			dClsData[n*v.hiddenDim:(n+1)*v.hiddenDim])
	}

	for i := len(v.blocks) - 1; i >= 0; i-- {
		dSeq = v.blocks[i].Backward(dSeq)
	}

	// The positional table is fixed, so the addition passes gradients
	// through unchanged. Split the sequence gradient back into the
	// class token and the embedded patches.
	dSeqData = dSeq.Data()
	clsGrad := v.classToken.Grad().Data()
	dTokens := tensor.New(tensor.Shape{batch * numPatches, v.hiddenDim})
	dTokenData := dTokens.Data()
	for n := 0; n < batch; n++ {
		base := n * seqLen * v.hiddenDim
		for j := 0; j < v.hiddenDim; j++ {
			clsGrad[j] += dSeqData[base+j]
		}
		copy(dTokenData[n*numPatches*v.hiddenDim:(n+1)*numPatches*v.hiddenDim],
			dSeqData[base+v.hiddenDim:base+seqLen*v.hiddenDim])
	}

	dPatches := v.embed.Backward(dTokens)
	return nn.Unpatchify(dPatches.Reshape(batch, numPatches, v.embed.InFeatures()), v.nPatches, v.channels, v.patchSize)
}

// Parameters returns the embedding, class token, every block's
// parameters, and the classification head.
func (v *ViT) Parameters() []*nn.Parameter {
	params := v.embed.Parameters()
	params = append(params, v.classToken)
	for _, block := range v.blocks {
		params = append(params, block.Parameters()...)
	}
	return append(params, v.head.Parameters()...)
}

// InputLayout reports that the ViT consumes channel-major images.
func (v *ViT) InputLayout() InputLayout {
	return LayoutImage
}

// ImageSize returns the expected spatial input size.
func (v *ViT) ImageSize() int {
	return v.imageSize
}

// NumClasses returns the number of output classes.
func (v *ViT) NumClasses() int {
	return v.numClasses
}

// PositionalTable exposes the fixed sinusoidal table (for inspection
// and tests); it carries no trainable state.
func (v *ViT) PositionalTable() *tensor.Tensor {
	return v.positional
}
