package nn

import (
	"fmt"

	"github.com/sift-ml/sift/internal/tensor"
)

// Conv2D is a 2D convolutional layer with zero padding.
//
// Input shape:  [N, in_channels, H, W]
// Weight shape: [out_channels, in_channels, k, k]
// Bias shape:   [out_channels]
// Output shape: [N, out_channels, out_h, out_w]
//
// where out_h = (H + 2*padding - k)/stride + 1 and likewise for out_w.
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     int

	weight *Parameter // [out_channels, in_channels, k, k]
	bias   *Parameter // [out_channels]

	lastInput *tensor.Tensor
}

// NewConv2D creates a convolutional layer with Xavier-initialized
// filters and zero biases.
func NewConv2D(inChannels, outChannels, kernelSize, stride, padding int) *Conv2D {
	fan := inChannels * kernelSize * kernelSize
	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		weight: NewParameter("weight",
			Xavier(fan, outChannels*kernelSize*kernelSize, tensor.Shape{outChannels, inChannels, kernelSize, kernelSize})),
		bias: NewParameter("bias", tensor.Zeros(tensor.Shape{outChannels})),
	}
}

// OutputSize returns the spatial output size for a given input size.
func (c *Conv2D) OutputSize(in int) int {
	return (in+2*c.padding-c.kernelSize)/c.stride + 1
}

// Forward applies the convolution to a batch of images.
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 || shape[1] != c.inChannels {
		panic(fmt.Sprintf("Conv2D.Forward: expected input [N, %d, H, W], got shape %v", c.inChannels, shape))
	}
	c.lastInput = input

	n, h, w := shape[0], shape[2], shape[3]
	oh, ow := c.OutputSize(h), c.OutputSize(w)
	out := tensor.New(tensor.Shape{n, c.outChannels, oh, ow})

	in := input.Data()
	data := out.Data()
	wData := c.weight.Data().Data()
	bData := c.bias.Data().Data()
	k := c.kernelSize

	for idx := 0; idx < n; idx++ {
		for oc := 0; oc < c.outChannels; oc++ {
			for y := 0; y < oh; y++ {
				for x := 0; x < ow; x++ {
					sum := bData[oc]
					for ic := 0; ic < c.inChannels; ic++ {
						for ky := 0; ky < k; ky++ {
							iy := y*c.stride - c.padding + ky
							if iy < 0 || iy >= h {
								continue
							}
							for kx := 0; kx < k; kx++ {
								ix := x*c.stride - c.padding + kx
								if ix < 0 || ix >= w {
									continue
								}
								sum += in[((idx*c.inChannels+ic)*h+iy)*w+ix] *
									wData[((oc*c.inChannels+ic)*k+ky)*k+kx]
							}
						}
					}
					data[((idx*c.outChannels+oc)*oh+y)*ow+x] = sum
				}
			}
		}
	}
	return out
}

// Backward accumulates filter and bias gradients and returns the input
// gradient.
func (c *Conv2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if c.lastInput == nil {
		panic("Conv2D.Backward: called before Forward")
	}
	inShape := c.lastInput.Shape()
	n, h, w := inShape[0], inShape[2], inShape[3]
	oh, ow := c.OutputSize(h), c.OutputSize(w)

	dIn := tensor.New(inShape)
	in := c.lastInput.Data()
	g := grad.Data()
	wData := c.weight.Data().Data()
	dwData := c.weight.Grad().Data()
	dbData := c.bias.Grad().Data()
	dInData := dIn.Data()
	k := c.kernelSize

	for idx := 0; idx < n; idx++ {
		for oc := 0; oc < c.outChannels; oc++ {
			for y := 0; y < oh; y++ {
				for x := 0; x < ow; x++ {
					gv := g[((idx*c.outChannels+oc)*oh+y)*ow+x]
					dbData[oc] += gv
					for ic := 0; ic < c.inChannels; ic++ {
						for ky := 0; ky < k; ky++ {
							iy := y*c.stride - c.padding + ky
							if iy < 0 || iy >= h {
								continue
							}
							for kx := 0; kx < k; kx++ {
								ix := x*c.stride - c.padding + kx
								if ix < 0 || ix >= w {
									continue
								}
								inIdx := ((idx*c.inChannels+ic)*h+iy)*w + ix
								wIdx := ((oc*c.inChannels+ic)*k+ky)*k + kx
								dwData[wIdx] += gv * in[inIdx]
								dInData[inIdx] += gv * wData[wIdx]
							}
						}
					}
				}
			}
		}
	}
	return dIn
}

// Parameters returns [weight, bias].
func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}
