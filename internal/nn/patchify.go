package nn

import (
	"fmt"

	"github.com/sift-ml/sift/internal/tensor"
)

// Patchify splits a batch of square images into a row-major grid of
// flattened patches.
//
// Input shape: [N, C, H, W] with H == W and H divisible by nPatches.
// Output shape: [N, nPatches², C·(H/nPatches)²].
//
// Grid cell (i, j) is stored at sequence position i·nPatches + j. Each
// patch is flattened channel-major, then row-major, then column-major,
// so Unpatchify can rebuild the image exactly.
func Patchify(images *tensor.Tensor, nPatches int) *tensor.Tensor {
	shape := images.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("Patchify: expected 4D input [N, C, H, W], got shape %v", shape))
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	if h != w {
		panic(fmt.Sprintf("Patchify: images must be square, got %dx%d", h, w))
	}
	if nPatches <= 0 || h%nPatches != 0 {
		panic(fmt.Sprintf("Patchify: image size %d is not divisible by nPatches %d", h, nPatches))
	}

	size := h / nPatches // patch side length
	patchLen := c * size * size
	out := tensor.New(tensor.Shape{n, nPatches * nPatches, patchLen})

	in := images.Data()
	data := out.Data()
	for idx := 0; idx < n; idx++ {
		imgOff := idx * c * h * w
		for i := 0; i < nPatches; i++ {
			for j := 0; j < nPatches; j++ {
				patchOff := (idx*nPatches*nPatches + i*nPatches + j) * patchLen
				pos := 0
				for ch := 0; ch < c; ch++ {
					chanOff := imgOff + ch*h*w
					for r := i * size; r < (i+1)*size; r++ {
						rowOff := chanOff + r*w + j*size
						copy(data[patchOff+pos:patchOff+pos+size], in[rowOff:rowOff+size])
						pos += size
					}
				}
			}
		}
	}
	return out
}

// Unpatchify is the inverse of Patchify: it reassembles a patch tensor
// of shape [N, nPatches², C·size²] into images of shape
// [N, C, size·nPatches, size·nPatches].
func Unpatchify(patches *tensor.Tensor, nPatches, channels, size int) *tensor.Tensor {
	shape := patches.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("Unpatchify: expected 3D input [N, patches, pixels], got shape %v", shape))
	}
	n := shape[0]
	patchLen := channels * size * size
	if shape[1] != nPatches*nPatches || shape[2] != patchLen {
		panic(fmt.Sprintf("Unpatchify: patch tensor %v does not match nPatches=%d, channels=%d, size=%d",
			shape, nPatches, channels, size))
	}

	h := size * nPatches
	out := tensor.New(tensor.Shape{n, channels, h, h})

	in := patches.Data()
	data := out.Data()
	for idx := 0; idx < n; idx++ {
		imgOff := idx * channels * h * h
		for i := 0; i < nPatches; i++ {
			for j := 0; j < nPatches; j++ {
				patchOff := (idx*nPatches*nPatches + i*nPatches + j) * patchLen
				pos := 0
				for ch := 0; ch < channels; ch++ {
					chanOff := imgOff + ch*h*h
					for r := i * size; r < (i+1)*size; r++ {
						rowOff := chanOff + r*h + j*size
						copy(data[rowOff:rowOff+size], in[patchOff+pos:patchOff+pos+size])
						pos += size
					}
				}
			}
		}
	}
	return out
}
