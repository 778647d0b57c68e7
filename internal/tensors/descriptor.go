// Package tensors provides strided tensor descriptors and asynchronous copy
// utilities over them. Copies are submitted to device streams so they order
// with kernel launches the way device-side memcpys do.
package tensors

import (
	"github.com/pkg/errors"
)

// Descriptor describes a strided tensor: per-dimension logical sizes,
// per-dimension strides in elements, and the element width in bytes.
type Descriptor struct {
	sizes     []int
	strides   []int
	elemBytes int
}

// NewDescriptor builds a descriptor. Strides may be nil for a densely packed
// layout; otherwise one stride per dimension is required.
func NewDescriptor(elemBytes int, sizes []int, strides []int) (Descriptor, error) {
	if elemBytes <= 0 {
		return Descriptor{}, errors.Errorf("tensors: invalid element size %d", elemBytes)
	}
	for _, s := range sizes {
		if s < 0 {
			return Descriptor{}, errors.Errorf("tensors: negative dimension size %d", s)
		}
	}
	if strides == nil {
		strides = make([]int, len(sizes))
		stride := 1
		for i, s := range sizes {
			strides[i] = stride
			stride *= s
		}
	}
	if len(strides) != len(sizes) {
		return Descriptor{}, errors.Errorf(
			"tensors: %d strides for %d dimensions", len(strides), len(sizes))
	}
	return Descriptor{
		sizes:     append([]int(nil), sizes...),
		strides:   append([]int(nil), strides...),
		elemBytes: elemBytes,
	}, nil
}

// Dimensions returns the tensor rank.
func (d Descriptor) Dimensions() int { return len(d.sizes) }

// Sizes returns the per-dimension logical sizes.
func (d Descriptor) Sizes() []int { return d.sizes }

// Strides returns the per-dimension strides, in elements.
func (d Descriptor) Strides() []int { return d.strides }

// ElementBytes returns the width of one element.
func (d Descriptor) ElementBytes() int { return d.elemBytes }

// TotalLogicalElements is the product of the logical sizes.
func (d Descriptor) TotalLogicalElements() int {
	n := 1
	for _, s := range d.sizes {
		n *= s
	}
	return n
}

// Index converts a coordinate into an element offset using the strides.
func (d Descriptor) Index(coord []int) int {
	idx := 0
	for i, c := range coord {
		idx += c * d.strides[i]
	}
	return idx
}

// contiguousDimensions counts the leading dimensions that are densely packed
// in memory, so copies over them can be coalesced into one transfer.
func (d Descriptor) contiguousDimensions() int {
	contiguous := 0
	expectedStride := 1
	for i := 0; i < len(d.sizes); i++ {
		if d.strides[i] > expectedStride {
			break
		}
		contiguous = i + 1
		if i < len(d.sizes)-1 {
			expectedStride = d.strides[i] * d.sizes[i]
		}
	}
	return contiguous
}

// coordCount is the number of distinct coordinates over sizes[from:].
func (d Descriptor) coordCount(from int) int {
	n := 1
	for _, s := range d.sizes[from:] {
		n *= s
	}
	return n
}

// coordNumbered fills coord[from:] with the idx-th coordinate over
// sizes[from:], in row-major-over-strided order.
func (d Descriptor) coordNumbered(idx int, coord []int, from int) {
	for i := from; i < len(d.sizes); i++ {
		coord[i] = idx % d.sizes[i]
		idx /= d.sizes[i]
	}
}
