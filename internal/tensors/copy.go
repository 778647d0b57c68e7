package tensors

import (
	"github.com/pkg/errors"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/device"
)

// CopyTensor copies a strided tensor between two byte buffers, coalescing
// all leading contiguous dimensions into one transfer each and issuing one
// asynchronous copy per remaining coordinate. Source and destination offsets
// are derived independently from the same descriptor, so the buffers may
// alias different allocations of the same layout.
func CopyTensor(stream *device.Stream, dst, src []byte, desc Descriptor) error {
	if desc.Dimensions() == 0 || desc.TotalLogicalElements() == 0 {
		return nil
	}

	contiguous := desc.contiguousDimensions()
	if contiguous == 0 {
		return errors.New("tensors: descriptor has no contiguous leading dimension")
	}

	maxStride := 0
	for _, s := range desc.strides[:contiguous] {
		if s > maxStride {
			maxStride = s
		}
	}
	copyBytes := maxStride * desc.sizes[contiguous-1] * desc.elemBytes

	coord := make([]int, desc.Dimensions())
	count := desc.coordCount(contiguous)

	for idx := 0; idx < count; idx++ {
		desc.coordNumbered(idx, coord, contiguous)

		offset := desc.Index(coord) * desc.elemBytes
		if offset+copyBytes > len(dst) || offset+copyBytes > len(src) {
			return errors.Errorf(
				"tensors: copy of %d bytes at offset %d exceeds buffer (dst %d, src %d)",
				copyBytes, offset, len(dst), len(src))
		}

		dstBytes := dst[offset : offset+copyBytes]
		srcBytes := src[offset : offset+copyBytes]
		CopyBuffer(stream, dstBytes, srcBytes)
	}
	return nil
}

// CopyBuffer submits one asynchronous copy on the stream.
func CopyBuffer(stream *device.Stream, dst, src []byte) {
	stream.Submit(func() {
		copy(dst, src)
	})
}
