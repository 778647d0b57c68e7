package tensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/device"
)

func testStream(t *testing.T) *device.Stream {
	t.Helper()
	dev := device.New(device.Properties{Name: "test", ComputeUnits: 4})
	t.Cleanup(dev.Close)
	return dev.NewStream()
}

func fillPattern(buf []byte) {
	for i := range buf {
		buf[i] = byte(i % 251)
	}
}

func TestNewDescriptorPackedStrides(t *testing.T) {
	desc, err := NewDescriptor(4, []int{3, 5, 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 15}, desc.Strides())
	assert.Equal(t, 105, desc.TotalLogicalElements())
	assert.Equal(t, 3, desc.Dimensions())
	assert.Equal(t, 4, desc.ElementBytes())
}

func TestNewDescriptorValidation(t *testing.T) {
	_, err := NewDescriptor(0, []int{4}, nil)
	assert.Error(t, err)
	_, err = NewDescriptor(4, []int{-1}, nil)
	assert.Error(t, err)
	_, err = NewDescriptor(4, []int{4, 4}, []int{1})
	assert.Error(t, err)
}

func TestDescriptorIndex(t *testing.T) {
	desc, err := NewDescriptor(4, []int{4, 4}, []int{1, 8})
	require.NoError(t, err)
	assert.Equal(t, 0, desc.Index([]int{0, 0}))
	assert.Equal(t, 3, desc.Index([]int{3, 0}))
	assert.Equal(t, 8, desc.Index([]int{0, 1}))
	assert.Equal(t, 27, desc.Index([]int{3, 3}))
}

func TestCopyTensorDense(t *testing.T) {
	stream := testStream(t)
	desc, err := NewDescriptor(4, []int{8, 8}, nil)
	require.NoError(t, err)

	src := make([]byte, desc.TotalLogicalElements()*4)
	dst := make([]byte, len(src))
	fillPattern(src)

	require.NoError(t, CopyTensor(stream, dst, src, desc))
	stream.Synchronize()
	assert.Equal(t, src, dst)
}

func TestCopyTensorStridedRows(t *testing.T) {
	stream := testStream(t)
	// Rows of 4 elements padded out to a stride of 8.
	desc, err := NewDescriptor(4, []int{4, 4}, []int{1, 8})
	require.NoError(t, err)

	src := make([]byte, 4*8*4)
	dst := make([]byte, len(src))
	fillPattern(src)

	require.NoError(t, CopyTensor(stream, dst, src, desc))
	stream.Synchronize()

	rowBytes := 4 * 4
	strideBytes := 8 * 4
	for row := 0; row < 4; row++ {
		off := row * strideBytes
		assert.Equal(t, src[off:off+rowBytes], dst[off:off+rowBytes], "row %d", row)
		// Padding between rows is never touched.
		for _, b := range dst[off+rowBytes : off+strideBytes] {
			assert.Zero(t, b)
		}
	}
}

func TestCopyTensorReadsFromSource(t *testing.T) {
	stream := testStream(t)
	desc, err := NewDescriptor(1, []int{16}, nil)
	require.NoError(t, err)

	src := make([]byte, 16)
	dst := make([]byte, 16)
	fillPattern(src)
	for i := range dst {
		dst[i] = 0xEE
	}
	want := append([]byte(nil), src...)

	require.NoError(t, CopyTensor(stream, dst, src, desc))
	stream.Synchronize()

	// The destination takes the source bytes; the source is untouched.
	assert.Equal(t, want, dst)
	assert.Equal(t, want, src)
}

func TestCopyTensorBufferTooSmall(t *testing.T) {
	stream := testStream(t)
	desc, err := NewDescriptor(4, []int{8}, nil)
	require.NoError(t, err)

	src := make([]byte, 8*4)
	dst := make([]byte, 4)
	assert.Error(t, CopyTensor(stream, dst, src, desc))
}

func TestCopyTensorEmpty(t *testing.T) {
	stream := testStream(t)
	desc, err := NewDescriptor(4, []int{0, 4}, nil)
	require.NoError(t, err)
	assert.NoError(t, CopyTensor(stream, nil, nil, desc))
}

func TestCopyBufferAsync(t *testing.T) {
	stream := testStream(t)
	src := []byte{1, 2, 3, 4}
	dst := make([]byte, 4)

	CopyBuffer(stream, dst, src)
	stream.Synchronize()
	assert.Equal(t, src, dst)
}
