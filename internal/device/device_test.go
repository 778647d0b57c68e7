package device

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamExecutesInOrder(t *testing.T) {
	dev := New(Properties{Name: "test", ComputeUnits: 4})
	defer dev.Close()
	stream := dev.NewStream()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		stream.Submit(func() { got = append(got, i) })
	}
	stream.Synchronize()

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestStreamsRunConcurrently(t *testing.T) {
	dev := New(Properties{Name: "test", ComputeUnits: 4})
	defer dev.Close()
	a := dev.NewStream()
	b := dev.NewStream()

	release := make(chan struct{})
	var bRan atomic.Bool

	a.Submit(func() { <-release })
	b.Submit(func() { bRan.Store(true) })
	b.Synchronize()

	// Stream b finished while a is still blocked.
	assert.True(t, bRan.Load())
	close(release)
	a.Synchronize()
}

func TestDeviceSynchronizeIsFullBarrier(t *testing.T) {
	dev := New(Properties{Name: "test", ComputeUnits: 4})
	defer dev.Close()

	var count atomic.Int32
	for i := 0; i < 3; i++ {
		s := dev.NewStream()
		for j := 0; j < 10; j++ {
			s.Submit(func() {
				time.Sleep(time.Millisecond)
				count.Add(1)
			})
		}
	}

	require.NoError(t, dev.Synchronize())
	assert.Equal(t, int32(30), count.Load())
}

func TestEventRecordAndElapsed(t *testing.T) {
	dev := New(Properties{Name: "test", ComputeUnits: 4})
	defer dev.Close()
	stream := dev.NewStream()

	start := NewEvent()
	stop := NewEvent()
	require.NoError(t, start.Record(stream))
	stream.Submit(func() { time.Sleep(15 * time.Millisecond) })
	require.NoError(t, stop.Record(stream))

	require.NoError(t, stop.Synchronize())
	assert.True(t, start.Complete())
	assert.True(t, stop.Complete())

	d, err := Elapsed(start, stop)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 15*time.Millisecond)
}

func TestEventDoubleRecordFails(t *testing.T) {
	dev := New(Properties{Name: "test", ComputeUnits: 4})
	defer dev.Close()
	stream := dev.NewStream()

	ev := NewEvent()
	require.NoError(t, ev.Record(stream))
	err := ev.Record(stream)
	require.Error(t, err)

	var devErr *Error
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, ErrorInvalidHandle, devErr.Code)
}

func TestEventSynchronizeUnrecordedFails(t *testing.T) {
	ev := NewEvent()
	err := ev.Synchronize()
	require.Error(t, err)

	var devErr *Error
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, ErrorInvalidHandle, devErr.Code)
}

func TestEventTimestampBeforeComplete(t *testing.T) {
	ev := NewEvent()
	_, err := ev.Timestamp()
	require.Error(t, err)

	var devErr *Error
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, ErrorNotReady, devErr.Code)
}

func TestElapsedIncompleteEvents(t *testing.T) {
	_, err := Elapsed(NewEvent(), NewEvent())
	assert.Error(t, err)
}

func TestEventOrderWithinStream(t *testing.T) {
	dev := New(Properties{Name: "test", ComputeUnits: 4})
	defer dev.Close()
	stream := dev.NewStream()

	first := NewEvent()
	second := NewEvent()
	require.NoError(t, first.Record(stream))
	require.NoError(t, second.Record(stream))
	require.NoError(t, second.Synchronize())

	// Completing the later marker implies the earlier one ran.
	assert.True(t, first.Complete())

	a, err := first.Timestamp()
	require.NoError(t, err)
	b, err := second.Timestamp()
	require.NoError(t, err)
	assert.False(t, b.Before(a))
}

func TestDetectPopulatesProperties(t *testing.T) {
	dev := Detect()
	defer dev.Close()

	props := dev.Properties()
	assert.NotEmpty(t, props.Name)
	assert.Greater(t, props.ComputeUnits, 0)
	assert.Greater(t, props.MaxWavesPerCU, 0)
}

func TestCloseDrainsPendingWork(t *testing.T) {
	dev := New(Properties{Name: "test", ComputeUnits: 4})
	stream := dev.NewStream()

	var ran atomic.Bool
	stream.Submit(func() {
		time.Sleep(5 * time.Millisecond)
		ran.Store(true)
	})
	dev.Close()
	assert.True(t, ran.Load())
}

func TestErrorFormatting(t *testing.T) {
	err := errf(ErrorInvalidValue, "Device.NewStream", "bad flag")
	assert.Contains(t, err.Error(), "ErrorInvalidValue")
	assert.Contains(t, err.Error(), "Device.NewStream")
	assert.Contains(t, err.Error(), "bad flag")
}
