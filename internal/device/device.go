// Package device provides a CPU-backed simulation of an accelerator runtime:
// asynchronous execution streams, device-side timing events and a hardware
// descriptor. Kernel launches are submitted to streams and execute
// asynchronously relative to the caller, which is what the benchmarking core
// measures around.
package device

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Properties describes the hardware the benchmark targets. ComputeUnits and
// the peak-rate fields feed the performance projection model.
type Properties struct {
	Name               string
	ComputeUnits       int
	ClockMHz           int
	MaxWavesPerCU      int
	MemoryBandwidthGBs float64
	TotalMemory        uint64
}

// Device owns a set of execution streams. All stream and event handles are
// created through a Device; the Device never owns the work submitted to them.
type Device struct {
	props Properties

	mu       sync.Mutex
	streams  map[int]*Stream
	streamID int32
}

// New creates a device with the given hardware descriptor.
func New(props Properties) *Device {
	return &Device{
		props:   props,
		streams: make(map[int]*Stream),
	}
}

// Detect builds a device descriptor from the host machine. The CPU stands in
// for the accelerator: one compute unit per core, wavefront occupancy fixed.
func Detect() *Device {
	return New(Properties{
		Name:          "CPU",
		ComputeUnits:  runtime.NumCPU(),
		ClockMHz:      2000,
		MaxWavesPerCU: 32,
	})
}

// Properties returns the hardware descriptor.
func (d *Device) Properties() Properties {
	return d.props
}

// NewStream creates an execution stream backed by a worker goroutine.
func (d *Device) NewStream() *Stream {
	id := int(atomic.AddInt32(&d.streamID, 1))
	s := newStream(id)

	d.mu.Lock()
	d.streams[id] = s
	d.mu.Unlock()
	return s
}

// Synchronize blocks until all outstanding work on every stream has
// completed. This is the full-device barrier used by the host-timer path;
// there is no timeout or abort.
func (d *Device) Synchronize() error {
	d.mu.Lock()
	streams := make([]*Stream, 0, len(d.streams))
	for _, s := range d.streams {
		streams = append(streams, s)
	}
	d.mu.Unlock()

	for _, s := range streams {
		s.Synchronize()
	}
	return nil
}

// Close shuts down all streams. Pending work is drained first.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, s := range d.streams {
		s.close()
		delete(d.streams, id)
	}
}
