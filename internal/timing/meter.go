package timing

import (
	"time"

	"github.com/pkg/errors"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/device"
)

// TimingEvents is the runner-supplied record of device timestamp markers:
// one inner slice per enqueue, in issue order.
type TimingEvents [][]*device.Event

// meter is one elapsed-time measurement strategy. The host and device
// variants own different resources per batch (nothing vs. an event pair),
// so each carries its own acquisition/release discipline.
type meter interface {
	// begin brackets the start of an enqueue batch.
	begin(stream *device.Stream) error
	// end brackets the end of an enqueue batch.
	end(stream *device.Stream) error
	// elapsed reconciles whatever the strategy captured, plus the runner's
	// batched events when applicable, into one elapsed time.
	elapsed(startEvents, stopEvents TimingEvents) (time.Duration, error)
}

// hostMeter times with the host monotonic clock. Accurate boundaries demand
// a full device synchronization on both sides, serializing the pipeline.
type hostMeter struct {
	dev         *device.Device
	start, stop time.Time
}

func (m *hostMeter) begin(*device.Stream) error {
	if err := m.dev.Synchronize(); err != nil {
		return err
	}
	m.start = time.Now()
	return nil
}

func (m *hostMeter) end(*device.Stream) error {
	if err := m.dev.Synchronize(); err != nil {
		return err
	}
	m.stop = time.Now()
	return nil
}

func (m *hostMeter) elapsed(_, _ TimingEvents) (time.Duration, error) {
	return m.stop.Sub(m.start), nil
}

// deviceMeter times with device-side event markers. begin/end record one
// global pair around the whole batch; when no pair was recorded, elapsed
// falls back to the runner's per-enqueue events. The two paths are mutually
// exclusive per batch.
type deviceMeter struct {
	start, stop *device.Event
}

func (m *deviceMeter) begin(stream *device.Stream) error {
	m.start = device.NewEvent()
	m.stop = device.NewEvent()
	return m.start.Record(stream)
}

func (m *deviceMeter) end(stream *device.Stream) error {
	if err := m.stop.Record(stream); err != nil {
		return err
	}
	// Wait only for the stop marker, not the whole device.
	return m.stop.Synchronize()
}

func (m *deviceMeter) elapsed(startEvents, stopEvents TimingEvents) (time.Duration, error) {
	if m.start != nil || m.stop != nil {
		d, err := device.Elapsed(m.start, m.stop)
		// The pair's role is exhausted for this batch either way.
		m.start, m.stop = nil, nil
		return d, err
	}
	return m.batchedElapsed(startEvents, stopEvents)
}

// batchedElapsed sums per-enqueue first-start to last-stop intervals across
// the whole batch, after waiting for the final stop marker.
func (m *deviceMeter) batchedElapsed(startEvents, stopEvents TimingEvents) (time.Duration, error) {
	if len(stopEvents) == 0 || len(stopEvents[len(stopEvents)-1]) == 0 {
		return 0, errors.New("benchmark timer: no timing events recorded for batch")
	}
	lastBatch := stopEvents[len(stopEvents)-1]
	if err := lastBatch[len(lastBatch)-1].Synchronize(); err != nil {
		return 0, err
	}

	var total time.Duration
	for i := range startEvents {
		if len(startEvents[i]) == 0 || i >= len(stopEvents) || len(stopEvents[i]) == 0 {
			return 0, errors.Errorf("benchmark timer: enqueue %d has no start/stop events", i)
		}
		stops := stopEvents[i]
		d, err := device.Elapsed(startEvents[i][0], stops[len(stops)-1])
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}
