package device

import (
	"sync"
	"time"
)

// Event is a device-side timestamp marker. Recording an event submits a
// marker operation to a stream; the timestamp is captured when the stream
// worker reaches it, not when the host records it. That ordering is what
// makes event pairs usable as elapsed-time probes around enqueued kernels.
type Event struct {
	mu       sync.Mutex
	recorded bool
	at       time.Time
	done     chan struct{}
}

// NewEvent creates an unrecorded event.
func NewEvent() *Event {
	return &Event{done: make(chan struct{})}
}

// Record submits the event marker on the given stream. Recording the same
// event twice is an invalid-handle error.
func (e *Event) Record(s *Stream) error {
	e.mu.Lock()
	if e.recorded {
		e.mu.Unlock()
		return errf(ErrorInvalidHandle, "Event.Record", "event already recorded")
	}
	e.recorded = true
	e.mu.Unlock()

	s.Submit(func() {
		e.at = time.Now()
		close(e.done)
	})
	return nil
}

// Synchronize blocks until the event marker has completed on its stream.
// An event that was never recorded can never complete; that is surfaced as
// an invalid-handle error instead of deadlocking.
func (e *Event) Synchronize() error {
	e.mu.Lock()
	recorded := e.recorded
	e.mu.Unlock()
	if !recorded {
		return errf(ErrorInvalidHandle, "Event.Synchronize", "event not recorded")
	}
	<-e.done
	return nil
}

// Complete reports whether the event marker has executed.
func (e *Event) Complete() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Timestamp returns the captured device timestamp. Only valid after the
// event completed.
func (e *Event) Timestamp() (time.Time, error) {
	if !e.Complete() {
		return time.Time{}, errf(ErrorNotReady, "Event.Timestamp", "event not complete")
	}
	return e.at, nil
}

// Elapsed returns the device time between two completed events.
func Elapsed(start, stop *Event) (time.Duration, error) {
	from, err := start.Timestamp()
	if err != nil {
		return 0, errf(ErrorNotReady, "Elapsed", "start event not complete")
	}
	to, err := stop.Timestamp()
	if err != nil {
		return 0, errf(ErrorNotReady, "Elapsed", "stop event not complete")
	}
	return to.Sub(from), nil
}
