package device

import "sync"

// Stream is an ordered sequence of operations that execute asynchronously
// with respect to the submitting goroutine. Operations within a stream run
// in submission order; separate streams may run concurrently.
type Stream struct {
	id    int
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup

	closeOnce sync.Once
}

func newStream(id int) *Stream {
	s := &Stream{
		id:    id,
		tasks: make(chan func(), 1024),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

// ID returns the stream's handle id.
func (s *Stream) ID() int {
	return s.id
}

func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// Submit enqueues a task on the stream. It never blocks the caller unless
// the stream's queue is full.
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

// Synchronize blocks until every task submitted so far has completed.
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

func (s *Stream) close() {
	s.closeOnce.Do(func() {
		s.wg.Wait()
		close(s.tasks)
		<-s.done
	})
}
