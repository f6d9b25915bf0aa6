package events

import "sync"

// Queue is an in-memory Source. It backs the message window on platforms
// without one and stands in for it in tests.
type Queue struct {
	mu        sync.Mutex
	pending   []Event
	defaulted []Event
	err       error
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Post appends ev to the queue.
func (q *Queue) Post(ev Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, ev)
	return nil
}

// Next implements Source.
func (q *Queue) Next() (Event, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		err := q.err
		q.err = nil
		return Event{}, false, err
	}
	if len(q.pending) == 0 {
		return Event{}, false, nil
	}
	ev := q.pending[0]
	q.pending = q.pending[1:]
	return ev, true, nil
}

// Default implements Source by recording the event.
func (q *Queue) Default(ev Event) uintptr {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.defaulted = append(q.defaulted, ev)
	return 0
}

// FailNext makes the next call to Next return err.
func (q *Queue) FailNext(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.err = err
}

// Len returns the number of undelivered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Defaulted returns the events that fell through to default handling.
func (q *Queue) Defaulted() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Event, len(q.defaulted))
	copy(out, q.defaulted)
	return out
}
