package loop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by an explicit clock. Time only moves when
// Advance is called, which makes timer-driven code deterministic in tests.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m        *Manual
	seq      int
	next     time.Time
	interval time.Duration
	repeat   bool
	fn       func()
	stopped  bool
}

// NewManual creates a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the scheduler's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every implements Scheduler.
func (m *Manual) Every(d time.Duration, fn func()) Task {
	return m.add(d, fn, true)
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Task {
	return m.add(d, fn, false)
}

// Pending reports how many tasks are still scheduled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every task that falls due in
// deadline order. Callbacks run on the calling goroutine.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

func (m *Manual) add(d time.Duration, fn func(), repeat bool) *manualTask {
	if d <= 0 {
		d = time.Nanosecond
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, seq: m.seq, next: m.now.Add(d), interval: d, repeat: repeat, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// nextDue pops the earliest due task, moves the clock to its deadline and
// reschedules or retires it.
func (m *Manual) nextDue(target time.Time) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.tasks = live

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].next.Equal(m.tasks[j].next) {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].next.Before(m.tasks[j].next)
	})
	if len(m.tasks) == 0 || m.tasks[0].next.After(target) {
		return nil
	}

	t := m.tasks[0]
	m.now = t.next
	if t.repeat {
		t.next = t.next.Add(t.interval)
	} else {
		t.stopped = true
	}
	return t
}

func (t *manualTask) Stop() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.stopped = true
}
