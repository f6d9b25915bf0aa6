// Package loop provides the single execution context that owns the message
// window, the hotkey registration and every timer-driven callback.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("loop stopped")

// Task is a handle to scheduled work. Stop is idempotent; once it returns on
// the loop goroutine the task's callback never runs again.
type Task interface {
	Stop()
}

// Scheduler schedules callbacks on a single goroutine.
type Scheduler interface {
	Every(d time.Duration, fn func()) Task
	After(d time.Duration, fn func()) Task
}

// Loop runs submitted functions and timer callbacks one at a time on a
// goroutine locked to its OS thread.
type Loop struct {
	work    chan func()
	done    chan struct{}
	started atomic.Bool
	once    sync.Once

	postMu sync.Mutex
	posted []func()
	wake   chan struct{}
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		work: make(chan func()),
		done: make(chan struct{}),
		wake: make(chan struct{}, 1),
	}
}

// Run executes setup, then processes work until ctx is cancelled, then runs
// teardown. All three run on the same locked OS thread. If setup fails the
// loop exits immediately without calling teardown.
func (l *Loop) Run(ctx context.Context, setup func() error, teardown func()) error {
	if !l.started.CompareAndSwap(false, true) {
		return errors.New("loop already running")
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer l.once.Do(func() { close(l.done) })

	if setup != nil {
		if err := setup(); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			if teardown != nil {
				l.run(teardown)
			}
			return nil
		case <-l.wake:
			l.runPosted()
		case fn := <-l.work:
			l.runPosted()
			l.run(fn)
		}
	}
}

// runPosted runs everything Post has queued so far, oldest first.
func (l *Loop) runPosted() {
	l.postMu.Lock()
	fns := l.posted
	l.posted = nil
	l.postMu.Unlock()
	for _, fn := range fns {
		l.run(fn)
	}
}

// Done is closed when the loop has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from the loop goroutine itself.
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.work <- wrapped:
	case <-l.done:
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Post queues fn on the loop without waiting. Posted functions run in the
// order they were posted, and before any Do issued after them. It reports
// false when the loop has already exited.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	l.postMu.Lock()
	l.posted = append(l.posted, fn)
	l.postMu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Every schedules fn to run on the loop every d.
func (l *Loop) Every(d time.Duration, fn func()) Task {
	t := newTask(fn, true)
	go l.forward(t, d)
	return t
}

// After schedules fn to run once on the loop after d.
func (l *Loop) After(d time.Duration, fn func()) Task {
	t := newTask(fn, false)
	go l.forward(t, d)
	return t
}

func (l *Loop) forward(t *task, d time.Duration) {
	if d <= 0 {
		d = time.Nanosecond
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-t.quit:
			return
		case <-l.done:
			return
		case <-timer.C:
		}

		select {
		case l.work <- t.fire:
		case <-t.quit:
			return
		case <-l.done:
			return
		}

		if !t.repeat {
			return
		}
		timer.Reset(d)
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Loop callback panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

type task struct {
	fn      func()
	repeat  bool
	stopped atomic.Bool
	quit    chan struct{}
	once    sync.Once
}

func newTask(fn func(), repeat bool) *task {
	return &task{fn: fn, repeat: repeat, quit: make(chan struct{})}
}

func (t *task) fire() {
	if t.stopped.Load() {
		return
	}
	if !t.repeat {
		t.Stop()
	}
	t.fn()
}

func (t *task) Stop() {
	t.stopped.Store(true)
	t.once.Do(func() { close(t.quit) })
}
