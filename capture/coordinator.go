package capture

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"markestedt/clippath/hotkey"
	"markestedt/clippath/loop"
)

// Status is the state of one source's capture session.
type Status int

const (
	Idle Status = iota
	Capturing
	Done
	Cancelled
	Failed
)

var statusNames = [...]string{"idle", "capturing", "done", "cancelled", "failed"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether s ends a session.
func (s Status) Terminal() bool {
	return s == Done || s == Cancelled || s == Failed
}

// Source identifies who started a capture.
type Source int

const (
	SourceMenu Source = iota
	SourceAPI
)

func (s Source) String() string {
	if s == SourceAPI {
		return "api"
	}
	return "menu"
}

// Snapshot is a session as seen by its owner.
type Snapshot struct {
	Status   Status `json:"status"`
	Shortcut string `json:"shortcut,omitempty"`
	Session  string `json:"session,omitempty"`
	// Reason is set for Cancelled ("escape", "timeout", "cancel").
	Reason string `json:"reason,omitempty"`
	// Previous is the binding that was live before the session started.
	Previous string `json:"previous,omitempty"`
}

// Registrar is the part of hotkey.Registrar the coordinator drives.
type Registrar interface {
	Binding() hotkey.Binding
	Unregister()
	Reregister(b hotkey.Binding) bool
}

// Options configures a Coordinator. Registrar, Keys and Scheduler are
// required.
type Options struct {
	Registrar Registrar
	Keys      KeyState
	Scheduler loop.Scheduler
	Timing    Timing
	Now       func() time.Time

	// OnChange persists a newly captured binding.
	OnChange func(b hotkey.Binding) error
	// OnFinish is told about every session that reaches a terminal status.
	OnFinish func(src Source, snap Snapshot)
}

type session struct {
	id       string
	status   Status
	reason   string
	previous hotkey.Binding
	result   *hotkey.Binding
	started  time.Time
	task     loop.Task
}

func (s *session) snapshot() Snapshot {
	snap := Snapshot{Status: s.status, Session: s.id, Reason: s.reason}
	if !s.previous.IsZero() {
		snap.Previous = s.previous.String()
	}
	if s.result != nil {
		snap.Shortcut = s.result.String()
	}
	return snap
}

func (s *session) stop() {
	if s.task != nil {
		s.task.Stop()
		s.task = nil
	}
}

// Coordinator runs capture sessions for the tray menu and the settings API,
// at most one at a time. All methods must be called on the loop goroutine.
type Coordinator struct {
	opts      Options
	sessions  map[Source]*session
	capturing bool
}

// NewCoordinator creates a coordinator. A zero Timing means DefaultTiming.
func NewCoordinator(opts Options) *Coordinator {
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		opts:     opts,
		sessions: make(map[Source]*session),
	}
}

// Capturing reports whether any source has a session in progress.
func (c *Coordinator) Capturing() bool {
	return c.capturing
}

// TryStart begins a capture for src. It returns false, changing nothing,
// when any capture is already in progress.
func (c *Coordinator) TryStart(src Source) bool {
	if c.capturing {
		slog.Info("Shortcut capture already running", "source", src.String())
		return false
	}

	s := &session{
		id:       uuid.NewString(),
		status:   Capturing,
		previous: c.opts.Registrar.Binding(),
		started:  c.opts.Now(),
	}
	c.opts.Registrar.Unregister()
	c.sessions[src] = s
	c.capturing = true
	s.task = c.opts.Scheduler.Every(c.opts.Timing.Poll, func() { c.tick(src, s) })

	slog.Info("Shortcut capture started", "source", src.String(), "session", s.id, "previous", s.previous.String())
	return true
}

// Cancel ends src's own capture and restores the previous binding. It does
// nothing if src has no session in progress.
func (c *Coordinator) Cancel(src Source) {
	s, ok := c.sessions[src]
	if !ok || s.status != Capturing {
		return
	}
	s.stop()
	c.restore(s)
	c.finish(src, s, Cancelled, "cancel", nil)
}

// Status returns src's session. A terminal status is reported once; the
// next call sees Idle.
func (c *Coordinator) Status(src Source) Snapshot {
	s, ok := c.sessions[src]
	if !ok {
		return Snapshot{Status: Idle}
	}
	snap := s.snapshot()
	if s.status.Terminal() {
		delete(c.sessions, src)
	}
	return snap
}

func (c *Coordinator) tick(src Source, s *session) {
	if s.status != Capturing {
		return
	}

	d := Decide(c.opts.Now().Sub(s.started), c.opts.Keys, c.opts.Timing)
	switch d.Action {
	case Cancel:
		s.stop()
		c.restore(s)
		c.finish(src, s, Cancelled, d.Reason, nil)

	case Candidate:
		s.stop()
		if !c.opts.Registrar.Reregister(d.Binding) {
			slog.Warn("Captured shortcut unavailable", "shortcut", d.Binding.String())
			c.restore(s)
			c.finish(src, s, Failed, "", nil)
			return
		}
		if c.opts.OnChange != nil {
			if err := c.opts.OnChange(d.Binding); err != nil {
				slog.Error("Failed to save shortcut", "shortcut", d.Binding.String(), "error", err)
			}
		}
		b := d.Binding
		c.finish(src, s, Done, "", &b)
	}
}

func (c *Coordinator) restore(s *session) {
	if s.previous.IsZero() {
		return
	}
	if !c.opts.Registrar.Reregister(s.previous) {
		slog.Error("Failed to restore previous shortcut", "shortcut", s.previous.String())
	}
}

func (c *Coordinator) finish(src Source, s *session, status Status, reason string, result *hotkey.Binding) {
	s.status = status
	s.reason = reason
	s.result = result
	c.capturing = false

	snap := s.snapshot()
	slog.Info("Shortcut capture finished",
		"source", src.String(),
		"session", s.id,
		"status", status.String(),
		"shortcut", snap.Shortcut,
		"reason", reason,
	)
	if c.opts.OnFinish != nil {
		c.opts.OnFinish(src, snap)
	}
}
