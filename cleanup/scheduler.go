// Package cleanup deletes saved images on a user-selected schedule.
package cleanup

import (
	"fmt"
	"log/slog"
	"time"

	"markestedt/clippath/loop"
)

// Schedule is a cleanup cadence as stored in the config file.
type Schedule string

const (
	Off       Schedule = "off"
	Every30m  Schedule = "30m"
	EveryHour Schedule = "1h"
	Every6h   Schedule = "6h"
	Daily     Schedule = "daily"
)

// DefaultHour is the local hour daily cleanup runs at.
const DefaultHour = 3

var intervals = map[Schedule]time.Duration{
	Every30m:  30 * time.Minute,
	EveryHour: time.Hour,
	Every6h:   6 * time.Hour,
}

// Schedules lists every valid schedule in menu order.
func Schedules() []Schedule {
	return []Schedule{Off, Every30m, EveryHour, Every6h, Daily}
}

// Valid reports whether s is a known schedule.
func (s Schedule) Valid() bool {
	switch s {
	case Off, Daily:
		return true
	}
	_, ok := intervals[s]
	return ok
}

// Label is the human readable form used in the tray menu.
func (s Schedule) Label() string {
	switch s {
	case Off:
		return "Off"
	case Every30m:
		return "Every 30 minutes"
	case EveryHour:
		return "Every hour"
	case Every6h:
		return "Every 6 hours"
	case Daily:
		return "Daily"
	}
	return string(s)
}

// Cleaner removes saved images.
type Cleaner interface {
	CleanAll() int
}

// NextDaily returns the next time at hour:00 strictly after now.
func NextDaily(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Scheduler owns the single cleanup timer. It must be used from the loop
// goroutine.
type Scheduler struct {
	sched   loop.Scheduler
	cleaner Cleaner
	now     func() time.Time
	onClean func(removed int)

	task     loop.Task
	schedule Schedule
}

// NewScheduler creates a scheduler with no timer armed.
func NewScheduler(sched loop.Scheduler, cleaner Cleaner, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{sched: sched, cleaner: cleaner, now: now, schedule: Off}
}

// OnClean is called after every scheduled run with the number of files
// removed.
func (s *Scheduler) OnClean(fn func(removed int)) {
	s.onClean = fn
}

// Schedule returns the active schedule.
func (s *Scheduler) Schedule() Schedule {
	return s.schedule
}

// Reschedule cancels the current timer and arms a new one. Daily runs at
// dailyHour local time, then every 24 hours after that.
func (s *Scheduler) Reschedule(schedule Schedule, dailyHour int) error {
	if !schedule.Valid() {
		return fmt.Errorf("unknown cleanup schedule %q", schedule)
	}
	if dailyHour < 0 || dailyHour > 23 {
		return fmt.Errorf("daily hour %d out of range", dailyHour)
	}

	s.Stop()
	s.schedule = schedule

	switch schedule {
	case Off:
		slog.Info("Auto-clean disabled")
	case Daily:
		now := s.now()
		first := NextDaily(now, dailyHour).Sub(now)
		slog.Info("Daily cleanup scheduled", "hour", dailyHour, "first_in", first.Round(time.Minute).String())
		s.task = s.sched.After(first, func() {
			s.run()
			s.task = s.sched.Every(24*time.Hour, s.run)
		})
	default:
		slog.Info("Auto-clean scheduled", "every", string(schedule))
		s.task = s.sched.Every(intervals[schedule], s.run)
	}
	return nil
}

// Stop cancels the timer. The schedule is kept.
func (s *Scheduler) Stop() {
	if s.task != nil {
		s.task.Stop()
		s.task = nil
	}
}

func (s *Scheduler) run() {
	removed := s.cleaner.CleanAll()
	if removed > 0 {
		slog.Info("Auto-cleaned images", "removed", removed)
	}
	if s.onClean != nil {
		s.onClean(removed)
	}
}
